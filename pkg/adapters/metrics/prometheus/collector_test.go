package prometheus

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorRecords(t *testing.T) {
	c := qt.New(t)
	col := NewCollector()

	col.RecordValueOperation("list")
	col.RecordValueOperation("list")
	col.RecordValueOperation("delete")
	c.Assert(testutil.ToFloat64(col.valueOperations.WithLabelValues("list")), qt.Equals, 2.0)
	c.Assert(testutil.ToFloat64(col.valueOperations.WithLabelValues("delete")), qt.Equals, 1.0)

	col.RecordEventPublished("values.operations", nil)
	col.RecordEventPublished("values.operations", errors.New("down"))
	c.Assert(testutil.ToFloat64(col.eventsPublished.WithLabelValues("values.operations", "ok")), qt.Equals, 1.0)
	c.Assert(testutil.ToFloat64(col.eventsPublished.WithLabelValues("values.operations", "error")), qt.Equals, 1.0)

	col.RecordHTTPRequest("GET", "/api/values", 200, 3*time.Millisecond)
	c.Assert(testutil.ToFloat64(col.httpRequests.WithLabelValues("GET", "/api/values", "200")), qt.Equals, 1.0)

	col.SetFeedClients(3)
	c.Assert(testutil.ToFloat64(col.feedClients), qt.Equals, 3.0)

	col.SetDependencyUp("redis", true)
	c.Assert(testutil.ToFloat64(col.dependencyUp.WithLabelValues("redis")), qt.Equals, 1.0)
	col.SetDependencyUp("redis", false)
	c.Assert(testutil.ToFloat64(col.dependencyUp.WithLabelValues("redis")), qt.Equals, 0.0)
}

func TestCollectorsAreIndependent(t *testing.T) {
	c := qt.New(t)

	// Two collectors must not collide on registration.
	a, b := NewCollector(), NewCollector()
	a.RecordValueOperation("get")
	c.Assert(testutil.ToFloat64(b.valueOperations.WithLabelValues("get")), qt.Equals, 0.0)
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := qt.New(t)
	col := NewCollector()
	col.RecordValueOperation("create")

	rec := httptest.NewRecorder()
	col.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	c.Assert(rec.Code, qt.Equals, http.StatusOK)

	body, err := io.ReadAll(rec.Body)
	c.Assert(err, qt.IsNil)
	c.Assert(strings.Contains(string(body), `helloapi_value_operations_total{operation="create"} 1`), qt.IsTrue)
	c.Assert(strings.Contains(string(body), "go_goroutines"), qt.IsTrue)
}
