package grpc

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestHealthService(t *testing.T) {
	c := qt.New(t)

	srv, err := NewServer(&Config{Addr: "127.0.0.1:0", Logger: zaptest.NewLogger(t)})
	c.Assert(err, qt.IsNil)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	conn, err := grpc.Dial(srv.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	c.Assert(err, qt.IsNil)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	c.Assert(err, qt.IsNil)
	c.Assert(resp.Status, qt.Equals, healthpb.HealthCheckResponse_SERVING)

	srv.SetServing(false)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	c.Assert(err, qt.IsNil)
	c.Assert(resp.Status, qt.Equals, healthpb.HealthCheckResponse_NOT_SERVING)

	c.Assert(srv.Shutdown(ctx), qt.IsNil)
	c.Assert(<-errCh, qt.IsNil)
}
