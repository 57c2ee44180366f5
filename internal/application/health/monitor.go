package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aescanero/helloapi/pkg/ports"
	"go.uber.org/zap"
)

// Check probes a single dependency. A nil error means the dependency is up.
type Check func(ctx context.Context) error

// Status values reported per check
const (
	CheckOK   = "ok"
	CheckFail = "fail"
)

// Monitor periodically runs dependency checks and keeps the latest result
type Monitor struct {
	interval time.Duration
	timeout  time.Duration
	metrics  ports.MetricsCollector
	logger   *zap.Logger

	mu        sync.RWMutex
	checks    map[string]Check
	listeners []func(healthy bool)
	status    *Status
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// Status represents the health of the service and its dependencies
type Status struct {
	Healthy   bool              `json:"healthy"`
	Checks    map[string]string `json:"checks"`
	Errors    map[string]string `json:"errors,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewMonitor creates a new health monitor. metrics may be nil.
func NewMonitor(interval time.Duration, metrics ports.MetricsCollector, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := interval / 2
	if timeout <= 0 || timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	return &Monitor{
		interval: interval,
		timeout:  timeout,
		metrics:  metrics,
		logger:   logger,
		checks:   make(map[string]Check),
		status: &Status{
			Healthy:   true,
			Checks:    map[string]string{},
			Timestamp: time.Now(),
		},
	}
}

// AddCheck registers a named dependency check
func (m *Monitor) AddCheck(name string, check Check) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checks[name] = check
}

// OnChange registers fn to be called whenever overall health flips,
// and once after the first check run.
func (m *Monitor) OnChange(fn func(healthy bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, fn)
}

// Start runs an initial check and starts the periodic loop
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.mu.Unlock()

	m.notify(m.CheckNow(context.Background()).Healthy)

	go m.run()
}

// Stop stops the periodic loop and waits for it to exit
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// run is the main health monitoring loop
func (m *Monitor) run() {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			previous := m.IsHealthy()
			status := m.CheckNow(context.Background())
			if status.Healthy != previous {
				m.notify(status.Healthy)
			}
		}
	}
}

// CheckNow runs every registered check and stores the result
func (m *Monitor) CheckNow(ctx context.Context) *Status {
	m.mu.RLock()
	names := make([]string, 0, len(m.checks))
	for name := range m.checks {
		names = append(names, name)
	}
	checks := make(map[string]Check, len(m.checks))
	for name, check := range m.checks {
		checks[name] = check
	}
	m.mu.RUnlock()
	sort.Strings(names)

	status := &Status{
		Healthy:   true,
		Checks:    make(map[string]string, len(names)),
		Timestamp: time.Now(),
	}

	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
		err := checks[name](checkCtx)
		cancel()

		if m.metrics != nil {
			m.metrics.SetDependencyUp(name, err == nil)
		}

		if err != nil {
			status.Healthy = false
			status.Checks[name] = CheckFail
			if status.Errors == nil {
				status.Errors = make(map[string]string)
			}
			status.Errors[name] = err.Error()
			m.logger.Warn("dependency check failed",
				zap.String("dependency", name),
				zap.Error(err))
			continue
		}
		status.Checks[name] = CheckOK
	}

	m.logger.Debug("health check",
		zap.Int("checks", len(names)),
		zap.Bool("healthy", status.Healthy))

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()

	return status
}

// GetStatus returns the latest health status
func (m *Monitor) GetStatus() *Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.status
}

// IsHealthy returns true if every dependency passed its last check
func (m *Monitor) IsHealthy() bool {
	return m.GetStatus().Healthy
}

func (m *Monitor) notify(healthy bool) {
	m.mu.RLock()
	listeners := make([]func(bool), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, fn := range listeners {
		fn(healthy)
	}
}
