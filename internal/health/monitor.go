package health

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is how often the Monitor probes the API.
const DefaultInterval = 30 * time.Second

// Prober reports whether the API is reachable.
type Prober interface {
	Probe(ctx context.Context) bool
}

// Observation is one Monitor result.
type Observation struct {
	Online    bool      `json:"online" yaml:"online"`
	CheckedAt time.Time `json:"checked_at" yaml:"checked_at"`
}

// Monitor probes on a fixed interval until stopped. It probes once
// immediately on Start.
type Monitor struct {
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	onResult func(Observation)

	mu     sync.Mutex
	last   *Observation
	cancel context.CancelFunc
	done   chan struct{}
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithInterval sets the probe interval. Non-positive values are ignored.
func WithInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithProbeTimeout bounds each probe.
func WithProbeTimeout(d time.Duration) MonitorOption {
	return func(m *Monitor) { m.timeout = d }
}

// OnResult registers a callback run after every probe, on the monitor's
// goroutine.
func OnResult(fn func(Observation)) MonitorOption {
	return func(m *Monitor) { m.onResult = fn }
}

// NewMonitor creates a stopped Monitor.
func NewMonitor(p Prober, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		prober:   p,
		interval: DefaultInterval,
		timeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Interval returns the probe interval.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Start launches the probe loop. It is a no-op if already running. The loop
// ends when ctx is cancelled or Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.loop(ctx, m.done)
}

// Stop cancels the loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Last returns the most recent observation, if any.
func (m *Monitor) Last() (Observation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return Observation{}, false
	}
	return *m.last, true
}

// ProbeOnce runs one probe outside the loop and records it.
func (m *Monitor) ProbeOnce(ctx context.Context) Observation {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	online := m.prober.Probe(probeCtx)
	cancel()

	obs := Observation{Online: online, CheckedAt: time.Now()}

	m.mu.Lock()
	m.last = &obs
	m.mu.Unlock()

	if m.onResult != nil {
		m.onResult(obs)
	}
	return obs
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.ProbeOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			m.ProbeOnce(ctx)
		}
	}
}
