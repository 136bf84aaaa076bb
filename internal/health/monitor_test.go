package health

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProber struct {
	online atomic.Bool
	calls  atomic.Int64
}

func (f *fakeProber) Probe(ctx context.Context) bool {
	f.calls.Add(1)
	return f.online.Load()
}

func TestMonitorProbesImmediately(t *testing.T) {
	p := &fakeProber{}
	p.online.Store(true)

	got := make(chan Observation, 10)
	m := NewMonitor(p, WithInterval(time.Hour), OnResult(func(o Observation) { got <- o }))
	m.Start(context.Background())
	defer m.Stop()

	select {
	case o := <-got:
		assert.True(t, o.Online)
	case <-time.After(2 * time.Second):
		t.Fatal("no immediate probe")
	}

	last, ok := m.Last()
	require.True(t, ok)
	assert.True(t, last.Online)
}

func TestMonitorRepeats(t *testing.T) {
	p := &fakeProber{}
	m := NewMonitor(p, WithInterval(10*time.Millisecond))
	m.Start(context.Background())

	require.Eventually(t, func() bool { return p.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	m.Stop()

	calls := p.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, p.calls.Load(), "no probes after Stop")

	last, ok := m.Last()
	require.True(t, ok)
	assert.False(t, last.Online)
}

func TestMonitorStopsOnContextCancel(t *testing.T) {
	p := &fakeProber{}
	var mu sync.Mutex
	count := 0
	m := NewMonitor(p, WithInterval(10*time.Millisecond), OnResult(func(Observation) {
		mu.Lock()
		count++
		mu.Unlock()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	require.Eventually(t, func() bool { return p.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()
	m.Stop()

	mu.Lock()
	final := count
	mu.Unlock()
	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, final, count)
	mu.Unlock()
}

func TestMonitorStartTwiceAndStopIdle(t *testing.T) {
	p := &fakeProber{}
	m := NewMonitor(p, WithInterval(time.Hour))

	m.Stop()

	m.Start(context.Background())
	m.Start(context.Background())
	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	m.Stop()
	assert.Equal(t, int64(1), p.calls.Load())
}

func TestMonitorDefaults(t *testing.T) {
	m := NewMonitor(&fakeProber{}, WithInterval(0))
	assert.Equal(t, DefaultInterval, m.Interval())

	_, ok := m.Last()
	assert.False(t, ok)

	o := m.ProbeOnce(context.Background())
	assert.False(t, o.Online)
	_, ok = m.Last()
	assert.True(t, ok)
}
