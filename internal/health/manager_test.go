package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockChecker is a test double for health checks
type mockChecker struct {
	name   string
	result *Result
	delay  time.Duration
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(ctx context.Context) *Result {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return Unhealthy("check cancelled").WithDetail("error", ctx.Err().Error())
		}
	}
	return m.result
}

func TestManagerCheck(t *testing.T) {
	manager := NewManager()
	manager.AddChecker(&mockChecker{name: "api", result: Healthy("API online")})
	manager.AddChecker(&mockChecker{name: "contract", result: Degraded("missing /refresh")})
	manager.AddChecker(&mockChecker{name: "store", result: Unhealthy("unreadable")})

	results := manager.Check(context.Background())
	require.Len(t, results, 3)
	assert.Equal(t, StatusHealthy, results["api"].Status)
	assert.Equal(t, StatusDegraded, results["contract"].Status)
	assert.Equal(t, StatusUnhealthy, results["store"].Status)
}

func TestManagerTimeout(t *testing.T) {
	manager := NewManager().WithTimeout(50 * time.Millisecond)
	manager.AddChecker(&mockChecker{name: "slow", result: Healthy("late"), delay: time.Second})

	results := manager.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, results["slow"].Status)
	assert.Equal(t, "check cancelled", results["slow"].Message)
}

func TestManagerRunsInParallel(t *testing.T) {
	manager := NewManager()
	for _, name := range []string{"a", "b", "c", "d"} {
		manager.AddChecker(&mockChecker{name: name, result: Healthy("ok"), delay: 50 * time.Millisecond})
	}

	start := time.Now()
	results := manager.Check(context.Background())
	assert.Len(t, results, 4)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestManagerNilResult(t *testing.T) {
	manager := NewManager()
	manager.AddChecker(&mockChecker{name: "broken"})

	results := manager.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, results["broken"].Status)
}

func TestRunReport(t *testing.T) {
	manager := NewManager()
	manager.AddChecker(&mockChecker{name: "store", result: Healthy("ok")})
	manager.AddChecker(&mockChecker{name: "api", result: Degraded("slow")})

	report := manager.Run(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, []string{"api", "store"}, report.Names())
	assert.False(t, report.CheckedAt.IsZero())
	assert.Equal(t, []string{"store", "api"}, manager.CheckNames())
}

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		results  map[string]*Result
		expected Status
	}{
		{"empty", map[string]*Result{}, StatusHealthy},
		{"all healthy", map[string]*Result{"a": Healthy("ok"), "b": Healthy("ok")}, StatusHealthy},
		{"one degraded", map[string]*Result{"a": Healthy("ok"), "b": Degraded("partial")}, StatusDegraded},
		{"unhealthy wins", map[string]*Result{"a": Degraded("partial"), "b": Unhealthy("broken")}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OverallStatus(tt.results))
		})
	}
}
