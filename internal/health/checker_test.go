package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusString(t *testing.T) {
	assert.Equal(t, "healthy", StatusHealthy.String())
	assert.Equal(t, "degraded", StatusDegraded.String())
	assert.Equal(t, "unhealthy", StatusUnhealthy.String())
}

func TestResultConstructors(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   Status
	}{
		{"healthy", Healthy("ok"), StatusHealthy},
		{"degraded", Degraded("partial"), StatusDegraded},
		{"unhealthy", Unhealthy("down"), StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Status)
			assert.NotNil(t, tt.result.Details)
			assert.Empty(t, tt.result.Details)
		})
	}
}

func TestResultChaining(t *testing.T) {
	r := Healthy("API online").
		WithDetail("http_status", 200).
		WithDetail("title", "auth").
		WithLatency(25 * time.Millisecond)

	assert.Equal(t, 200, r.Details["http_status"])
	assert.Equal(t, "auth", r.Details["title"])
	assert.Equal(t, 25*time.Millisecond, r.Latency)
}
