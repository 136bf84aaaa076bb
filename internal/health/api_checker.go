package health

import (
	"context"
	"time"

	"github.com/felixgeelhaar/authdemo/internal/errors"
	"github.com/felixgeelhaar/authdemo/internal/metrics"
)

// HealthClient is the part of the API client used by APIChecker.
type HealthClient interface {
	Health(ctx context.Context) error
}

// APIChecker probes the API's /health endpoint.
type APIChecker struct {
	client  HealthClient
	metrics *metrics.Metrics
}

// NewAPIChecker creates an APIChecker. m may be nil.
func NewAPIChecker(client HealthClient, m *metrics.Metrics) *APIChecker {
	return &APIChecker{client: client, metrics: m}
}

// Name returns "api".
func (c *APIChecker) Name() string {
	return "api"
}

// Probe reports whether /health answered 2xx. It never fails: any non-2xx
// status or transport error counts as offline.
func (c *APIChecker) Probe(ctx context.Context) bool {
	online := c.client.Health(ctx) == nil
	if c.metrics != nil {
		c.metrics.RecordHealth(online)
	}
	return online
}

// Check wraps the probe as a Result.
func (c *APIChecker) Check(ctx context.Context) *Result {
	start := time.Now()
	err := c.client.Health(ctx)
	latency := time.Since(start)

	if c.metrics != nil {
		c.metrics.RecordHealth(err == nil)
	}

	if err != nil {
		r := Unhealthy("API offline").WithLatency(latency)
		if status := errors.StatusOf(err); status != 0 {
			r.WithDetail("http_status", status)
		}
		if kind := errors.KindOf(err); kind != "" {
			r.WithDetail("error_kind", string(kind))
		}
		return r
	}
	return Healthy("API online").WithLatency(latency)
}
