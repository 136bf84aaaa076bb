package health

import (
	"context"
	"net/http"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/authdemo/internal/api"
	"github.com/felixgeelhaar/authdemo/internal/api/apitest"
	"github.com/felixgeelhaar/authdemo/internal/metrics"
	"github.com/felixgeelhaar/authdemo/internal/store"
)

func newAPI(t *testing.T) (*apitest.Server, *api.Client) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	return srv, api.NewClient(srv.URL)
}

func TestAPICheckerProbe(t *testing.T) {
	srv, client := newAPI(t)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	checker := NewAPIChecker(client, m)

	assert.True(t, checker.Probe(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HealthUp))

	srv.SetHealthy(false)
	assert.False(t, checker.Probe(context.Background()))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HealthUp))

	srv.SetHealthy(true)
	srv.Fail("/health", apitest.Failure{Drop: true})
	assert.False(t, checker.Probe(context.Background()))
}

func TestAPICheckerCheck(t *testing.T) {
	srv, client := newAPI(t)
	checker := NewAPIChecker(client, nil)
	assert.Equal(t, "api", checker.Name())

	r := checker.Check(context.Background())
	assert.Equal(t, StatusHealthy, r.Status)

	srv.SetHealthy(false)
	r = checker.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, r.Status)
	assert.Equal(t, http.StatusServiceUnavailable, r.Details["http_status"])
}

func TestStoreChecker(t *testing.T) {
	slot := store.NewMemoryStore()
	checker := NewStoreChecker(slot)
	assert.Equal(t, "store", checker.Name())

	r := checker.Check(context.Background())
	assert.Equal(t, StatusHealthy, r.Status)
	assert.Equal(t, "session store empty", r.Message)

	record := []byte(`{"isAuthenticated":false}`)
	require.NoError(t, slot.Write(context.Background(), record))
	r = checker.Check(context.Background())
	assert.Equal(t, "session stored", r.Message)
	assert.Equal(t, len(record), r.Details["bytes"])
}

func TestContractChecker(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		_, client := newAPI(t)
		r := NewContractChecker(client).Check(context.Background())
		assert.Equal(t, StatusHealthy, r.Status)
		assert.Equal(t, "API de Autenticación de Usuarios", r.Details["title"])
	})

	t.Run("missing paths", func(t *testing.T) {
		srv, client := newAPI(t)
		srv.SetOpenAPI(apitest.PartialOpenAPI)

		r := NewContractChecker(client).Check(context.Background())
		assert.Equal(t, StatusDegraded, r.Status)
		assert.Equal(t, []string{"/refresh", "/users/me"}, r.Details["missing"])
	})

	t.Run("unavailable", func(t *testing.T) {
		srv, client := newAPI(t)
		srv.Fail("/openapi.json", apitest.Failure{Status: http.StatusNotFound})

		r := NewContractChecker(client).Check(context.Background())
		assert.Equal(t, StatusDegraded, r.Status)
	})

	t.Run("unparsable", func(t *testing.T) {
		srv, client := newAPI(t)
		srv.SetOpenAPI(`{"openapi": "3.0.3", "paths": [`)

		r := NewContractChecker(client).Check(context.Background())
		assert.Equal(t, StatusDegraded, r.Status)
		assert.Equal(t, "OpenAPI document unparsable", r.Message)
	})
}

func TestMissingPaths(t *testing.T) {
	doc := &openapi3.T{Paths: openapi3.NewPaths(
		openapi3.WithPath("/health", &openapi3.PathItem{}),
	)}
	assert.Equal(t, []string{"/token"}, MissingPaths(doc, []string{"/health", "/token"}))
	assert.Equal(t, []string{"/x"}, MissingPaths(&openapi3.T{}, []string{"/x"}))
}
