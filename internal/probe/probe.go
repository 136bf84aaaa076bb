// Package probe issues ad-hoc GET requests against the API and reports the
// raw outcome, for inspecting endpoints by hand.
package probe

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/authdemo/internal/api"
	"github.com/felixgeelhaar/authdemo/internal/session"
)

// Getter performs a GET with an optional bearer token.
type Getter interface {
	Get(ctx context.Context, path, bearer string) (*api.RawResponse, error)
}

// Result is what a probe reports.
type Result struct {
	Method     string `json:"method" yaml:"method"`
	Path       string `json:"path" yaml:"path"`
	Status     int    `json:"status" yaml:"status"`
	StatusText string `json:"statusText" yaml:"statusText"`
	// Body is the decoded JSON value, or the raw text when the body is not JSON.
	Body any `json:"body" yaml:"body"`
}

// OK reports whether the probe got a 2xx.
func (r *Result) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Prober sends probes on behalf of the current session.
type Prober struct {
	client Getter
	state  *session.State
}

// New creates a Prober. It reads state but never mutates it.
func New(client Getter, state *session.State) *Prober {
	return &Prober{client: client, state: state}
}

// Call GETs path. The access token is attached when one is present, except
// for /health. Only a failed network call returns an error; any status is a
// result.
func (p *Prober) Call(ctx context.Context, path string) (*Result, error) {
	path = normalize(path)

	bearer := ""
	if path != "/health" {
		bearer = p.state.Get().AccessToken
	}

	resp, err := p.client.Get(ctx, path, bearer)
	if err != nil {
		return nil, err
	}

	return &Result{
		Method:     http.MethodGet,
		Path:       path,
		Status:     resp.Status,
		StatusText: resp.StatusText,
		Body:       decodeBody(resp.Body),
	}, nil
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func decodeBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	return string(body)
}
