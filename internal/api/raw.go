package api

import (
	"context"
	"net/http"
)

// RawResponse is an unprocessed reply to a GET.
type RawResponse struct {
	Status      int
	StatusText  string
	ContentType string
	Body        []byte
}

// OK reports whether Status is 2xx.
func (r *RawResponse) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Get issues a GET to path, optionally with a bearer token. Only transport
// failures are errors; every status is returned.
func (c *Client) Get(ctx context.Context, path, bearer string) (*RawResponse, error) {
	resp, err := c.do(ctx, request{
		operation: "get",
		method:    http.MethodGet,
		path:      path,
		bearer:    bearer,
	})
	if err != nil {
		return nil, err
	}
	return &RawResponse{
		Status:      resp.status,
		StatusText:  resp.statusText,
		ContentType: resp.header.Get("Content-Type"),
		Body:        resp.body,
	}, nil
}

// Health probes /health without credentials. A nil error means 2xx.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, request{
		operation: "health",
		method:    http.MethodGet,
		path:      "/health",
	})
	if err != nil {
		return err
	}
	if !resp.ok() {
		return apiError(resp, http.StatusText(resp.status))
	}
	return nil
}

// OpenAPI fetches the server's /openapi.json document.
func (c *Client) OpenAPI(ctx context.Context) ([]byte, error) {
	resp, err := c.do(ctx, request{
		operation: "openapi",
		method:    http.MethodGet,
		path:      "/openapi.json",
	})
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, apiError(resp, http.StatusText(resp.status))
	}
	return resp.body, nil
}
