// Package api is the HTTP client for the authentication API contract:
// /register, /token, /refresh, /users/me, /health and /openapi.json.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/authdemo/internal/errors"
	"github.com/felixgeelhaar/authdemo/internal/log"
	"github.com/felixgeelhaar/authdemo/internal/metrics"
	"github.com/felixgeelhaar/authdemo/internal/telemetry"
	"github.com/felixgeelhaar/authdemo/internal/version"
)

// Fallback messages used when a failed response carries no detail.
const (
	FallbackRegister    = "Error en el registro"
	FallbackLogin       = "Credenciales inválidas"
	FallbackRefresh     = "No se pudo renovar el token"
	FallbackCurrentUser = "No se pudo obtener la información del usuario"
)

// RequestIDHeader carries a per-request id for server log correlation.
const RequestIDHeader = "X-Request-ID"

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

// Client talks to the auth API
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *log.Logger
	metrics    *metrics.Metrics
	requestID  func() string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records every request in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRequestIDFunc overrides how X-Request-ID values are generated.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) { c.requestID = fn }
}

// NewClient creates a new API client for baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: version.GetInfo().UserAgent(),
		logger:    log.Nop(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one call
type request struct {
	operation   string
	method      string
	path        string
	body        io.Reader
	contentType string
	bearer      string
}

// response is a fully read reply
type response struct {
	status     int
	statusText string
	header     http.Header
	body       []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// do performs an HTTP request. Transport failures come back as KindNetwork
// errors; any status, success or not, is returned as a response.
func (c *Client) do(ctx context.Context, r request) (*response, error) {
	ctx, span := telemetry.StartRequestSpan(ctx, r.method, r.path)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := c.requestID()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	}

	logger := c.logger.With("operation", r.operation, "request_id", requestID)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(r.operation, 0, time.Since(start))
		telemetry.RecordError(span, err)
		if stderrors.Is(err, context.Canceled) {
			return nil, err
		}
		netErr := errors.Network(err)
		logger.WithError(netErr).DebugContext(ctx, "request failed", "method", r.method, "path", r.path)
		return nil, netErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	elapsed := time.Since(start)
	c.record(r.operation, resp.StatusCode, elapsed)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, errors.Network(err)
	}

	logger.DebugContext(ctx, "request completed",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"duration_ms", elapsed.Milliseconds(),
	)

	out := &response{
		status:     resp.StatusCode,
		statusText: statusText(resp),
		header:     resp.Header,
		body:       body,
	}
	if out.ok() {
		telemetry.RecordSuccess(span)
	} else {
		telemetry.RecordError(span, fmt.Errorf("status %d", resp.StatusCode))
	}
	return out, nil
}

func (c *Client) record(operation string, status int, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordAPIRequest(operation, status, d)
	}
}

// statusText returns the reason phrase the server sent, falling back to the
// canonical text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	text = strings.TrimSpace(text)
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// apiError builds the error for a non-success response.
func apiError(resp *response, fallback string) *errors.Error {
	return errors.API(resp.status, ParseDetail(resp.body), fallback)
}

// ParseDetail extracts the "detail" member of an error body. A string is
// returned as is; a validation error list is flattened to its messages
// joined with " | ". Anything else yields "".
func ParseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, " | ")
	}

	return ""
}

func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return bytes.NewReader(data), nil
}

func formBody(values url.Values) io.Reader {
	return strings.NewReader(values.Encode())
}
