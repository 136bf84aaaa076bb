package health

import (
	"context"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// RequiredPaths are the endpoints the client calls.
var RequiredPaths = []string{"/register", "/token", "/refresh", "/users/me", "/health"}

// OpenAPIClient fetches the server's OpenAPI document.
type OpenAPIClient interface {
	OpenAPI(ctx context.Context) ([]byte, error)
}

// ContractChecker compares the server's published OpenAPI paths with the
// ones the client needs. A missing or unparsable document is degraded, not
// unhealthy: servers are not required to publish one.
type ContractChecker struct {
	client   OpenAPIClient
	required []string
}

// NewContractChecker creates a ContractChecker for RequiredPaths.
func NewContractChecker(client OpenAPIClient) *ContractChecker {
	return &ContractChecker{client: client, required: RequiredPaths}
}

// Name returns "contract".
func (c *ContractChecker) Name() string {
	return "contract"
}

// Check loads the document and reports missing paths.
func (c *ContractChecker) Check(ctx context.Context) *Result {
	data, err := c.client.OpenAPI(ctx)
	if err != nil {
		return Degraded("OpenAPI document unavailable")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return Degraded("OpenAPI document unparsable").WithDetail("error", err.Error())
	}

	missing := MissingPaths(doc, c.required)
	r := Healthy("API contract matches")
	if len(missing) > 0 {
		r = Degraded("API is missing " + strings.Join(missing, ", ")).
			WithDetail("missing", missing)
	}
	if doc.Info != nil {
		r.WithDetail("title", doc.Info.Title).WithDetail("version", doc.Info.Version)
	}
	return r
}

// MissingPaths returns the entries of required that doc does not declare.
func MissingPaths(doc *openapi3.T, required []string) []string {
	var missing []string
	for _, p := range required {
		if doc.Paths == nil || doc.Paths.Value(p) == nil {
			missing = append(missing, p)
		}
	}
	return missing
}
