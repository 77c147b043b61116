// Package graphql provides a GraphQL-over-HTTP client for the observing
// database endpoint.
package graphql

import (
	"context"
	"encoding/json"
)

// Request is the JSON body of a GraphQL HTTP request.
type Request struct {
	Query         string `json:"query"`
	OperationName string `json:"operationName,omitempty"`
	Variables     any    `json:"variables,omitempty"`
}

// Response is the undecoded outcome of a request that reached the server.
type Response struct {
	StatusCode int
	Body       []byte
}

// Envelope is the top-level shape of a GraphQL response body. Both members
// are kept raw so callers can hand them on unchanged.
type Envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// Location is a line/column position in the request document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error represents a single error returned in a GraphQL response.
type Error struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Client sends GraphQL requests. Implementations return an error only when
// no HTTP response was obtained; status handling is left to the caller.
type Client interface {
	Post(ctx context.Context, req Request) (*Response, error)
}
