package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Request is one call to the remote authority, relative to its base URL.
type Request struct {
	Method    string
	Path      string
	Body      []byte // JSON, nil for no body
	RequestID string
}

// Response is the raw answer to a Request.
type Response struct {
	StatusCode int
	Body       []byte
}

// Doer executes a Request. Implementations return an error only when no
// response was obtained at all; any HTTP status, including 5xx, is a
// Response.
type Doer interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// HTTPDoer sends requests with net/http.
type HTTPDoer struct {
	BaseURL string
	Token   string       // Bearer token, optional
	Client  *http.Client // nil means the shared client
}

// NewHTTPDoer creates an HTTPDoer for baseURL using the shared client.
func NewHTTPDoer(baseURL, token string) *HTTPDoer {
	return &HTTPDoer{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
	}
}

// Do sends the request and reads the whole response body.
func (d *HTTPDoer) Do(ctx context.Context, req Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, d.BaseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if d.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+d.Token)
	}
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-ID", requestID)

	client := d.Client
	if client == nil {
		client = GetHTTPClient()
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}
