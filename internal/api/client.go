// Package api is the transport boundary to the remote authority.
//
// This package implements:
//   - A shared, pooled HTTP client reused across all remote calls
//   - The Doer abstraction with an HTTP and a browser-session implementation
//   - Classification of every response into OK / NotFound / Failed, once
//   - The Authority client exposing the six remote operations
//
// Nothing above this package looks at HTTP status codes.
package api

import (
	"net/http"
	"time"
)

// sharedClient is the HTTP client used by every HTTPDoer that is not given
// its own client.
//
// Thread-safety:
//   - http.Client is safe for concurrent use by multiple goroutines,
//     which the bulk status fan-out relies on
var sharedClient *http.Client

func init() {
	sharedClient = NewHTTPClient(30*time.Second, 100)
}

// GetHTTPClient returns the shared HTTP client instance.
func GetHTTPClient() *http.Client {
	return sharedClient
}

// NewHTTPClient creates a new HTTP client with connection pooling.
//
// Connection pool configuration:
//   - MaxIdleConns: maxConns (total idle connections across all hosts)
//   - MaxIdleConnsPerHost: maxConns (the console talks to a single host,
//     and a bulk update opens one connection per worker)
//   - IdleConnTimeout: 90 seconds
//
// Parameters:
//   - timeout: Maximum time for a complete request (including reading response)
//   - maxConns: Idle connection pool size
func NewHTTPClient(timeout time.Duration, maxConns int) *http.Client {
	if maxConns < 1 {
		maxConns = 1
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        maxConns,
			MaxIdleConnsPerHost: maxConns,
			IdleConnTimeout:     90 * time.Second,
			DisableKeepAlives:   false,
			ForceAttemptHTTP2:   true,
		},
	}
}

// SetHTTPClient allows overriding the shared client (useful for testing).
func SetHTTPClient(client *http.Client) {
	sharedClient = client
}
