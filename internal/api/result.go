package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/errors"
)

// ResultKind is the classified outcome of one remote call.
type ResultKind int

const (
	// ResultOK means a 2xx response whose envelope (if any) reported success.
	ResultOK ResultKind = iota
	// ResultNotFound means the remote authority answered 404.
	ResultNotFound
	// ResultFailed means anything else; Result.Err carries the typed error.
	ResultFailed
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// Result is decided once, at the transport boundary, for every remote call.
type Result struct {
	Kind ResultKind
	Data json.RawMessage // envelope data, OK only
	Err  error           // Failed only
}

// classify turns a Doer outcome into a Result.
//
// Classification:
//   - Doer error: NetworkFailure (SessionExpired passes through unchanged)
//   - 408, 429, 502, 503, 504: NetworkFailure
//   - 404: NotFound
//   - other non-2xx: RemoteRejected
//   - 2xx with success=false: RemoteRejected
//   - 2xx with empty body or 204: OK with no data
func classify(op string, resp *Response, doErr error) Result {
	if doErr != nil {
		if errors.IsSessionExpired(doErr) {
			return Result{Kind: ResultFailed, Err: doErr}
		}
		return Result{Kind: ResultFailed, Err: errors.NewNetworkFailureError(op, doErr)}
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return Result{Kind: ResultNotFound}
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return Result{
			Kind: ResultFailed,
			Err:  errors.NewNetworkFailureError(op, fmt.Errorf("HTTP %d", resp.StatusCode)),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{
			Kind: ResultFailed,
			Err:  errors.NewRemoteRejectedError(op, resp.StatusCode, messageOf(resp.Body)),
		}
	}

	if resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		return Result{Kind: ResultOK}
	}

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return Result{
			Kind: ResultFailed,
			Err:  errors.NewRemoteRejectedError(op, resp.StatusCode, fmt.Sprintf("invalid response body: %v", err)),
		}
	}
	if env.Success != nil && !*env.Success {
		return Result{
			Kind: ResultFailed,
			Err:  errors.NewRemoteRejectedError(op, resp.StatusCode, env.Message),
		}
	}

	return Result{Kind: ResultOK, Data: env.Data}
}

// messageOf extracts the envelope message from an error body, if there is one.
func messageOf(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	if len(body) > 200 {
		return string(body[:200])
	}
	return string(body)
}

// decode unmarshals the data of an OK result into out.
func (r Result) decode(op string, out any) error {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return errors.NewRemoteRejectedError(op, http.StatusOK, "response has no data")
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return errors.NewRemoteRejectedError(op, http.StatusOK, fmt.Sprintf("invalid response data: %v", err))
	}
	return nil
}
