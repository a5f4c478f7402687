package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/errors"
)

// Authority is the client for the remote authority's complaint and feedback
// endpoints. Every response is classified once by classify; methods return
// typed errors from internal/errors.
//
// Thread-safety: safe for concurrent use if the Doer is.
type Authority struct {
	doer   Doer
	dryRun bool
}

// Option configures an Authority.
type Option func(*Authority)

// WithDryRun makes UpdateComplaintStatus log the call it would make and
// report success without contacting the remote authority.
func WithDryRun(enabled bool) Option {
	return func(a *Authority) {
		a.dryRun = enabled
	}
}

// NewAuthority creates an Authority that sends its requests through doer.
func NewAuthority(doer Doer, opts ...Option) *Authority {
	a := &Authority{doer: doer}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// call encodes body (if any), sends the request and classifies the outcome.
func (a *Authority) call(ctx context.Context, op, method, path string, body any) Result {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return Result{Kind: ResultFailed, Err: errors.NewUnexpectedFailureError(op, err)}
		}
		payload = encoded
	}

	resp, err := a.doer.Do(ctx, Request{Method: method, Path: path, Body: payload})
	return classify(op, resp, err)
}

// ListComplaints fetches the full complaint collection.
func (a *Authority) ListComplaints(ctx context.Context) ([]RemoteComplaint, error) {
	const op = "list complaints"

	res := a.call(ctx, op, http.MethodGet, "/admin/complaints", nil)
	switch res.Kind {
	case ResultNotFound:
		return nil, errors.NewRemoteRejectedError(op, http.StatusNotFound, "complaint list endpoint not found")
	case ResultFailed:
		return nil, res.Err
	}

	if len(res.Data) == 0 || string(res.Data) == "null" {
		return []RemoteComplaint{}, nil
	}

	var items []RemoteComplaint
	if err := res.decode(op, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateComplaintStatus sets the status code of the complaint with the given
// sequence. The response body is not consumed beyond success signalling.
func (a *Authority) UpdateComplaintStatus(ctx context.Context, seq, code int) error {
	const op = "update complaint status"
	path := fmt.Sprintf("/admin/complaints/%d/status", seq)

	if a.dryRun {
		log.Printf("  🐛 DEBUG MODE: Skipping API call\n")
		log.Printf("  🐛 Would call: PATCH %s {\"status\":%d}\n", path, code)
		return nil
	}

	res := a.call(ctx, op, http.MethodPatch, path, statusBody{Status: code})
	switch res.Kind {
	case ResultNotFound:
		return errors.NewRemoteRejectedError(op, http.StatusNotFound, fmt.Sprintf("complaint %d not found", seq))
	case ResultFailed:
		return res.Err
	}
	return nil
}

// FeedbackByComplaint probes for the feedback linked to a complaint.
//
// A not-found response is the normal "no feedback yet" outcome: it returns a
// lookup without feedback and a nil error. A successful response with no
// data is treated the same way.
func (a *Authority) FeedbackByComplaint(ctx context.Context, seq int) (FeedbackLookup, error) {
	const op = "get feedback by complaint"
	lookup := FeedbackLookup{ComplaintID: seq}

	res := a.call(ctx, op, http.MethodGet, fmt.Sprintf("/feedbacks/complaints/%d", seq), nil)
	switch res.Kind {
	case ResultNotFound:
		return lookup, nil
	case ResultFailed:
		return lookup, res.Err
	}

	if len(res.Data) == 0 || string(res.Data) == "null" {
		return lookup, nil
	}

	var fb RemoteFeedback
	if err := res.decode(op, &fb); err != nil {
		return lookup, err
	}
	lookup.Feedback = &fb
	return lookup, nil
}

// CreateFeedback creates the feedback for the complaint with the given
// sequence and returns it with its assigned id.
func (a *Authority) CreateFeedback(ctx context.Context, seq int, body FeedbackBody) (*RemoteFeedback, error) {
	const op = "create feedback"
	return a.writeFeedback(ctx, op, http.MethodPost, fmt.Sprintf("/feedbacks/complaints/%d", seq), body)
}

// UpdateFeedback replaces the title and content of an existing feedback.
func (a *Authority) UpdateFeedback(ctx context.Context, id int64, body FeedbackBody) (*RemoteFeedback, error) {
	const op = "update feedback"
	return a.writeFeedback(ctx, op, http.MethodPut, fmt.Sprintf("/feedbacks/%d", id), body)
}

func (a *Authority) writeFeedback(ctx context.Context, op, method, path string, body FeedbackBody) (*RemoteFeedback, error) {
	res := a.call(ctx, op, method, path, body)
	switch res.Kind {
	case ResultNotFound:
		return nil, errors.NewRemoteRejectedError(op, http.StatusNotFound, path+" not found")
	case ResultFailed:
		return nil, res.Err
	}

	var fb RemoteFeedback
	if err := res.decode(op, &fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

// DeleteFeedback removes the feedback with the given id.
func (a *Authority) DeleteFeedback(ctx context.Context, id int64) error {
	const op = "delete feedback"

	res := a.call(ctx, op, http.MethodDelete, fmt.Sprintf("/feedbacks/%d", id), nil)
	switch res.Kind {
	case ResultNotFound:
		return errors.NewRemoteRejectedError(op, http.StatusNotFound, fmt.Sprintf("feedback %d not found", id))
	case ResultFailed:
		return res.Err
	}
	return nil
}
