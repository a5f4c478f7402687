// Package errors provides the error taxonomy for the complaint console.
//
// Every failure that crosses a package boundary is one of the types below.
// The transport layer classifies remote responses exactly once; callers use
// the IsXxx predicates instead of inspecting status codes or messages.
//
// Taxonomy:
//   - NetworkFailureError: transient, the caller may retry
//   - RemoteRejectedError: the remote authority refused the request
//   - MalformedIdentifierError: a display identifier could not be decoded
//   - ValidationFailedError: a local precondition failed, no call was issued
//   - LoadFailedError: the complaint collection could not be loaded
//   - UnexpectedFailureError: a feedback probe failed for a reason other than not-found
//   - SessionExpiredError / LoginFailedError: the browser session gate
package errors

import (
	stderrors "errors"
	"fmt"
)

// NetworkFailureError indicates that a remote call did not complete.
//
// This error is returned when:
//   - The HTTP request could not be sent or the response could not be read
//   - The remote answered 408, 429, 502, 503 or 504
//   - The browser fetch() raised instead of returning a response
//
// Recovery strategy: retry the same call
type NetworkFailureError struct {
	Op  string
	Err error
}

func (e *NetworkFailureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network failure: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("network failure: %s", e.Op)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *NetworkFailureError) Unwrap() error {
	return e.Err
}

// NewNetworkFailureError creates a new network failure error with context
func NewNetworkFailureError(op string, err error) *NetworkFailureError {
	return &NetworkFailureError{Op: op, Err: err}
}

// RemoteRejectedError indicates that the remote authority answered but
// refused the request (4xx, or an envelope with success=false).
//
// Recovery strategy: none without changing the input
type RemoteRejectedError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RemoteRejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote rejected %s (HTTP %d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote rejected %s (HTTP %d)", e.Op, e.StatusCode)
}

// NewRemoteRejectedError creates a new remote rejection error
func NewRemoteRejectedError(op string, statusCode int, msg string) *RemoteRejectedError {
	return &RemoteRejectedError{Op: op, StatusCode: statusCode, Message: msg}
}

// MalformedIdentifierError indicates a display identifier whose sequence
// component is missing or not numeric. This is a data defect.
type MalformedIdentifierError struct {
	ID     string
	Reason string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("malformed identifier %q: %s", e.ID, e.Reason)
}

// NewMalformedIdentifierError creates a new malformed identifier error
func NewMalformedIdentifierError(id, reason string) *MalformedIdentifierError {
	return &MalformedIdentifierError{ID: id, Reason: reason}
}

// ValidationFailedError indicates a local precondition failure.
// No remote call is issued when this error is returned.
type ValidationFailedError struct {
	Field   string
	Message string
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// NewValidationFailedError creates a new validation error
func NewValidationFailedError(field, msg string) *ValidationFailedError {
	return &ValidationFailedError{Field: field, Message: msg}
}

// LoadFailedError wraps a failure to load the complaint collection.
//
// FirstLoad is true when no collection had been loaded before, in which
// case the store is left empty in an explicit failed state.
type LoadFailedError struct {
	FirstLoad bool
	Attempts  int
	Err       error
}

func (e *LoadFailedError) Error() string {
	return fmt.Sprintf("load failed after %d attempt(s): %v", e.Attempts, e.Err)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *LoadFailedError) Unwrap() error {
	return e.Err
}

// NewLoadFailedError creates a new load failure error
func NewLoadFailedError(firstLoad bool, attempts int, err error) *LoadFailedError {
	return &LoadFailedError{FirstLoad: firstLoad, Attempts: attempts, Err: err}
}

// UnexpectedFailureError indicates a feedback probe that failed for a reason
// other than not-found. It must be handled explicitly and never treated as
// "no feedback yet".
type UnexpectedFailureError struct {
	Op  string
	Err error
}

func (e *UnexpectedFailureError) Error() string {
	return fmt.Sprintf("unexpected failure: %s: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *UnexpectedFailureError) Unwrap() error {
	return e.Err
}

// NewUnexpectedFailureError creates a new unexpected failure error
func NewUnexpectedFailureError(op string, err error) *UnexpectedFailureError {
	return &UnexpectedFailureError{Op: op, Err: err}
}

// SessionExpiredError indicates that the console gate redirected to the
// login page instead of serving the request.
//
// Recovery strategy: Re-login with credentials
type SessionExpiredError struct {
	Message string
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired: %s", e.Message)
}

// NewSessionExpiredError creates a new session expired error with context
func NewSessionExpiredError(msg string) *SessionExpiredError {
	return &SessionExpiredError{Message: msg}
}

// LoginFailedError indicates that a login attempt failed.
type LoginFailedError struct {
	Message string
	Err     error
}

func (e *LoginFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("login failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("login failed: %s", e.Message)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *LoginFailedError) Unwrap() error {
	return e.Err
}

// NewLoginFailedError creates a new login failed error with context
func NewLoginFailedError(msg string, err error) *LoginFailedError {
	return &LoginFailedError{Message: msg, Err: err}
}

// IsNetworkFailure checks if the error chain contains a network failure
func IsNetworkFailure(err error) bool {
	var target *NetworkFailureError
	return stderrors.As(err, &target)
}

// IsRemoteRejected checks if the error chain contains a remote rejection
func IsRemoteRejected(err error) bool {
	var target *RemoteRejectedError
	return stderrors.As(err, &target)
}

// IsMalformedIdentifier checks if the error chain contains a malformed identifier
func IsMalformedIdentifier(err error) bool {
	var target *MalformedIdentifierError
	return stderrors.As(err, &target)
}

// IsValidationFailed checks if the error chain contains a validation failure
func IsValidationFailed(err error) bool {
	var target *ValidationFailedError
	return stderrors.As(err, &target)
}

// IsLoadFailed checks if the error chain contains a load failure
func IsLoadFailed(err error) bool {
	var target *LoadFailedError
	return stderrors.As(err, &target)
}

// IsUnexpectedFailure checks if the error chain contains an unexpected probe failure
func IsUnexpectedFailure(err error) bool {
	var target *UnexpectedFailureError
	return stderrors.As(err, &target)
}

// IsSessionExpired checks if the error chain contains a session expired error
func IsSessionExpired(err error) bool {
	var target *SessionExpiredError
	return stderrors.As(err, &target)
}

// IsLoginFailed checks if the error chain contains a login failure error
func IsLoginFailed(err error) bool {
	var target *LoginFailedError
	return stderrors.As(err, &target)
}

// IsRetryable reports whether retrying the same call may succeed.
func IsRetryable(err error) bool {
	return IsNetworkFailure(err)
}

// StatusCodeOf returns the HTTP status carried by a remote rejection, or 0.
func StatusCodeOf(err error) int {
	var target *RemoteRejectedError
	if stderrors.As(err, &target) {
		return target.StatusCode
	}
	return 0
}
