package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// FailureReason classifies why a provider call did not produce a usable result.
type FailureReason string

const (
	ReasonUnavailable       FailureReason = "unavailable"
	ReasonRateLimited       FailureReason = "rate_limited"
	ReasonTimeout           FailureReason = "timeout"
	ReasonTruncated         FailureReason = "truncated"
	ReasonMalformedResponse FailureReason = "malformed_response"
	ReasonAPIError          FailureReason = "api_error"
	ReasonCanceled          FailureReason = "canceled"
)

// CallError is returned by every provider operation that fails.
type CallError struct {
	Provider   string
	Op         string
	Reason     FailureReason
	StatusCode int
	Err        error
}

func (e *CallError) Error() string {
	msg := fmt.Sprintf("%s %s failed (%s)", e.Provider, e.Op, e.Reason)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += "; " + e.Err.Error()
	}
	return msg
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// NewCallError wraps err, deriving the reason from context errors when possible.
func NewCallError(provider, op string, reason FailureReason, err error) *CallError {
	switch {
	case errors.Is(err, context.Canceled):
		reason = ReasonCanceled
	case errors.Is(err, context.DeadlineExceeded):
		reason = ReasonTimeout
	}
	return &CallError{Provider: provider, Op: op, Reason: reason, Err: err}
}

// StatusError builds a CallError from a non-success HTTP status.
func StatusError(provider, op string, status int, err error) *CallError {
	return &CallError{
		Provider:   provider,
		Op:         op,
		Reason:     ReasonForStatus(status),
		StatusCode: status,
		Err:        err,
	}
}

// ReasonForStatus maps an HTTP status code to a failure reason.
func ReasonForStatus(status int) FailureReason {
	switch status {
	case http.StatusTooManyRequests:
		return ReasonRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ReasonTimeout
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusServiceUnavailable:
		return ReasonUnavailable
	default:
		return ReasonAPIError
	}
}

// ReasonOf returns the failure reason carried by err, or "" if err is not a CallError.
func ReasonOf(err error) FailureReason {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return ""
}
