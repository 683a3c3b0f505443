package aiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey is returned by New when no credential is configured.
// Construction fails hard rather than producing a client that errors on
// every call.
var ErrMissingAPIKey = errors.New("openai api key is not configured")

// FailureKind classifies why a completion attempt produced no response.
type FailureKind int

const (
	// FailureNetwork covers connection problems before any HTTP status
	// arrives.
	FailureNetwork FailureKind = iota
	// FailureTimeout means the per-attempt deadline elapsed.
	FailureTimeout
	// FailureAPI means the upstream answered with a non-2xx status.
	FailureAPI
	// FailureInvalidResponse means a 2xx body could not be decoded.
	FailureInvalidResponse
)

// Failure describes a completion call that produced no usable response.
type Failure struct {
	Kind    FailureKind
	Status  int // HTTP status for FailureAPI, zero otherwise
	Message string
	cause   error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.cause }

// Transient reports whether retrying could plausibly succeed. Network
// problems, timeouts and 5xx statuses qualify; client errors and
// undecodable bodies do not.
func (f *Failure) Transient() bool {
	switch f.Kind {
	case FailureNetwork, FailureTimeout:
		return true
	case FailureAPI:
		return f.Status >= http.StatusInternalServerError
	default:
		return false
	}
}

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Bad request - invalid parameters",
	http.StatusUnauthorized:        "Authentication failed - check API key",
	http.StatusForbidden:           "Access forbidden - insufficient permissions",
	http.StatusTooManyRequests:     "Rate limit exceeded - too many requests",
	http.StatusInternalServerError: "Internal server error - try again later",
	http.StatusBadGateway:          "Bad gateway - service temporarily unavailable",
	http.StatusServiceUnavailable:  "Service unavailable - try again later",
}

// describeStatus renders the canned message for an HTTP status, appending
// the upstream error detail when the error envelope carried one.
func describeStatus(status int, detail string) string {
	msg, ok := statusMessages[status]
	if !ok {
		msg = fmt.Sprintf("API error (status %d)", status)
	}
	if detail != "" {
		return msg + ": " + detail
	}
	return msg
}
