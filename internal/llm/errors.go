package llm

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrRateLimit is a 429 from the platform.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrAuthentication is a rejected API key (401 or 403).
type ErrAuthentication struct {
	StatusCode int
	Err        error
}

func (e *ErrAuthentication) Error() string {
	return fmt.Sprintf("authentication failed (HTTP %d): check the API key: %v", e.StatusCode, e.Err)
}

func (e *ErrAuthentication) Unwrap() error { return e.Err }

// ErrInvalidResponse is a reply that cannot be used, such as an empty
// answer.
type ErrInvalidResponse struct {
	Text string
	Err  error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable is a platform outage or an unreachable endpoint.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// classify maps an HTTP status from a platform error onto the error
// types above. Statuses with no special meaning return nil. h may be nil.
func classify(status int, h http.Header, err error) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &ErrAuthentication{StatusCode: status, Err: err}
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: retryAfter(h), Err: err}
	case status >= 500:
		return &ErrProviderUnavailable{Err: err}
	}
	return nil
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
