// Package registry fetches tag lists from container registries over the
// standard v2 HTTP API, with anonymous bearer-token auth, pagination,
// per-host rate limiting, and bounded retries for transient failures.
package registry

import (
	"errors"
	"fmt"
	"time"
)

// NetworkError indicates a transport-level failure: DNS resolution, connect
// or TLS errors, or a timed-out request. These are transient and retried.
type NetworkError struct {
	Host string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("registry %s: network error: %v", e.Host, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// WrapNetworkError creates a new NetworkError.
func WrapNetworkError(host string, err error) error {
	return &NetworkError{Host: host, Err: err}
}

// RateLimitedError indicates the registry answered 429. RetryAfter is the
// server-requested pause, zero when the response carried no Retry-After
// header.
type RateLimitedError struct {
	Host       string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("registry %s: rate limited, retry after %s", e.Host, e.RetryAfter)
	}
	return fmt.Sprintf("registry %s: rate limited", e.Host)
}

// ProtocolError indicates the registry answered with an unexpected status
// or an unparseable payload. Status is zero when the payload, not the
// status line, was at fault. Not retried: the response was well received
// and a repeat attempt would get the same answer.
type ProtocolError struct {
	Host   string
	Status int
	Reason string
}

func (e *ProtocolError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("registry %s: unexpected status %d: %s", e.Host, e.Status, e.Reason)
	}
	return fmt.Sprintf("registry %s: protocol error: %s", e.Host, e.Reason)
}

// AuthError indicates anonymous authorization failed: the token endpoint
// rejected the request, or the registry kept answering 401 after a forced
// token refresh.
type AuthError struct {
	Host       string
	Repository string
	Reason     string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("registry %s: authorization failed for %s: %s", e.Host, e.Repository, e.Reason)
}

// retryable reports whether a failed request is worth repeating. Transport
// failures and rate limits pass, protocol and authorization failures do not.
func retryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var rlErr *RateLimitedError
	return errors.As(err, &rlErr)
}
