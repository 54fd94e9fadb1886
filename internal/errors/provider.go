// Package errors defines the error taxonomy shared by the search pipeline.
package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
)

// ProviderErrorKind classifies why a single provider call failed.
type ProviderErrorKind string

const (
	// KindTimeout means the call did not settle before its deadline.
	KindTimeout ProviderErrorKind = "timeout"
	// KindTransport covers network failures, 5xx responses, undecodable bodies and open circuits.
	KindTransport ProviderErrorKind = "transportFailure"
	// KindRejected means the upstream refused the request (4xx, rate limit, bad credentials).
	KindRejected ProviderErrorKind = "upstreamRejected"
)

// ProviderError is the failure of exactly one provider adapter.
// It is recorded in the search result and never aborts the pipeline.
type ProviderError struct {
	Provider string
	Kind     ProviderErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a ProviderError of the given kind.
func NewProviderError(provider string, kind ProviderErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// IsProviderError reports whether err is a ProviderError (even when wrapped).
func IsProviderError(err error) bool {
	var pErr *ProviderError
	return stdErrors.As(err, &pErr)
}

// AsProviderError converts any error returned by an adapter into a ProviderError
// attributed to provider. Existing ProviderErrors keep their kind, deadline errors
// become timeouts, rate limit errors become rejections and everything else is a
// transport failure.
func AsProviderError(provider string, err error) *ProviderError {
	if err == nil {
		return nil
	}

	var pErr *ProviderError
	if stdErrors.As(err, &pErr) {
		if pErr.Provider == "" {
			return &ProviderError{Provider: provider, Kind: pErr.Kind, Err: pErr.Err}
		}
		return pErr
	}

	switch {
	case stdErrors.Is(err, context.DeadlineExceeded):
		return NewProviderError(provider, KindTimeout, err)
	case IsRateLimitError(err):
		return NewProviderError(provider, KindRejected, err)
	default:
		return NewProviderError(provider, KindTransport, err)
	}
}
