// ABOUTME: Structured error types for the LLM client with per-type retryability.
// ABOUTME: Adapters classify HTTP failures into these types so the retry policy can act on them.
package llm

import "fmt"

// ClientError is the base error type for all errors raised by this package.
type ClientError struct {
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error { return e.Cause }

// IsRetryable returns false for the base error. Subtypes override this.
func (e *ClientError) IsRetryable() bool { return false }

// ConfigurationError indicates a misconfigured client (missing API key,
// unknown provider). Never retryable.
type ConfigurationError struct {
	ClientError
}

// ProviderError is an error returned by a provider's API, carrying the HTTP
// status and an optional Retry-After hint in seconds.
type ProviderError struct {
	ClientError
	Provider   string
	StatusCode int
	Retryable  bool
	RetryAfter *float64
}

// IsRetryable returns the flag set when the error was classified.
func (e *ProviderError) IsRetryable() bool { return e.Retryable }

// RateLimitError is a 429 response. Retryable, usually with a Retry-After hint.
type RateLimitError struct {
	ProviderError
}

func (e *RateLimitError) IsRetryable() bool { return true }

// ServerError is a 5xx response. Retryable.
type ServerError struct {
	ProviderError
}

func (e *ServerError) IsRetryable() bool { return true }

// AuthenticationError is a 401/403 response. Not retryable.
type AuthenticationError struct {
	ProviderError
}

func (e *AuthenticationError) IsRetryable() bool { return false }

// InvalidRequestError is a 400/404/422 response. Not retryable.
type InvalidRequestError struct {
	ProviderError
}

func (e *InvalidRequestError) IsRetryable() bool { return false }

// classifyStatus converts a provider HTTP status into the matching error type.
func classifyStatus(provider string, status int, msg string, cause error) error {
	pe := ProviderError{
		ClientError: ClientError{
			Message: fmt.Sprintf("%s: %s (status %d)", provider, msg, status),
			Cause:   cause,
		},
		Provider:   provider,
		StatusCode: status,
	}
	switch {
	case status == 429:
		pe.Retryable = true
		return &RateLimitError{ProviderError: pe}
	case status >= 500:
		pe.Retryable = true
		return &ServerError{ProviderError: pe}
	case status == 401 || status == 403:
		return &AuthenticationError{ProviderError: pe}
	default:
		return &InvalidRequestError{ProviderError: pe}
	}
}

// asProviderError extracts the embedded ProviderError from any of the
// classified subtypes, for callers that need status or Retry-After details.
func asProviderError(err error) (*ProviderError, bool) {
	switch e := err.(type) {
	case *RateLimitError:
		return &e.ProviderError, true
	case *ServerError:
		return &e.ProviderError, true
	case *AuthenticationError:
		return &e.ProviderError, true
	case *InvalidRequestError:
		return &e.ProviderError, true
	case *ProviderError:
		return e, true
	default:
		return nil, false
	}
}
