package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when a generation call fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate content")

	// ErrInvalidResponse is returned when the provider response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the provider blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during content generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrEmptyPrompt is returned when a generation request has no prompt text
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)

// UsageInfo carries the quota counters a provider reports alongside a limit
// failure. Numeric fields are pointers: a nil field was not reported by the
// provider and is omitted from responses rather than fabricated as zero.
type UsageInfo struct {
	Provider        string `json:"provider"`
	Message         string `json:"message,omitempty"`
	ErrorType       string `json:"error_type,omitempty"`
	CurrentTokens   *int64 `json:"current_tokens,omitempty"`
	RequestedTokens *int64 `json:"requested_tokens,omitempty"`
	Limit           *int64 `json:"limit,omitempty"`
	CurrentCalls    *int64 `json:"current_calls,omitempty"`
}

// LimitExceededError reports provider quota or subscription exhaustion.
// It must survive the whole propagation chain (stage, executor, registry,
// status endpoint) so the client sees the provider's status code and usage
// counters instead of a generic failure.
type LimitExceededError struct {
	// Provider is the name of the provider that rejected the call.
	Provider string

	// StatusCode is the HTTP-like code the provider reported,
	// conventionally 429 (rate/quota) or 402 (billing).
	StatusCode int

	// Message is the provider's human-readable description.
	Message string

	// Usage holds whatever counters the provider included.
	Usage UsageInfo
}

// Error implements the error interface.
func (e *LimitExceededError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s limit exceeded (%d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s limit exceeded (%d)", e.Provider, e.StatusCode)
}

// AsLimitExceeded unwraps err into a *LimitExceededError if it carries one.
func AsLimitExceeded(err error) (*LimitExceededError, bool) {
	var limitErr *LimitExceededError
	if errors.As(err, &limitErr) {
		return limitErr, true
	}
	return nil, false
}
