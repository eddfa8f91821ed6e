package generation

import (
	"context"
	"encoding/json"
)

// Request describes one text-generation call.
type Request struct {
	// Prompt is the user-facing prompt text. Required.
	Prompt string

	// SystemPrompt optionally sets provider-level system instructions.
	SystemPrompt string

	// Schema optionally requests structured output conforming to the given
	// JSON schema. When set, Result.Raw carries the structured payload.
	Schema json.RawMessage

	// UserID attributes the call to a user for quota accounting.
	UserID string
}

// Result is the outcome of a text-generation call.
type Result struct {
	// Text is the free-form model output. Empty when Schema was set.
	Text string

	// Raw is the structured output when a Schema was requested.
	Raw json.RawMessage

	// Model is the provider model that produced the output.
	Model string
}

// TextGenerator defines the interface for LLM text generation.
// This interface serves as a boundary between the application core and
// external AI/LLM services, following the hexagonal architecture pattern.
type TextGenerator interface {
	// Generate produces text (or a structured payload, when req.Schema is
	// set) from the given request. Provider quota exhaustion is reported
	// as a *LimitExceededError so callers can surface it distinctly.
	Generate(ctx context.Context, req Request) (*Result, error)
}

// Decode unmarshals a structured result into out.
// Returns ErrInvalidResponse if the payload is missing or malformed.
func (r *Result) Decode(out any) error {
	if len(r.Raw) == 0 {
		return ErrInvalidResponse
	}
	if err := json.Unmarshal(r.Raw, out); err != nil {
		return ErrInvalidResponse
	}
	return nil
}
