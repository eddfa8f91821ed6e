package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/inkwell-ai/inkwell-api/internal/config"
	"github.com/inkwell-ai/inkwell-api/internal/generation"
)

// newStubGenerator builds a Generator whose API call is replaced by the
// given stub, bypassing client construction.
func newStubGenerator(cfg config.LLMConfig, stub func(ctx context.Context, req generation.Request) (*genai.GenerateContentResponse, error)) *Generator {
	return &Generator{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		config: cfg,
		model:  "gemini-test",
		call:   stub,
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{{Text: text}},
				},
			},
		},
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	t.Parallel()

	calls := 0
	g := newStubGenerator(config.LLMConfig{MaxRetries: 1, RetryDelaySeconds: 1},
		func(ctx context.Context, req generation.Request) (*genai.GenerateContentResponse, error) {
			calls++
			return nil, nil
		})

	_, err := g.Generate(context.Background(), generation.Request{})
	assert.ErrorIs(t, err, generation.ErrEmptyPrompt)
	assert.Zero(t, calls, "API must not be called for an empty prompt")
}

func TestGenerateText(t *testing.T) {
	t.Parallel()

	g := newStubGenerator(config.LLMConfig{MaxRetries: 1, RetryDelaySeconds: 1},
		func(ctx context.Context, req generation.Request) (*genai.GenerateContentResponse, error) {
			return textResponse("Go favors composition over inheritance."), nil
		})

	result, err := g.Generate(context.Background(), generation.Request{Prompt: "write one sentence about Go"})
	require.NoError(t, err)
	assert.Equal(t, "Go favors composition over inheritance.", result.Text)
	assert.Empty(t, result.Raw)
	assert.Equal(t, "gemini-test", result.Model)
}

func TestGenerateStructuredOutput(t *testing.T) {
	t.Parallel()

	schema := json.RawMessage(`{"type":"object","properties":{"title":{"type":"string"}}}`)

	t.Run("valid json payload", func(t *testing.T) {
		t.Parallel()

		g := newStubGenerator(config.LLMConfig{MaxRetries: 1, RetryDelaySeconds: 1},
			func(ctx context.Context, req generation.Request) (*genai.GenerateContentResponse, error) {
				return textResponse(`{"title":"Error Handling in Go"}`), nil
			})

		result, err := g.Generate(context.Background(), generation.Request{Prompt: "outline", Schema: schema})
		require.NoError(t, err)

		var decoded struct {
			Title string `json:"title"`
		}
		require.NoError(t, result.Decode(&decoded))
		assert.Equal(t, "Error Handling in Go", decoded.Title)
	})

	t.Run("malformed json payload", func(t *testing.T) {
		t.Parallel()

		calls := 0
		g := newStubGenerator(config.LLMConfig{MaxRetries: 3, RetryDelaySeconds: 1},
			func(ctx context.Context, req generation.Request) (*genai.GenerateContentResponse, error) {
				calls++
				return textResponse(`{"title": truncated`), nil
			})

		_, err := g.Generate(context.Background(), generation.Request{Prompt: "outline", Schema: schema})
		assert.ErrorIs(t, err, generation.ErrInvalidResponse)
		assert.Equal(t, 1, calls, "malformed output is permanent and must not be retried")
	})
}

func TestGenerateRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	g := newStubGenerator(config.LLMConfig{MaxRetries: 3, RetryDelaySeconds: 1},
		func(ctx context.Context, req generation.Request) (*genai.GenerateContentResponse, error) {
			calls++
			if calls < 3 {
				return nil, genai.APIError{Code: 503, Message: "overloaded"}
			}
			return textResponse("eventually consistent"), nil
		})

	result, err := g.Generate(context.Background(), generation.Request{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "eventually consistent", result.Text)
	assert.Equal(t, 3, calls)
}

func TestGenerateExhaustsRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	g := newStubGenerator(config.LLMConfig{MaxRetries: 2, RetryDelaySeconds: 1},
		func(ctx context.Context, req generation.Request) (*genai.GenerateContentResponse, error) {
			calls++
			return nil, errors.New("connection reset")
		})

	_, err := g.Generate(context.Background(), generation.Request{Prompt: "hello"})
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
}

func TestGenerateLimitErrorsAreNotRetried(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		code       int
		wantStatus int
		wantType   string
	}{
		{name: "rate limit", code: 429, wantStatus: 429, wantType: "rate_limit"},
		{name: "billing", code: 402, wantStatus: 402, wantType: "billing"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			g := newStubGenerator(config.LLMConfig{MaxRetries: 3, RetryDelaySeconds: 1},
				func(ctx context.Context, req generation.Request) (*genai.GenerateContentResponse, error) {
					calls++
					return nil, genai.APIError{Code: tc.code, Message: "limit reached"}
				})

			_, err := g.Generate(context.Background(), generation.Request{Prompt: "hello"})
			limitErr, ok := generation.AsLimitExceeded(err)
			require.True(t, ok, "expected a limit error, got %v", err)
			assert.Equal(t, "gemini", limitErr.Provider)
			assert.Equal(t, tc.wantStatus, limitErr.StatusCode)
			assert.Equal(t, "limit reached", limitErr.Message)
			assert.Equal(t, tc.wantType, limitErr.Usage.ErrorType)
			assert.Equal(t, 1, calls, "limit errors must not be retried")
		})
	}
}

func TestGenerateClientErrorsAreNotRetried(t *testing.T) {
	t.Parallel()

	calls := 0
	g := newStubGenerator(config.LLMConfig{MaxRetries: 3, RetryDelaySeconds: 1},
		func(ctx context.Context, req generation.Request) (*genai.GenerateContentResponse, error) {
			calls++
			return nil, genai.APIError{Code: 400, Message: "invalid argument"}
		})

	_, err := g.Generate(context.Background(), generation.Request{Prompt: "hello"})
	assert.ErrorIs(t, err, generation.ErrGenerationFailed)
	assert.Equal(t, 1, calls)
}

func TestGenerateSafetyBlocked(t *testing.T) {
	t.Parallel()

	calls := 0
	g := newStubGenerator(config.LLMConfig{MaxRetries: 3, RetryDelaySeconds: 1},
		func(ctx context.Context, req generation.Request) (*genai.GenerateContentResponse, error) {
			calls++
			return &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{
						Content:      &genai.Content{Parts: []*genai.Part{{Text: "blocked"}}},
						FinishReason: genai.FinishReasonSafety,
					},
				},
			}, nil
		})

	_, err := g.Generate(context.Background(), generation.Request{Prompt: "hello"})
	assert.ErrorIs(t, err, generation.ErrContentBlocked)
	assert.Equal(t, 1, calls)
}

func TestGenerateEmptyResponse(t *testing.T) {
	t.Parallel()

	g := newStubGenerator(config.LLMConfig{MaxRetries: 0, RetryDelaySeconds: 1},
		func(ctx context.Context, req generation.Request) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		})

	_, err := g.Generate(context.Background(), generation.Request{Prompt: "hello"})
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
}
