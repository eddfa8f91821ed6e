package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"github.com/inkwell-ai/inkwell-api/internal/config"
	"github.com/inkwell-ai/inkwell-api/internal/generation"
)

// Generator implements generation.TextGenerator using Google's Gemini API.
type Generator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string

	// call performs the raw API request. Swapped in tests.
	call func(ctx context.Context, req generation.Request) (*genai.GenerateContentResponse, error)
}

// NewGenerator creates a Generator with the provided dependencies.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing API key, model name, and retry settings
//
// Returns:
//   - A properly initialized Generator or an error if initialization fails
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	g := &Generator{
		logger: logger.With(slog.String("component", "gemini_generator")),
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}
	g.call = g.callAPI
	return g, nil
}

// Client exposes the underlying Gemini client for collaborators that share
// the connection, such as the image generator.
func (g *Generator) Client() *genai.Client {
	return g.client
}

// Generate implements generation.TextGenerator. It calls the Gemini API with
// exponential backoff for transient failures; permanent failures, including
// quota exhaustion, are returned immediately.
func (g *Generator) Generate(ctx context.Context, req generation.Request) (*generation.Result, error) {
	if req.Prompt == "" {
		return nil, generation.ErrEmptyPrompt
	}

	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	baseDelaySeconds := g.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1 // for logging (1-based)
		g.logger.DebugContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1,
			"model", g.model,
			"structured", len(req.Schema) > 0)

		resp, err := g.call(ctx, req)
		if err == nil {
			result, extractErr := g.extractResult(req, resp)
			if extractErr == nil {
				g.logger.DebugContext(ctx, "Gemini API call successful", "attempt", attemptNum)
				return result, nil
			}
			err = extractErr
		} else {
			err = classifyAPIError(err)
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if !isTransient(err) {
			return nil, err
		}

		if attempt >= maxRetries {
			g.logger.WarnContext(ctx, "maximum retry attempts reached", "max_retries", maxRetries)
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, maxRetries)
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.DebugContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callAPI performs one GenerateContent request against the live client.
func (g *Generator) callAPI(ctx context.Context, req generation.Request) (*genai.GenerateContentResponse, error) {
	cfg := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	if len(req.Schema) > 0 {
		var schema genai.Schema
		if err := json.Unmarshal(req.Schema, &schema); err != nil {
			return nil, fmt.Errorf("%w: malformed response schema: %v", generation.ErrInvalidConfig, err)
		}
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = &schema
	}

	return g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
}

// extractResult validates the API response and shapes it into a Result.
func (g *Generator) extractResult(req generation.Request, resp *genai.GenerateContentResponse) (*generation.Result, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}

	result := &generation.Result{Model: g.model}
	if len(req.Schema) > 0 {
		if !json.Valid([]byte(text)) {
			return nil, fmt.Errorf("%w: structured response is not valid JSON", generation.ErrInvalidResponse)
		}
		result.Raw = json.RawMessage(text)
	} else {
		result.Text = text
	}
	return result, nil
}

// classifyAPIError maps provider errors onto the generation error taxonomy.
// Quota and billing rejections become LimitExceededError so their status
// codes survive to the client; server-side failures stay transient.
func classifyAPIError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		// Network and transport errors are worth a retry.
		return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	switch {
	case apiErr.Code == 429:
		return &generation.LimitExceededError{
			Provider:   "gemini",
			StatusCode: 429,
			Message:    apiErr.Message,
			Usage: generation.UsageInfo{
				Provider:  "gemini",
				ErrorType: "rate_limit",
			},
		}
	case apiErr.Code == 402:
		return &generation.LimitExceededError{
			Provider:   "gemini",
			StatusCode: 402,
			Message:    apiErr.Message,
			Usage: generation.UsageInfo{
				Provider:  "gemini",
				ErrorType: "billing",
			},
		}
	case apiErr.Code >= 500:
		return fmt.Errorf("%w: %v", generation.ErrTransientFailure, apiErr)
	default:
		return fmt.Errorf("%w: %v", generation.ErrGenerationFailed, apiErr)
	}
}

func isTransient(err error) bool {
	return errors.Is(err, generation.ErrTransientFailure)
}
