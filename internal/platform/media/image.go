package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/inkwell-ai/inkwell-api/internal/domain"
	"github.com/inkwell-ai/inkwell-api/internal/generation"
)

// ImageGenerator implements generation.ImageGenerator using the Imagen
// family of models through the Gemini API.
type ImageGenerator struct {
	store  *LocalStore
	model  string
	logger *slog.Logger

	// call performs the raw API request. Swapped in tests.
	call func(ctx context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// NewImageGenerator creates an ImageGenerator over an existing Gemini client.
func NewImageGenerator(client *genai.Client, store *LocalStore, model string, logger *slog.Logger) (*ImageGenerator, error) {
	if client == nil {
		return nil, errors.New("gemini client cannot be nil")
	}
	if store == nil {
		return nil, errors.New("media store cannot be nil")
	}
	if model == "" {
		return nil, fmt.Errorf("%w: image model cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	g := &ImageGenerator{
		store:  store,
		model:  model,
		logger: logger.With(slog.String("component", "image_generator")),
	}
	g.call = func(ctx context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
		return client.Models.GenerateImages(ctx, model, prompt, cfg)
	}
	return g, nil
}

// GenerateImage implements generation.ImageGenerator. The rendered image is
// saved to the media store; the returned asset references it by URL.
func (g *ImageGenerator) GenerateImage(ctx context.Context, opts generation.ImageOptions) (*domain.MediaAsset, error) {
	if strings.TrimSpace(opts.Prompt) == "" {
		return nil, generation.ErrEmptyPrompt
	}

	resp, err := g.call(ctx, g.model, opts.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, classifyImageError(err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("%w: no image generated", generation.ErrInvalidResponse)
	}

	img := resp.GeneratedImages[0].Image
	name := fmt.Sprintf("scene-%03d-%s.png", opts.SceneNumber, uuid.NewString()[:8])
	url, err := g.store.Save("images", name, img.ImageBytes)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("scene image generated",
		slog.Int("scene", opts.SceneNumber),
		slog.String("url", url))
	return &domain.MediaAsset{
		SceneNumber: opts.SceneNumber,
		URL:         url,
		Provider:    "gemini",
		Model:       g.model,
		Width:       opts.Width,
		Height:      opts.Height,
		Seed:        opts.Seed,
	}, nil
}

// classifyImageError maps provider errors onto the generation taxonomy,
// preserving quota and billing rejections as LimitExceededError.
func classifyImageError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
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
