package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-api/internal/domain"
	"github.com/inkwell-ai/inkwell-api/internal/events"
	"github.com/inkwell-ai/inkwell-api/internal/generation"
	"github.com/inkwell-ai/inkwell-api/internal/task"
)

// PodcastService orchestrates podcast episode generation: an LLM-written
// script followed by per-line audio synthesis.
type PodcastService struct {
	generator generation.TextGenerator
	audio     generation.AudioGenerator
	executor  *task.Executor
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewPodcastService creates a PodcastService with the given dependencies.
// The emitter may be nil, which disables asset tracking.
func NewPodcastService(
	generator generation.TextGenerator,
	audio generation.AudioGenerator,
	executor *task.Executor,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*PodcastService, error) {
	if generator == nil {
		return nil, errors.New("text generator cannot be nil")
	}
	if audio == nil {
		return nil, errors.New("audio generator cannot be nil")
	}
	if executor == nil {
		return nil, errors.New("task executor cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PodcastService{
		generator: generator,
		audio:     audio,
		executor:  executor,
		emitter:   emitter,
		logger:    logger.With(slog.String("component", "podcast_service")),
	}, nil
}

// StartEpisode validates the request and launches script writing plus audio
// synthesis as a background task, returning its ID immediately.
func (s *PodcastService) StartEpisode(ctx context.Context, req domain.PodcastRequest, userID string) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}

	var script domain.PodcastScript

	stages := []task.Stage{
		{
			Name:  "Writing script",
			Start: 0,
			End:   60,
			Run: func(ctx context.Context, report generation.ProgressFunc) (any, error) {
				result, err := s.generator.Generate(ctx, generation.Request{
					Prompt: buildPodcastPrompt(req),
					Schema: podcastSchema,
					UserID: userID,
				})
				if err != nil {
					return nil, err
				}
				if err := result.Decode(&script); err != nil {
					return nil, err
				}
				if len(script.Lines) == 0 {
					return nil, fmt.Errorf("%w: script has no lines", generation.ErrInvalidResponse)
				}
				return nil, nil
			},
		},
		{
			Name:  "Synthesizing audio",
			Start: 60,
			End:   100,
			Run: func(ctx context.Context, report generation.ProgressFunc) (any, error) {
				var assets []domain.MediaAsset
				for i, line := range script.Lines {
					report(float64(i)/float64(len(script.Lines))*100,
						fmt.Sprintf("Synthesizing line %d/%d (%s)", i+1, len(script.Lines), line.Speaker))
					asset, err := s.audio.GenerateAudio(ctx, generation.AudioOptions{
						Text:        line.Text,
						Provider:    req.AudioProvider,
						Voice:       line.Speaker,
						SceneNumber: i + 1,
						UserID:      userID,
					})
					if err != nil {
						return nil, fmt.Errorf("line %d: %w", i+1, err)
					}
					assets = append(assets, *asset)
				}
				return &domain.PodcastResult{
					Script: &script,
					Audio:  assets,
				}, nil
			},
		},
	}

	return s.executor.Launch(task.TypePodcast, stages, contentCompletion(s.emitter, s.logger, userID))
}
