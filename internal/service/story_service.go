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

// Progress spans for the story video pipeline. Premise and outline are
// quick LLM calls; media generation and composition carry most of the time.
const (
	storyPremiseEnd = 10
	storyScenesEnd  = 30
	storyImagesEnd  = 50
	storyAudioEnd   = 70
)

// StoryService orchestrates the complete story-to-video pipeline: premise,
// scene outline, per-scene images and narration, and the final composed
// video.
type StoryService struct {
	generator generation.TextGenerator
	images    generation.ImageGenerator
	audio     generation.AudioGenerator
	video     generation.VideoGenerator
	executor  *task.Executor
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewStoryService creates a StoryService with the given dependencies.
// The emitter may be nil, which disables asset tracking.
func NewStoryService(
	generator generation.TextGenerator,
	images generation.ImageGenerator,
	audio generation.AudioGenerator,
	video generation.VideoGenerator,
	executor *task.Executor,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*StoryService, error) {
	if generator == nil {
		return nil, errors.New("text generator cannot be nil")
	}
	if images == nil {
		return nil, errors.New("image generator cannot be nil")
	}
	if audio == nil {
		return nil, errors.New("audio generator cannot be nil")
	}
	if video == nil {
		return nil, errors.New("video generator cannot be nil")
	}
	if executor == nil {
		return nil, errors.New("task executor cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StoryService{
		generator: generator,
		images:    images,
		audio:     audio,
		video:     video,
		executor:  executor,
		emitter:   emitter,
		logger:    logger.With(slog.String("component", "story_service")),
	}, nil
}

// StartVideo validates the request and launches the full video generation
// pipeline, returning its task ID immediately.
func (s *StoryService) StartVideo(ctx context.Context, req domain.StoryRequest, userID string) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}

	// Pipeline state shared between stages.
	var (
		premise string
		scenes  []domain.StoryScene
		images  []domain.MediaAsset
		audio   []domain.MediaAsset
	)

	stages := []task.Stage{
		{
			Name:  "Writing premise",
			Start: 0,
			End:   storyPremiseEnd,
			Run: func(ctx context.Context, report generation.ProgressFunc) (any, error) {
				result, err := s.generator.Generate(ctx, generation.Request{
					Prompt: buildPremisePrompt(req),
					UserID: userID,
				})
				if err != nil {
					return nil, err
				}
				premise = result.Text
				return nil, nil
			},
		},
		{
			Name:  "Outlining scenes",
			Start: storyPremiseEnd,
			End:   storyScenesEnd,
			Run: func(ctx context.Context, report generation.ProgressFunc) (any, error) {
				result, err := s.generator.Generate(ctx, generation.Request{
					Prompt: buildScenesPrompt(req, premise),
					Schema: scenesSchema,
					UserID: userID,
				})
				if err != nil {
					return nil, err
				}
				var outline struct {
					Scenes []domain.StoryScene `json:"scenes"`
				}
				if err := result.Decode(&outline); err != nil {
					return nil, err
				}
				if len(outline.Scenes) == 0 {
					return nil, fmt.Errorf("%w: outline has no scenes", generation.ErrInvalidResponse)
				}
				scenes = outline.Scenes
				return nil, nil
			},
		},
		{
			Name:  "Generating scene images",
			Start: storyScenesEnd,
			End:   storyImagesEnd,
			Run: func(ctx context.Context, report generation.ProgressFunc) (any, error) {
				for i, scene := range scenes {
					report(float64(i)/float64(len(scenes))*100,
						fmt.Sprintf("Generating image for scene %d/%d", i+1, len(scenes)))
					asset, err := s.images.GenerateImage(ctx, generation.ImageOptions{
						Prompt:      scene.ImagePrompt,
						Provider:    req.ImageProvider,
						Width:       req.ImageWidth,
						Height:      req.ImageHeight,
						SceneNumber: scene.SceneNumber,
						UserID:      userID,
					})
					if err != nil {
						return nil, fmt.Errorf("scene %d image: %w", scene.SceneNumber, err)
					}
					images = append(images, *asset)
				}
				return nil, nil
			},
		},
		{
			Name:  "Synthesizing narration",
			Start: storyImagesEnd,
			End:   storyAudioEnd,
			Run: func(ctx context.Context, report generation.ProgressFunc) (any, error) {
				for i, scene := range scenes {
					report(float64(i)/float64(len(scenes))*100,
						fmt.Sprintf("Narrating scene %d/%d", i+1, len(scenes)))
					asset, err := s.audio.GenerateAudio(ctx, generation.AudioOptions{
						Text:        scene.Narration,
						Provider:    req.AudioProvider,
						Language:    req.AudioLanguage,
						SceneNumber: scene.SceneNumber,
						UserID:      userID,
					})
					if err != nil {
						return nil, fmt.Errorf("scene %d narration: %w", scene.SceneNumber, err)
					}
					audio = append(audio, *asset)
				}
				return nil, nil
			},
		},
		{
			Name:  "Composing video",
			Start: storyAudioEnd,
			End:   100,
			Run: func(ctx context.Context, report generation.ProgressFunc) (any, error) {
				imageURLs := make([]string, len(images))
				for i, asset := range images {
					imageURLs[i] = asset.URL
				}
				audioURLs := make([]string, len(audio))
				for i, asset := range audio {
					audioURLs[i] = asset.URL
				}

				videoAsset, err := s.video.ComposeVideo(ctx, generation.VideoOptions{
					Scenes:    scenes,
					ImageURLs: imageURLs,
					AudioURLs: audioURLs,
					FPS:       req.VideoFPS,
					UserID:    userID,
				}, report)
				if err != nil {
					return nil, err
				}

				return &domain.StoryResult{
					Premise: premise,
					Scenes:  scenes,
					Images:  images,
					Audio:   audio,
					Video:   videoAsset,
				}, nil
			},
		},
	}

	return s.executor.Launch(task.TypeStoryVideo, stages, contentCompletion(s.emitter, s.logger, userID))
}
