package generation

import (
	"context"

	"github.com/inkwell-ai/inkwell-api/internal/domain"
)

// ProgressFunc reports sub-progress (0-100 within the current operation)
// together with a human-readable message. Implementations may call it at
// any cadence; callers rescale into overall task progress.
type ProgressFunc func(subProgress float64, message string)

// ImageOptions describes one image-generation call.
type ImageOptions struct {
	Prompt   string
	Provider string
	Model    string
	Width    int
	Height   int
	Seed     int64
	// SceneNumber tags the asset with its position in a scene sequence.
	SceneNumber int
	UserID      string
}

// ImageGenerator defines the interface for image generation providers.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, opts ImageOptions) (*domain.MediaAsset, error)
}

// AudioOptions describes one audio-synthesis call.
type AudioOptions struct {
	Text        string
	Provider    string
	Language    string
	Voice       string
	SceneNumber int
	UserID      string
}

// AudioGenerator defines the interface for audio synthesis providers.
type AudioGenerator interface {
	GenerateAudio(ctx context.Context, opts AudioOptions) (*domain.MediaAsset, error)
}

// VideoOptions describes one video-composition call. Image and audio URLs
// are positional: index i of each belongs to scene i.
type VideoOptions struct {
	Title              string
	Scenes             []domain.StoryScene
	ImageURLs          []string
	AudioURLs          []string
	FPS                int
	TransitionDuration float64
	UserID             string
}

// VideoGenerator defines the interface for video composition providers.
// Composition is slow, so implementations report sub-progress through the
// callback when it is non-nil.
type VideoGenerator interface {
	ComposeVideo(ctx context.Context, opts VideoOptions, progress ProgressFunc) (*domain.MediaAsset, error)
}
