package domain

import (
	"errors"
	"strings"
)

// Common validation errors for story requests
var (
	ErrEmptySetting = errors.New("story setting cannot be empty")
)

// StoryRequest describes a complete story video generation operation,
// covering premise, outline, scene images, narration audio, and the
// final composed video.
type StoryRequest struct {
	Setting        string `json:"setting" validate:"required"`
	Characters     string `json:"characters,omitempty"`
	PlotElements   string `json:"plot_elements,omitempty"`
	WritingStyle   string `json:"writing_style,omitempty"`
	Tone           string `json:"tone,omitempty"`
	NarrativePOV   string `json:"narrative_pov,omitempty"`
	AudienceAge    string `json:"audience_age,omitempty"`
	EndingPreference string `json:"ending_preference,omitempty"`

	ImageProvider string `json:"image_provider,omitempty"`
	ImageWidth    int    `json:"image_width,omitempty"`
	ImageHeight   int    `json:"image_height,omitempty"`
	AudioProvider string `json:"audio_provider,omitempty"`
	AudioLanguage string `json:"audio_language,omitempty"`
	VideoFPS      int    `json:"video_fps,omitempty"`
}

// Validate checks if the StoryRequest has valid data.
func (r *StoryRequest) Validate() error {
	if strings.TrimSpace(r.Setting) == "" {
		return ErrEmptySetting
	}
	return nil
}

// StoryScene is a single scene of a story outline.
type StoryScene struct {
	SceneNumber int    `json:"scene_number"`
	Title       string `json:"title"`
	Narration   string `json:"narration"`
	ImagePrompt string `json:"image_prompt"`
}

// MediaAsset is the metadata for one generated media artifact.
// The binary payload is written to provider storage; only the
// reference travels through task results.
type MediaAsset struct {
	SceneNumber int    `json:"scene_number,omitempty"`
	URL         string `json:"url"`
	Provider    string `json:"provider"`
	Model       string `json:"model,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	DurationSec float64 `json:"duration_sec,omitempty"`
	Seed        int64  `json:"seed,omitempty"`
}

// StoryResult is the outcome of a complete story video generation.
type StoryResult struct {
	Premise string       `json:"premise"`
	Scenes  []StoryScene `json:"scenes"`
	Images  []MediaAsset `json:"images"`
	Audio   []MediaAsset `json:"audio"`
	Video   *MediaAsset  `json:"video"`
}
