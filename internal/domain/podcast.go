package domain

import (
	"errors"
	"strings"
)

// Common validation errors for podcast requests
var (
	ErrEmptyTopic = errors.New("podcast topic cannot be empty")
)

// PodcastRequest describes a podcast generation operation: a script is
// written first, then synthesized to audio speaker by speaker.
type PodcastRequest struct {
	Topic         string   `json:"topic" validate:"required"`
	Keywords      []string `json:"keywords,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Speakers      []string `json:"speakers,omitempty"`
	Style         string   `json:"style,omitempty"`
	AudioProvider string   `json:"audio_provider,omitempty"`
}

// Validate checks if the PodcastRequest has valid data.
func (r *PodcastRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return ErrEmptyTopic
	}
	return nil
}

// PodcastLine is a single utterance of the podcast script.
type PodcastLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// PodcastScript is the generated script of a podcast episode.
type PodcastScript struct {
	Title string        `json:"title"`
	Lines []PodcastLine `json:"lines"`
}

// PodcastResult is the outcome of a podcast generation operation.
type PodcastResult struct {
	Script *PodcastScript `json:"script"`
	Audio  []MediaAsset   `json:"audio"`
}
