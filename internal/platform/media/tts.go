package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-api/internal/domain"
	"github.com/inkwell-ai/inkwell-api/internal/generation"
)

// maxAudioResponseBytes bounds how much synthesized audio is read from the
// TTS endpoint for a single line.
const maxAudioResponseBytes = 32 << 20

// SpeechSynthesizer implements generation.AudioGenerator against an
// HTTP text-to-speech endpoint. The endpoint accepts a JSON body
// {text, voice, language} and responds with raw audio bytes.
type SpeechSynthesizer struct {
	endpoint string
	client   *http.Client
	store    *LocalStore
	logger   *slog.Logger
}

// NewSpeechSynthesizer creates a SpeechSynthesizer for the given endpoint.
func NewSpeechSynthesizer(endpoint string, store *LocalStore, logger *slog.Logger) (*SpeechSynthesizer, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("%w: tts endpoint cannot be empty", generation.ErrInvalidConfig)
	}
	if store == nil {
		return nil, errors.New("media store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SpeechSynthesizer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		store:    store,
		logger:   logger.With(slog.String("component", "speech_synthesizer")),
	}, nil
}

// GenerateAudio implements generation.AudioGenerator. The synthesized clip
// is saved to the media store; the returned asset references it by URL.
func (s *SpeechSynthesizer) GenerateAudio(ctx context.Context, opts generation.AudioOptions) (*domain.MediaAsset, error) {
	if strings.TrimSpace(opts.Text) == "" {
		return nil, fmt.Errorf("%w: audio text cannot be empty", generation.ErrInvalidConfig)
	}

	body, err := json.Marshal(map[string]string{
		"text":     opts.Text,
		"voice":    opts.Voice,
		"language": opts.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("encode tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, s.statusError(resp.StatusCode)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read tts response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio response", generation.ErrInvalidResponse)
	}

	name := fmt.Sprintf("clip-%03d-%s.mp3", opts.SceneNumber, uuid.NewString()[:8])
	url, err := s.store.Save("audio", name, audio)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("audio clip synthesized",
		slog.Int("scene", opts.SceneNumber),
		slog.String("url", url),
		slog.Int("bytes", len(audio)))
	return &domain.MediaAsset{
		SceneNumber: opts.SceneNumber,
		URL:         url,
		Provider:    "tts",
	}, nil
}

func (s *SpeechSynthesizer) statusError(status int) error {
	switch status {
	case http.StatusTooManyRequests:
		return &generation.LimitExceededError{
			Provider:   "tts",
			StatusCode: status,
			Message:    "tts rate limit exceeded",
			Usage:      generation.UsageInfo{Provider: "tts", ErrorType: "rate_limit"},
		}
	case http.StatusPaymentRequired:
		return &generation.LimitExceededError{
			Provider:   "tts",
			StatusCode: status,
			Message:    "tts billing limit reached",
			Usage:      generation.UsageInfo{Provider: "tts", ErrorType: "billing"},
		}
	default:
		if status >= 500 {
			return fmt.Errorf("%w: tts endpoint returned %d", generation.ErrTransientFailure, status)
		}
		return fmt.Errorf("%w: tts endpoint returned %d", generation.ErrGenerationFailed, status)
	}
}
