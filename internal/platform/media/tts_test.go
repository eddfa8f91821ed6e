package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ai/inkwell-api/internal/generation"
)

func newTTSServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestGenerateAudioSavesClip(t *testing.T) {
	t.Parallel()

	var gotBody map[string]string
	server := newTTSServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	})

	store := newTestStore(t)
	synth, err := NewSpeechSynthesizer(server.URL, store, nil)
	require.NoError(t, err)

	asset, err := synth.GenerateAudio(context.Background(), generation.AudioOptions{
		Text:        "The light swept the water.",
		Voice:       "Narrator",
		Language:    "en",
		SceneNumber: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "The light swept the water.", gotBody["text"])
	assert.Equal(t, "Narrator", gotBody["voice"])
	assert.Equal(t, "tts", asset.Provider)
	assert.Equal(t, 1, asset.SceneNumber)

	filePath, err := store.Resolve(asset.URL)
	require.NoError(t, err)
	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), data)
}

func TestGenerateAudioRejectsEmptyText(t *testing.T) {
	t.Parallel()

	synth, err := NewSpeechSynthesizer("http://localhost:1", newTestStore(t), nil)
	require.NoError(t, err)

	_, err = synth.GenerateAudio(context.Background(), generation.AudioOptions{Text: " "})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestGenerateAudioMapsRateLimit(t *testing.T) {
	t.Parallel()

	server := newTTSServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	synth, err := NewSpeechSynthesizer(server.URL, newTestStore(t), nil)
	require.NoError(t, err)

	_, err = synth.GenerateAudio(context.Background(), generation.AudioOptions{Text: "anything"})
	limitErr, ok := generation.AsLimitExceeded(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, limitErr.StatusCode)
	assert.Equal(t, "tts", limitErr.Provider)
}

func TestGenerateAudioServerErrorIsTransient(t *testing.T) {
	t.Parallel()

	server := newTTSServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	synth, err := NewSpeechSynthesizer(server.URL, newTestStore(t), nil)
	require.NoError(t, err)

	_, err = synth.GenerateAudio(context.Background(), generation.AudioOptions{Text: "anything"})
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
}

func TestGenerateAudioEmptyResponse(t *testing.T) {
	t.Parallel()

	server := newTTSServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	synth, err := NewSpeechSynthesizer(server.URL, newTestStore(t), nil)
	require.NoError(t, err)

	_, err = synth.GenerateAudio(context.Background(), generation.AudioOptions{Text: "anything"})
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
}
