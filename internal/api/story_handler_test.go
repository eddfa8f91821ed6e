package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ai/inkwell-api/internal/api/shared"
	"github.com/inkwell-ai/inkwell-api/internal/domain"
	"github.com/inkwell-ai/inkwell-api/internal/generation"
	"github.com/inkwell-ai/inkwell-api/internal/service"
	"github.com/inkwell-ai/inkwell-api/internal/task"
)

type stubImageGen struct{}

func (stubImageGen) GenerateImage(_ context.Context, opts generation.ImageOptions) (*domain.MediaAsset, error) {
	return &domain.MediaAsset{SceneNumber: opts.SceneNumber, URL: "/media/images/stub.png"}, nil
}

type stubAudioGen struct{}

func (stubAudioGen) GenerateAudio(_ context.Context, opts generation.AudioOptions) (*domain.MediaAsset, error) {
	return &domain.MediaAsset{SceneNumber: opts.SceneNumber, URL: "/media/audio/stub.mp3"}, nil
}

type stubVideoGen struct{}

func (stubVideoGen) ComposeVideo(_ context.Context, _ generation.VideoOptions, _ generation.ProgressFunc) (*domain.MediaAsset, error) {
	return &domain.MediaAsset{URL: "/media/video/stub.mp4"}, nil
}

func newStoryHandlerFixture(t *testing.T) *StoryHandler {
	t.Helper()

	registry := task.NewRegistry(task.RegistryConfig{MaxProgressMessages: 100}, nil)
	executor := task.NewExecutor(registry, 0, nil)
	t.Cleanup(executor.Stop)

	svc, err := service.NewStoryService(
		&stubTextGenerator{result: domain.StoryScene{}},
		stubImageGen{}, stubAudioGen{}, stubVideoGen{},
		executor, nil, nil)
	require.NoError(t, err)

	return NewStoryHandler(svc, registry, nil)
}

func TestStartVideoRequiresAuthentication(t *testing.T) {
	t.Parallel()

	handler := newStoryHandlerFixture(t)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/story/video/start",
		nil)
	handler.StartVideo(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestStartVideoRejectsBlankSetting(t *testing.T) {
	t.Parallel()

	handler := newStoryHandlerFixture(t)

	recorder := httptest.NewRecorder()
	handler.StartVideo(recorder, authedRequest(http.MethodPost, "/api/story/video/start",
		`{"setting":"   "}`))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, domain.ErrEmptySetting.Error(), resp.Error)
}
