package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ai/inkwell-api/internal/cache"
	"github.com/inkwell-ai/inkwell-api/internal/config"
	"github.com/inkwell-ai/inkwell-api/internal/domain"
	"github.com/inkwell-ai/inkwell-api/internal/generation"
	"github.com/inkwell-ai/inkwell-api/internal/platform/media"
	"github.com/inkwell-ai/inkwell-api/internal/service"
	"github.com/inkwell-ai/inkwell-api/internal/service/auth"
	"github.com/inkwell-ai/inkwell-api/internal/task"
)

type stubTextGenerator struct{}

func (stubTextGenerator) Generate(_ context.Context, _ generation.Request) (*generation.Result, error) {
	return &generation.Result{
		Raw:   json.RawMessage(`{"keywords":["go"],"summary":"Research summary."}`),
		Model: "stub",
	}, nil
}

type stubImageGenerator struct{}

func (stubImageGenerator) GenerateImage(_ context.Context, opts generation.ImageOptions) (*domain.MediaAsset, error) {
	return &domain.MediaAsset{SceneNumber: opts.SceneNumber, URL: "/media/images/stub.png"}, nil
}

type stubAudioGenerator struct{}

func (stubAudioGenerator) GenerateAudio(_ context.Context, opts generation.AudioOptions) (*domain.MediaAsset, error) {
	return &domain.MediaAsset{SceneNumber: opts.SceneNumber, URL: "/media/audio/stub.mp3"}, nil
}

type stubVideoGenerator struct{}

func (stubVideoGenerator) ComposeVideo(_ context.Context, _ generation.VideoOptions, _ generation.ProgressFunc) (*domain.MediaAsset, error) {
	return &domain.MediaAsset{URL: "/media/video/stub.mp4"}, nil
}

// newTestApplication wires an application around stub providers so router
// behavior can be exercised without external services.
func newTestApplication(t *testing.T) *application {
	t.Helper()

	logger := slog.Default()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "thisisasecretkeythatis32charslong!!",
		TokenLifetimeMinutes: 10,
	})
	require.NoError(t, err)

	registry := task.NewRegistry(task.RegistryConfig{
		MaxProgressMessages: 50,
		Retention:           time.Hour,
	}, logger)
	executor := task.NewExecutor(registry, time.Minute, logger)
	t.Cleanup(executor.Stop)
	t.Cleanup(registry.Stop)

	contentCache := cache.New(cache.NewMemoryBackend(), false, logger)

	mediaStore, err := media.NewLocalStore(t.TempDir(), "/media", logger)
	require.NoError(t, err)

	cacheCfg := config.CacheConfig{ResearchTTLSeconds: 60, OutlineTTLSeconds: 60}
	blogService, err := service.NewBlogService(
		stubTextGenerator{}, contentCache, executor, nil, cacheCfg, logger)
	require.NoError(t, err)
	storyService, err := service.NewStoryService(
		stubTextGenerator{}, stubImageGenerator{}, stubAudioGenerator{}, stubVideoGenerator{},
		executor, nil, logger)
	require.NoError(t, err)
	podcastService, err := service.NewPodcastService(
		stubTextGenerator{}, stubAudioGenerator{}, executor, nil, logger)
	require.NoError(t, err)

	return &application{
		config:         &config.Config{Server: config.ServerConfig{Port: 0}},
		logger:         logger,
		jwtService:     jwtService,
		registry:       registry,
		executor:       executor,
		contentCache:   contentCache,
		mediaStore:     mediaStore,
		blogService:    blogService,
		storyService:   storyService,
		podcastService: podcastService,
	}
}

func TestHealthEndpointIsPublic(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	server := httptest.NewServer(app.setupRouter())
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIRoutesRequireAuthentication(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	server := httptest.NewServer(app.setupRouter())
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/blog/research/start",
		"application/json", strings.NewReader(`{"keywords":["go"]}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestResearchStartAndStatusRoundTrip(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	server := httptest.NewServer(app.setupRouter())
	defer server.Close()

	token, err := app.jwtService.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	startReq, err := http.NewRequest(http.MethodPost,
		server.URL+"/api/blog/research/start", strings.NewReader(`{"keywords":["go","testing"]}`))
	require.NoError(t, err)
	startReq.Header.Set("Authorization", "Bearer "+token)
	startReq.Header.Set("Content-Type", "application/json")

	startResp, err := http.DefaultClient.Do(startReq)
	require.NoError(t, err)
	defer func() { _ = startResp.Body.Close() }()
	require.Equal(t, http.StatusAccepted, startResp.StatusCode)

	var started struct {
		TaskID string `json:"task_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(startResp.Body).Decode(&started))
	assert.Equal(t, "started", started.Status)
	taskID, err := uuid.Parse(started.TaskID)
	require.NoError(t, err)

	statusURL := server.URL + "/api/blog/research/status/" + taskID.String()
	require.Eventually(t, func() bool {
		req, err := http.NewRequest(http.MethodGet, statusURL, nil)
		if err != nil {
			return false
		}
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		var status struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			return false
		}
		return status.Status == "completed"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestUnknownTaskStatusReturns404(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	server := httptest.NewServer(app.setupRouter())
	defer server.Close()

	token, err := app.jwtService.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet,
		server.URL+"/api/story/video/status/"+uuid.NewString(), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
