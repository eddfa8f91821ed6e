package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ai/inkwell-api/internal/domain"
	"github.com/inkwell-ai/inkwell-api/internal/events"
	"github.com/inkwell-ai/inkwell-api/internal/generation"
	"github.com/inkwell-ai/inkwell-api/internal/store"
	"github.com/inkwell-ai/inkwell-api/internal/task"
)

// mockTextGenerator implements generation.TextGenerator with a
// function field for testing.
type mockTextGenerator struct {
	mu         sync.Mutex
	calls      int
	GenerateFn func(ctx context.Context, req generation.Request) (*generation.Result, error)
}

func (m *mockTextGenerator) Generate(ctx context.Context, req generation.Request) (*generation.Result, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.GenerateFn(ctx, req)
}

func (m *mockTextGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockImageGenerator implements generation.ImageGenerator.
type mockImageGenerator struct {
	GenerateImageFn func(ctx context.Context, opts generation.ImageOptions) (*domain.MediaAsset, error)
}

func (m *mockImageGenerator) GenerateImage(ctx context.Context, opts generation.ImageOptions) (*domain.MediaAsset, error) {
	return m.GenerateImageFn(ctx, opts)
}

// mockAudioGenerator implements generation.AudioGenerator.
type mockAudioGenerator struct {
	GenerateAudioFn func(ctx context.Context, opts generation.AudioOptions) (*domain.MediaAsset, error)
}

func (m *mockAudioGenerator) GenerateAudio(ctx context.Context, opts generation.AudioOptions) (*domain.MediaAsset, error) {
	return m.GenerateAudioFn(ctx, opts)
}

// mockVideoGenerator implements generation.VideoGenerator.
type mockVideoGenerator struct {
	ComposeVideoFn func(ctx context.Context, opts generation.VideoOptions, progress generation.ProgressFunc) (*domain.MediaAsset, error)
}

func (m *mockVideoGenerator) ComposeVideo(ctx context.Context, opts generation.VideoOptions, progress generation.ProgressFunc) (*domain.MediaAsset, error) {
	return m.ComposeVideoFn(ctx, opts, progress)
}

// mockEmitter records emitted events.
type mockEmitter struct {
	mu     sync.Mutex
	events []*events.ContentEvent
}

func (m *mockEmitter) EmitEvent(_ context.Context, event *events.ContentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockEmitter) emitted() []*events.ContentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*events.ContentEvent, len(m.events))
	copy(out, m.events)
	return out
}

// mockAssetStore implements store.TextAssetStore with function fields.
type mockAssetStore struct {
	mu          sync.Mutex
	saved       []*store.TextAsset
	SaveAssetFn func(ctx context.Context, asset *store.TextAsset) error
}

func (m *mockAssetStore) SaveAsset(ctx context.Context, asset *store.TextAsset) error {
	m.mu.Lock()
	m.saved = append(m.saved, asset)
	m.mu.Unlock()
	if m.SaveAssetFn != nil {
		return m.SaveAssetFn(ctx, asset)
	}
	return nil
}

func (m *mockAssetStore) GetAsset(_ context.Context, _ uuid.UUID) (*store.TextAsset, error) {
	return nil, store.ErrAssetNotFound
}

func (m *mockAssetStore) ListAssetsByUser(_ context.Context, _ string, _ int) ([]*store.TextAsset, error) {
	return nil, nil
}

// pipelineHarness bundles the registry and executor a pipeline test needs.
// Stop waits for in-flight tasks, so tests call it to synchronize on task
// completion.
type pipelineHarness struct {
	registry *task.Registry
	executor *task.Executor
}

func newPipelineHarness(t *testing.T) *pipelineHarness {
	t.Helper()

	registry := task.NewRegistry(task.RegistryConfig{MaxProgressMessages: 100}, nil)
	executor := task.NewExecutor(registry, 0, nil)
	t.Cleanup(executor.Stop)
	return &pipelineHarness{registry: registry, executor: executor}
}

// finished waits for all launched tasks and returns the snapshot.
func (h *pipelineHarness) finished(t *testing.T, id uuid.UUID) task.Snapshot {
	t.Helper()

	h.executor.Stop()
	snap, err := h.registry.Get(id)
	require.NoError(t, err)
	require.True(t, snap.Status.IsTerminal(), "task should be terminal after Stop, got %s", snap.Status)
	return snap
}
