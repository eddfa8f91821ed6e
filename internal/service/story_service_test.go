package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ai/inkwell-api/internal/domain"
	"github.com/inkwell-ai/inkwell-api/internal/generation"
	"github.com/inkwell-ai/inkwell-api/internal/task"
)

func happyMediaMocks() (*mockImageGenerator, *mockAudioGenerator, *mockVideoGenerator) {
	images := &mockImageGenerator{
		GenerateImageFn: func(ctx context.Context, opts generation.ImageOptions) (*domain.MediaAsset, error) {
			return &domain.MediaAsset{
				SceneNumber: opts.SceneNumber,
				URL:         fmt.Sprintf("/media/images/scene-%d.png", opts.SceneNumber),
				Provider:    "test",
			}, nil
		},
	}
	audio := &mockAudioGenerator{
		GenerateAudioFn: func(ctx context.Context, opts generation.AudioOptions) (*domain.MediaAsset, error) {
			return &domain.MediaAsset{
				SceneNumber: opts.SceneNumber,
				URL:         fmt.Sprintf("/media/audio/scene-%d.mp3", opts.SceneNumber),
				Provider:    "test",
			}, nil
		},
	}
	video := &mockVideoGenerator{
		ComposeVideoFn: func(ctx context.Context, opts generation.VideoOptions, progress generation.ProgressFunc) (*domain.MediaAsset, error) {
			if progress != nil {
				progress(50, "Rendering segments")
			}
			return &domain.MediaAsset{URL: "/media/video/story.mp4", Provider: "test"}, nil
		},
	}
	return images, audio, video
}

// storyTextGenerator answers the premise call with text and the scenes call
// with a structured outline.
func storyTextGenerator(t *testing.T, sceneCount int) *mockTextGenerator {
	t.Helper()

	return &mockTextGenerator{
		GenerateFn: func(ctx context.Context, req generation.Request) (*generation.Result, error) {
			if len(req.Schema) == 0 {
				return &generation.Result{Text: "A lighthouse keeper discovers the sea remembers.", Model: "gemini-test"}, nil
			}
			scenes := make([]domain.StoryScene, 0, sceneCount)
			for i := 1; i <= sceneCount; i++ {
				scenes = append(scenes, domain.StoryScene{
					SceneNumber: i,
					Title:       fmt.Sprintf("Scene %d", i),
					Narration:   fmt.Sprintf("Narration for scene %d.", i),
					ImagePrompt: fmt.Sprintf("Visual prompt %d", i),
				})
			}
			return structuredResult(t, map[string]any{"scenes": scenes}), nil
		},
	}
}

func TestStartVideoRejectsEmptySetting(t *testing.T) {
	t.Parallel()

	h := newPipelineHarness(t)
	images, audio, video := happyMediaMocks()
	svc, err := NewStoryService(storyTextGenerator(t, 1), images, audio, video, h.executor, nil, nil)
	require.NoError(t, err)

	_, err = svc.StartVideo(context.Background(), domain.StoryRequest{}, "user-1")
	assert.ErrorIs(t, err, domain.ErrEmptySetting)
}

func TestStartVideoRunsFullPipeline(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newPipelineHarness(t)
	emitter := &mockEmitter{}
	images, audio, video := happyMediaMocks()

	svc, err := NewStoryService(storyTextGenerator(t, 3), images, audio, video, h.executor, emitter, nil)
	require.NoError(t, err)

	id, err := svc.StartVideo(ctx, domain.StoryRequest{Setting: "a remote lighthouse"}, "user-1")
	require.NoError(t, err)

	snap := h.finished(t, id)
	require.Equal(t, task.StatusCompleted, snap.Status)
	assert.Equal(t, 100.0, snap.Progress)

	result, ok := snap.Result.(*domain.StoryResult)
	require.True(t, ok)
	assert.NotEmpty(t, result.Premise)
	assert.Len(t, result.Scenes, 3)
	assert.Len(t, result.Images, 3)
	assert.Len(t, result.Audio, 3)
	require.NotNil(t, result.Video)
	assert.Equal(t, "/media/video/story.mp4", result.Video.URL)

	// Per-scene progress messages surface in the history.
	assert.Contains(t, snap.ProgressMessages, "Generating image for scene 2/3")
	assert.Contains(t, snap.ProgressMessages, "Rendering segments")

	emittedEvents := emitter.emitted()
	require.Len(t, emittedEvents, 1)
	assert.Equal(t, task.TypeStoryVideo, emittedEvents[0].TaskType)
}

func TestStartVideoImageFailureFailsTask(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newPipelineHarness(t)
	images, audio, video := happyMediaMocks()
	images.GenerateImageFn = func(ctx context.Context, opts generation.ImageOptions) (*domain.MediaAsset, error) {
		return nil, errors.New("image provider unavailable")
	}

	composeCalled := false
	video.ComposeVideoFn = func(ctx context.Context, opts generation.VideoOptions, progress generation.ProgressFunc) (*domain.MediaAsset, error) {
		composeCalled = true
		return nil, nil
	}

	svc, err := NewStoryService(storyTextGenerator(t, 2), images, audio, video, h.executor, nil, nil)
	require.NoError(t, err)

	id, err := svc.StartVideo(ctx, domain.StoryRequest{Setting: "a derelict station"}, "user-1")
	require.NoError(t, err)

	snap := h.finished(t, id)
	assert.Equal(t, task.StatusFailed, snap.Status)
	assert.Contains(t, snap.Error, "image provider unavailable")
	assert.False(t, composeCalled, "composition must not run after an image failure")
}
