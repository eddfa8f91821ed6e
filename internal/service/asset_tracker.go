package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/inkwell-ai/inkwell-api/internal/domain"
	"github.com/inkwell-ai/inkwell-api/internal/events"
	"github.com/inkwell-ai/inkwell-api/internal/store"
	"github.com/inkwell-ai/inkwell-api/internal/task"
)

// ErrUnsupportedTaskType is returned when a content event carries a task
// type the tracker has no asset mapping for.
var ErrUnsupportedTaskType = errors.New("unsupported task type for asset tracking")

// AssetTracker consumes content events and persists the produced text as
// assets. It implements events.EventHandler; callers treat its failures as
// log-only, so a broken asset store never affects the generation tasks.
type AssetTracker struct {
	assets store.TextAssetStore
	logger *slog.Logger
}

// NewAssetTracker creates an AssetTracker backed by the given store.
func NewAssetTracker(assets store.TextAssetStore, logger *slog.Logger) (*AssetTracker, error) {
	if assets == nil {
		return nil, errors.New("asset store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetTracker{
		assets: assets,
		logger: logger.With(slog.String("component", "asset_tracker")),
	}, nil
}

// HandleEvent implements events.EventHandler.
func (t *AssetTracker) HandleEvent(ctx context.Context, event *events.ContentEvent) error {
	asset, err := t.assetFromEvent(event)
	if err != nil {
		if errors.Is(err, ErrUnsupportedTaskType) {
			t.logger.Debug("skipping event without asset mapping",
				slog.String("task_type", event.TaskType))
			return nil
		}
		return err
	}

	if err := t.assets.SaveAsset(ctx, asset); err != nil {
		t.logger.Error("failed to save content asset",
			slog.String("task_id", event.TaskID.String()),
			slog.String("task_type", event.TaskType),
			slog.String("error", err.Error()))
		return err
	}

	t.logger.Info("content asset saved",
		slog.String("asset_id", asset.ID.String()),
		slog.String("task_type", event.TaskType),
		slog.Int("word_count", asset.WordCount))
	return nil
}

// assetFromEvent shapes the event payload into a text asset. Only task
// types that produce durable text are mapped.
func (t *AssetTracker) assetFromEvent(event *events.ContentEvent) (*store.TextAsset, error) {
	switch event.TaskType {
	case task.TypeContentGeneration:
		var result domain.BlogResult
		if err := event.UnmarshalPayload(&result); err != nil {
			return nil, err
		}
		var parts []string
		for _, section := range result.Sections {
			parts = append(parts, "## "+section.Heading+"\n\n"+section.Content)
		}
		return &store.TextAsset{
			UserID:       event.UserID,
			SourceModule: "blog_writer",
			Title:        result.Title,
			Content:      strings.Join(parts, "\n\n"),
			WordCount:    result.WordCount(),
		}, nil

	case task.TypeStoryVideo:
		var result domain.StoryResult
		if err := event.UnmarshalPayload(&result); err != nil {
			return nil, err
		}
		parts := []string{result.Premise}
		title := "Story"
		for _, scene := range result.Scenes {
			parts = append(parts, scene.Narration)
		}
		if len(result.Scenes) > 0 && result.Scenes[0].Title != "" {
			title = result.Scenes[0].Title
		}
		return &store.TextAsset{
			UserID:       event.UserID,
			SourceModule: "story_writer",
			Title:        title,
			Content:      strings.Join(parts, "\n\n"),
		}, nil

	case task.TypePodcast:
		var result domain.PodcastResult
		if err := event.UnmarshalPayload(&result); err != nil {
			return nil, err
		}
		var title string
		var parts []string
		if result.Script != nil {
			title = result.Script.Title
			for _, line := range result.Script.Lines {
				parts = append(parts, line.Speaker+": "+line.Text)
			}
		}
		return &store.TextAsset{
			UserID:       event.UserID,
			SourceModule: "podcast",
			Title:        title,
			Content:      strings.Join(parts, "\n"),
		}, nil

	default:
		return nil, ErrUnsupportedTaskType
	}
}
