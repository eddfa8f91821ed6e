package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-api/internal/platform/logger"
	"github.com/inkwell-ai/inkwell-api/internal/store"
)

// defaultListLimit bounds ListAssetsByUser when the caller passes no limit.
const defaultListLimit = 50

// TextAssetStore implements store.TextAssetStore using a PostgreSQL database.
type TextAssetStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure the interface is satisfied.
var _ store.TextAssetStore = (*TextAssetStore)(nil)

// NewTextAssetStore creates a new PostgreSQL implementation of store.TextAssetStore.
func NewTextAssetStore(db store.DBTX, log *slog.Logger) *TextAssetStore {
	if log == nil {
		log = slog.Default()
	}
	return &TextAssetStore{
		db:     db,
		logger: log.With(slog.String("component", "text_asset_store")),
	}
}

// WithTx returns a TextAssetStore bound to the given transaction, so asset
// and usage writes can share one atomic unit with other operations.
func (s *TextAssetStore) WithTx(tx *sql.Tx) *TextAssetStore {
	return &TextAssetStore{
		db:     tx,
		logger: s.logger,
	}
}

// SaveAsset persists the asset and bumps the owner's usage counters. When
// the store is bound to a transaction both writes commit or roll back
// together.
func (s *TextAssetStore) SaveAsset(ctx context.Context, asset *store.TextAsset) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now().UTC()
	}
	if asset.WordCount == 0 {
		asset.WordCount = len(strings.Fields(asset.Content))
	}

	tags, err := json.Marshal(asset.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode asset tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO text_assets (id, user_id, source_module, title, content, prompt, tags, word_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		asset.ID, asset.UserID, asset.SourceModule, asset.Title,
		asset.Content, asset.Prompt, tags, asset.WordCount, asset.CreatedAt)
	if err != nil {
		log.Error("failed to save text asset",
			slog.String("error", err.Error()),
			slog.String("asset_id", asset.ID.String()),
			slog.String("source_module", asset.SourceModule))
		return MapError(err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO content_usage (user_id, assets_count, words_total, updated_at)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			assets_count = content_usage.assets_count + 1,
			words_total = content_usage.words_total + EXCLUDED.words_total,
			updated_at = EXCLUDED.updated_at`,
		asset.UserID, asset.WordCount, asset.CreatedAt)
	if err != nil {
		log.Error("failed to update content usage",
			slog.String("error", err.Error()),
			slog.String("user_id", asset.UserID))
		return MapError(err)
	}

	log.Debug("saved text asset",
		slog.String("asset_id", asset.ID.String()),
		slog.String("source_module", asset.SourceModule),
		slog.Int("word_count", asset.WordCount))
	return nil
}

// GetAsset retrieves an asset by ID.
// Returns store.ErrAssetNotFound if no asset exists with the given ID.
func (s *TextAssetStore) GetAsset(ctx context.Context, id uuid.UUID) (*store.TextAsset, error) {
	var (
		asset store.TextAsset
		tags  []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, source_module, title, content, prompt, tags, word_count, created_at
		FROM text_assets
		WHERE id = $1`, id).Scan(
		&asset.ID, &asset.UserID, &asset.SourceModule, &asset.Title,
		&asset.Content, &asset.Prompt, &tags, &asset.WordCount, &asset.CreatedAt)
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrAssetNotFound
		}
		return nil, MapError(err)
	}

	if err := json.Unmarshal(tags, &asset.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode asset tags: %w", err)
	}
	return &asset, nil
}

// ListAssetsByUser returns the most recent assets for a user, newest first.
// A non-positive limit falls back to the default.
func (s *TextAssetStore) ListAssetsByUser(ctx context.Context, userID string, limit int) ([]*store.TextAsset, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, source_module, title, content, prompt, tags, word_count, created_at
		FROM text_assets
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var assets []*store.TextAsset
	for rows.Next() {
		var (
			asset store.TextAsset
			tags  []byte
		)
		if err := rows.Scan(
			&asset.ID, &asset.UserID, &asset.SourceModule, &asset.Title,
			&asset.Content, &asset.Prompt, &tags, &asset.WordCount, &asset.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		if err := json.Unmarshal(tags, &asset.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode asset tags: %w", err)
		}
		assets = append(assets, &asset)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return assets, nil
}
