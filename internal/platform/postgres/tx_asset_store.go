package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-api/internal/store"
)

// TransactionalTextAssetStore wraps a TextAssetStore so each SaveAsset runs
// in its own transaction: the asset insert and the usage counter update
// commit or roll back together.
type TransactionalTextAssetStore struct {
	db    *sql.DB
	inner *TextAssetStore
}

var _ store.TextAssetStore = (*TransactionalTextAssetStore)(nil)

// NewTransactionalTextAssetStore creates a TransactionalTextAssetStore over
// the given database handle.
func NewTransactionalTextAssetStore(db *sql.DB, log *slog.Logger) *TransactionalTextAssetStore {
	return &TransactionalTextAssetStore{
		db:    db,
		inner: NewTextAssetStore(db, log),
	}
}

// SaveAsset persists the asset and its usage counter update atomically.
func (s *TransactionalTextAssetStore) SaveAsset(ctx context.Context, asset *store.TextAsset) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.inner.WithTx(tx).SaveAsset(ctx, asset)
	})
}

// GetAsset retrieves an asset by ID.
func (s *TransactionalTextAssetStore) GetAsset(ctx context.Context, id uuid.UUID) (*store.TextAsset, error) {
	return s.inner.GetAsset(ctx, id)
}

// ListAssetsByUser returns the most recent assets for a user, newest first.
func (s *TransactionalTextAssetStore) ListAssetsByUser(ctx context.Context, userID string, limit int) ([]*store.TextAsset, error) {
	return s.inner.ListAssetsByUser(ctx, userID, limit)
}
