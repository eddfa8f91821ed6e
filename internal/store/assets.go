package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TextAsset is a persisted record of generated content. Assets are an audit
// trail for the dashboard; the authoritative copy of a generation result
// lives in the task registry until the client collects it.
type TextAsset struct {
	ID           uuid.UUID
	UserID       string
	SourceModule string // "blog_writer", "story_writer", "podcast"
	Title        string
	Content      string
	Prompt       string
	Tags         []string
	WordCount    int
	CreatedAt    time.Time
}

// TextAssetStore persists generated content for later retrieval.
//
// Asset tracking is a non-blocking side path: callers log failures from this
// interface but never let them fail the task that produced the content.
type TextAssetStore interface {
	// SaveAsset persists the asset and updates the owner's usage counters
	// in a single transaction.
	SaveAsset(ctx context.Context, asset *TextAsset) error

	// GetAsset retrieves an asset by ID.
	// Returns ErrAssetNotFound if no asset exists with the given ID.
	GetAsset(ctx context.Context, id uuid.UUID) (*TextAsset, error)

	// ListAssetsByUser returns the most recent assets for a user,
	// newest first, up to limit.
	ListAssetsByUser(ctx context.Context, userID string, limit int) ([]*TextAsset, error)
}
