package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-api/internal/cache"
	"github.com/inkwell-ai/inkwell-api/internal/generation"
	"github.com/inkwell-ai/inkwell-api/internal/task"
)

// Common request/response structures

// StartResponse acknowledges an accepted generation task. The task runs in
// the background; clients poll the matching status endpoint.
type StartResponse struct {
	TaskID uuid.UUID `json:"task_id"`
	Status string    `json:"status"`
}

// TaskStatusResponse is the normalized status payload for every task type.
type TaskStatusResponse struct {
	TaskID           uuid.UUID `json:"task_id"`
	TaskType         string    `json:"task_type"`
	Status           string    `json:"status"`
	Progress         float64   `json:"progress"`
	Message          string    `json:"message,omitempty"`
	ProgressMessages []string  `json:"progress_messages,omitempty"`
	Result           any       `json:"result,omitempty"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// LimitExceededResponse is returned instead of TaskStatusResponse when a task
// failed on a provider quota or billing limit. The response status code is
// the provider's (402 or 429) and usage counters are passed through as
// reported, never fabricated.
type LimitExceededResponse struct {
	Error     string               `json:"error"`
	Message   string               `json:"message"`
	Provider  string               `json:"provider"`
	UsageInfo generation.UsageInfo `json:"usage_info"`
}

// CacheStatsResponse reports cache effectiveness for one key namespace.
// Hit/miss counters are shared across namespaces served by the same cache.
type CacheStatsResponse struct {
	Namespace string      `json:"namespace"`
	Entries   int         `json:"entries"`
	Stats     cache.Stats `json:"stats"`
}

// CacheClearResponse reports how many entries a clear or invalidate removed.
type CacheClearResponse struct {
	Invalidated int `json:"invalidated"`
}

// InvalidateResearchRequest selects the research cache entry to drop by its
// keyword set.
type InvalidateResearchRequest struct {
	Keywords []string `json:"keywords" validate:"required,min=1"`
}

// InvalidateOutlineRequest selects the outline cache entry to drop. The
// fields mirror the inputs the outline cache key is derived from.
type InvalidateOutlineRequest struct {
	Keywords    []string `json:"keywords" validate:"required,min=1"`
	Title       string   `json:"title,omitempty"`
	Tone        string   `json:"tone,omitempty"`
	TargetWords int      `json:"target_words,omitempty"`
}

// newTaskStatusResponse shapes a registry snapshot into the wire payload.
func newTaskStatusResponse(snap task.Snapshot) TaskStatusResponse {
	return TaskStatusResponse{
		TaskID:           snap.ID,
		TaskType:         snap.Type,
		Status:           string(snap.Status),
		Progress:         snap.Progress,
		Message:          snap.Message,
		ProgressMessages: snap.ProgressMessages,
		Result:           snap.Result,
		Error:            snap.Error,
		CreatedAt:        snap.CreatedAt,
		UpdatedAt:        snap.UpdatedAt,
	}
}
