package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-api/internal/generation"
)

// Status represents the current state of a task
type Status string

// Possible task status values. The only legal sequence is
// pending -> processing -> (completed | failed); completed and failed
// are terminal.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task type constants
const (
	// TypeResearch represents keyword research for a blog post
	TypeResearch = "research"

	// TypeOutline represents outline generation from research results
	TypeOutline = "outline"

	// TypeContentGeneration represents full blog content generation
	TypeContentGeneration = "content_generation"

	// TypeStoryVideo represents the story-to-video pipeline
	TypeStoryVideo = "story_video_generation"

	// TypePodcast represents podcast script and audio generation
	TypePodcast = "podcast_generation"
)

// Snapshot is a point-in-time copy of a task record. It is safe to retain
// and serialize: slices are copied on read, and result payloads are treated
// as immutable once stored.
type Snapshot struct {
	// ID is the task's unique identifier.
	ID uuid.UUID `json:"task_id"`

	// Type identifies the kind of operation the task performs.
	Type string `json:"task_type"`

	// Status is the task's position in the lifecycle state machine.
	Status Status `json:"status"`

	// Progress is the overall completion percentage in [0, 100].
	Progress float64 `json:"progress"`

	// Message is the most recent human-readable progress description.
	Message string `json:"message,omitempty"`

	// ProgressMessages is the bounded history of progress descriptions,
	// oldest first. When the cap is reached the oldest entries are dropped.
	ProgressMessages []string `json:"progress_messages,omitempty"`

	// Result holds the operation's output once Status is completed.
	Result any `json:"result,omitempty"`

	// Error describes the failure once Status is failed.
	Error string `json:"error,omitempty"`

	// ErrorStatus is the HTTP-like status code associated with the failure,
	// e.g. 402 or 429 for provider limit errors. Zero when unset.
	ErrorStatus int `json:"-"`

	// ErrorUsage carries provider quota counters for limit failures.
	ErrorUsage *generation.UsageInfo `json:"-"`

	// CreatedAt is when the task record was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the record last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// record is the registry's internal mutable task state. All access is
// guarded by the registry mutex.
type record struct {
	id               uuid.UUID
	taskType         string
	status           Status
	progress         float64
	message          string
	progressMessages []string
	result           any
	errMessage       string
	errStatus        int
	errUsage         *generation.UsageInfo
	createdAt        time.Time
	updatedAt        time.Time
}

// snapshot copies the record into an immutable Snapshot.
func (r *record) snapshot() Snapshot {
	var messages []string
	if len(r.progressMessages) > 0 {
		messages = make([]string, len(r.progressMessages))
		copy(messages, r.progressMessages)
	}

	var usage *generation.UsageInfo
	if r.errUsage != nil {
		u := *r.errUsage
		usage = &u
	}

	return Snapshot{
		ID:               r.id,
		Type:             r.taskType,
		Status:           r.status,
		Progress:         r.progress,
		Message:          r.message,
		ProgressMessages: messages,
		Result:           r.result,
		Error:            r.errMessage,
		ErrorStatus:      r.errStatus,
		ErrorUsage:       usage,
		CreatedAt:        r.createdAt,
		UpdatedAt:        r.updatedAt,
	}
}
