package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ContentEvent announces that a generation task produced content. Handlers
// pick it up for side work such as asset tracking, without the emitting
// service depending on them.
type ContentEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// TaskID identifies the task that produced the content
	TaskID uuid.UUID `json:"task_id"`

	// TaskType is the kind of generation the task performed
	TaskType string `json:"task_type"`

	// UserID attributes the content to the requesting user
	UserID string `json:"user_id"`

	// Payload contains the produced content serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *ContentEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewContentEvent creates a ContentEvent for the given task and payload.
func NewContentEvent(taskID uuid.UUID, taskType, userID string, payload interface{}) (*ContentEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &ContentEvent{
		ID:        uuid.New(),
		TaskID:    taskID,
		TaskType:  taskType,
		UserID:    userID,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ContentEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *ContentEvent) error
}
