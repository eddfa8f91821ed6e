package task

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-api/internal/generation"
)

// Errors returned by registry operations
var (
	// ErrNotFound is returned when no task exists for the given ID
	ErrNotFound = errors.New("task not found")

	// ErrTerminalState is returned when an update targets a completed or failed task
	ErrTerminalState = errors.New("task is in a terminal state")

	// ErrInvalidTransition is returned when an update would violate the task state machine
	ErrInvalidTransition = errors.New("invalid task status transition")
)

// Failure describes why a task failed. StatusCode and Usage are set for
// provider limit errors so the failure can be surfaced to clients with the
// provider's own status code and quota counters.
type Failure struct {
	Message    string
	StatusCode int
	Usage      *generation.UsageInfo
}

// FailureFromError builds a Failure from a stage error, preserving limit
// details when err carries a *generation.LimitExceededError.
func FailureFromError(err error) Failure {
	if limitErr, ok := generation.AsLimitExceeded(err); ok {
		usage := limitErr.Usage
		if usage.Provider == "" {
			usage.Provider = limitErr.Provider
		}
		if usage.Message == "" {
			usage.Message = limitErr.Message
		}
		return Failure{
			Message:    limitErr.Error(),
			StatusCode: limitErr.StatusCode,
			Usage:      &usage,
		}
	}
	return Failure{Message: err.Error()}
}

// RegistryConfig holds the tunable limits of a Registry.
type RegistryConfig struct {
	// MaxProgressMessages bounds the per-task progress history. When the
	// bound is reached the oldest entries are dropped. Zero or negative
	// disables the history entirely.
	MaxProgressMessages int

	// Retention is how long terminal tasks remain queryable before the
	// sweeper evicts them. Zero or negative disables eviction.
	Retention time.Duration
}

// Registry is an in-memory, process-local store of task records. All
// operations are safe for concurrent use. Records live until the retention
// sweeper evicts them after they reach a terminal state.
type Registry struct {
	mu     sync.RWMutex
	tasks  map[uuid.UUID]*record
	config RegistryConfig
	logger *slog.Logger

	// now is swapped in tests to control time.
	now func() time.Time

	sweepDone chan struct{}
	sweepOnce sync.Once
}

// NewRegistry creates a Registry with the given limits.
func NewRegistry(config RegistryConfig, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tasks:     make(map[uuid.UUID]*record),
		config:    config,
		logger:    logger.With(slog.String("component", "task_registry")),
		now:       time.Now,
		sweepDone: make(chan struct{}),
	}
}

// Create registers a new pending task of the given type and returns its ID.
func (r *Registry) Create(taskType string) uuid.UUID {
	id := uuid.New()
	now := r.now()

	r.mu.Lock()
	r.tasks[id] = &record{
		id:        id,
		taskType:  taskType,
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}
	r.mu.Unlock()

	r.logger.Debug("task created",
		slog.String("task_id", id.String()),
		slog.String("task_type", taskType))
	return id
}

// Get returns a snapshot of the task, or ErrNotFound.
func (r *Registry) Get(id uuid.UUID) (Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.tasks[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return rec.snapshot(), nil
}

// MarkProcessing transitions a pending task to processing. The message, if
// non-empty, is recorded in the progress history.
func (r *Registry) MarkProcessing(id uuid.UUID, message string) error {
	return r.update(id, func(rec *record) error {
		if rec.status.IsTerminal() {
			return ErrTerminalState
		}
		if rec.status != StatusPending {
			return ErrInvalidTransition
		}
		rec.status = StatusProcessing
		r.recordMessage(rec, message)
		return nil
	})
}

// SetProgress updates the overall progress of a processing task. Progress is
// clamped to [0, 100]; the message, if non-empty, is recorded in the
// progress history.
func (r *Registry) SetProgress(id uuid.UUID, progress float64, message string) error {
	return r.update(id, func(rec *record) error {
		if rec.status.IsTerminal() {
			return ErrTerminalState
		}
		if rec.status != StatusProcessing {
			return ErrInvalidTransition
		}
		rec.progress = clamp(progress, 0, 100)
		r.recordMessage(rec, message)
		return nil
	})
}

// MarkCompleted transitions a processing task to completed, storing its
// result and forcing progress to 100. The result is treated as immutable
// from this point on.
func (r *Registry) MarkCompleted(id uuid.UUID, result any, message string) error {
	return r.update(id, func(rec *record) error {
		if rec.status.IsTerminal() {
			return ErrTerminalState
		}
		if rec.status != StatusProcessing {
			return ErrInvalidTransition
		}
		rec.status = StatusCompleted
		rec.progress = 100
		rec.result = result
		r.recordMessage(rec, message)
		return nil
	})
}

// MarkFailed transitions a processing task to failed, recording the failure
// description and any provider limit details.
func (r *Registry) MarkFailed(id uuid.UUID, failure Failure) error {
	return r.update(id, func(rec *record) error {
		if rec.status.IsTerminal() {
			return ErrTerminalState
		}
		if rec.status != StatusProcessing {
			return ErrInvalidTransition
		}
		rec.status = StatusFailed
		rec.errMessage = failure.Message
		rec.errStatus = failure.StatusCode
		if failure.Usage != nil {
			usage := *failure.Usage
			rec.errUsage = &usage
		}
		r.recordMessage(rec, failure.Message)
		return nil
	})
}

// Len returns the number of task records currently held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// Sweep evicts terminal tasks whose last update is older than the retention
// window and returns how many were removed.
func (r *Registry) Sweep() int {
	if r.config.Retention <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.config.Retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, rec := range r.tasks {
		if rec.status.IsTerminal() && rec.updatedAt.Before(cutoff) {
			delete(r.tasks, id)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Debug("swept terminal tasks", slog.Int("removed", removed))
	}
	return removed
}

// StartSweeper runs Sweep on the given interval until Stop is called.
func (r *Registry) StartSweeper(interval time.Duration) {
	if interval <= 0 || r.config.Retention <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep()
			case <-r.sweepDone:
				return
			}
		}
	}()
}

// Stop terminates the retention sweeper. Safe to call more than once.
func (r *Registry) Stop() {
	r.sweepOnce.Do(func() {
		close(r.sweepDone)
	})
}

// update applies fn to the record under the write lock and bumps updatedAt
// on success. Updates are atomic: a failed transition leaves the record
// untouched.
func (r *Registry) update(id uuid.UUID, fn func(*record) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if err := fn(rec); err != nil {
		return err
	}
	rec.updatedAt = r.now()
	return nil
}

// recordMessage sets the current message and appends it to the bounded
// history. Empty messages leave both untouched.
func (r *Registry) recordMessage(rec *record, message string) {
	if message == "" {
		return
	}
	rec.message = message
	if r.config.MaxProgressMessages <= 0 {
		return
	}
	rec.progressMessages = append(rec.progressMessages, message)
	if overflow := len(rec.progressMessages) - r.config.MaxProgressMessages; overflow > 0 {
		rec.progressMessages = rec.progressMessages[overflow:]
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
