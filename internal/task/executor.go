package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-api/internal/generation"
)

// Errors returned by executor operations
var (
	// ErrExecutorStopped is returned when a launch is attempted after Stop
	ErrExecutorStopped = errors.New("executor is stopped")

	// ErrNoStages is returned when a pipeline has no stages
	ErrNoStages = errors.New("pipeline must have at least one stage")

	// ErrInvalidStage is returned when a stage's progress span or run
	// function is malformed
	ErrInvalidStage = errors.New("invalid pipeline stage")
)

// Stage is one phase of a pipeline. Its Run function receives a progress
// callback reporting sub-progress in [0, 100] within the stage; the executor
// rescales that into the [Start, End] span of the task's overall progress.
// The value returned by the final stage becomes the task result.
type Stage struct {
	// Name labels the stage in progress messages and logs.
	Name string

	// Start and End bound the stage's span of overall progress, with
	// 0 <= Start <= End <= 100. Spans of consecutive stages should abut
	// so progress never moves backwards.
	Start float64
	End   float64

	// Run performs the stage's work. A non-nil error fails the whole task.
	Run func(ctx context.Context, report generation.ProgressFunc) (any, error)
}

// CompletionFunc is invoked after a task reaches a terminal state, with a
// snapshot of the final record. It runs on the task's goroutine; failures
// inside it must not affect the stored task outcome.
type CompletionFunc func(ctx context.Context, snap Snapshot)

// Executor runs pipelines as background goroutines, driving task records in
// a Registry through the lifecycle state machine. Each stage gets a derived
// context with the configured timeout; Stop cancels in-flight stages and
// waits for all goroutines to finish.
type Executor struct {
	registry     *Registry
	logger       *slog.Logger
	stageTimeout time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// NewExecutor creates an Executor backed by the given registry. A zero
// stageTimeout disables per-stage deadlines.
func NewExecutor(registry *Registry, stageTimeout time.Duration, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor{
		registry:     registry,
		logger:       logger.With(slog.String("component", "task_executor")),
		stageTimeout: stageTimeout,
		baseCtx:      ctx,
		cancel:       cancel,
	}
}

// Launch registers a new task of the given type and starts running its
// stages in a background goroutine, returning the task ID immediately.
// onComplete, if non-nil, is invoked once the task reaches a terminal state.
func (e *Executor) Launch(taskType string, stages []Stage, onComplete CompletionFunc) (uuid.UUID, error) {
	if err := validateStages(stages); err != nil {
		return uuid.Nil, err
	}

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return uuid.Nil, ErrExecutorStopped
	}
	id := e.registry.Create(taskType)
	e.wg.Add(1)
	e.mu.Unlock()

	go e.run(id, taskType, stages, onComplete)
	return id, nil
}

// Stop cancels in-flight stages and blocks until all task goroutines have
// finished. Further launches return ErrExecutorStopped.
func (e *Executor) Stop() {
	e.mu.Lock()
	if !e.stopped {
		e.stopped = true
		e.cancel()
	}
	e.mu.Unlock()
	e.wg.Wait()
}

func (e *Executor) run(id uuid.UUID, taskType string, stages []Stage, onComplete CompletionFunc) {
	defer e.wg.Done()

	logger := e.logger.With(
		slog.String("task_id", id.String()),
		slog.String("task_type", taskType))

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("task panicked", slog.Any("panic", rec))
			if err := e.registry.MarkFailed(id, Failure{Message: fmt.Sprintf("internal error: %v", rec)}); err != nil {
				logger.Error("failed to record panic outcome", slog.String("error", err.Error()))
			}
			e.notifyCompletion(id, onComplete, logger)
		}
	}()

	if err := e.registry.MarkProcessing(id, "Task started"); err != nil {
		logger.Error("failed to mark task processing", slog.String("error", err.Error()))
		return
	}
	logger.Info("task started", slog.Int("stages", len(stages)))
	startedAt := time.Now()

	var result any
	for _, stage := range stages {
		out, err := e.runStage(id, stage, logger)
		if err != nil {
			failure := FailureFromError(err)
			logger.Error("task failed",
				slog.String("stage", stage.Name),
				slog.String("error", err.Error()),
				slog.Duration("elapsed", time.Since(startedAt)))
			if markErr := e.registry.MarkFailed(id, failure); markErr != nil {
				logger.Error("failed to record task failure", slog.String("error", markErr.Error()))
			}
			e.notifyCompletion(id, onComplete, logger)
			return
		}
		result = out
	}

	if err := e.registry.MarkCompleted(id, result, "Task completed"); err != nil {
		logger.Error("failed to record task completion", slog.String("error", err.Error()))
		return
	}
	logger.Info("task completed", slog.Duration("elapsed", time.Since(startedAt)))
	e.notifyCompletion(id, onComplete, logger)
}

func (e *Executor) runStage(id uuid.UUID, stage Stage, logger *slog.Logger) (any, error) {
	report := func(subProgress float64, message string) {
		overall := stage.Start + clamp(subProgress, 0, 100)/100*(stage.End-stage.Start)
		if err := e.registry.SetProgress(id, overall, message); err != nil {
			logger.Warn("progress update dropped",
				slog.String("stage", stage.Name),
				slog.String("error", err.Error()))
		}
	}
	report(0, stage.Name)

	ctx := e.baseCtx
	if e.stageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.stageTimeout)
		defer cancel()
	}

	out, err := stage.Run(ctx, report)
	if err != nil {
		return nil, err
	}
	report(100, stage.Name+" complete")
	return out, nil
}

// notifyCompletion invokes the completion callback with the final snapshot,
// isolating the task outcome from callback panics.
func (e *Executor) notifyCompletion(id uuid.UUID, onComplete CompletionFunc, logger *slog.Logger) {
	if onComplete == nil {
		return
	}
	snap, err := e.registry.Get(id)
	if err != nil {
		logger.Warn("completion callback skipped", slog.String("error", err.Error()))
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("completion callback panicked", slog.Any("panic", rec))
		}
	}()
	onComplete(e.baseCtx, snap)
}

func validateStages(stages []Stage) error {
	if len(stages) == 0 {
		return ErrNoStages
	}
	for _, stage := range stages {
		if stage.Run == nil {
			return fmt.Errorf("%w: %s has no run function", ErrInvalidStage, stage.Name)
		}
		if stage.Start < 0 || stage.End > 100 || stage.Start > stage.End {
			return fmt.Errorf("%w: %s has progress span [%.0f, %.0f]", ErrInvalidStage, stage.Name, stage.Start, stage.End)
		}
	}
	return nil
}
