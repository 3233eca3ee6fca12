package driven

import (
	"context"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// SchedulerStore keeps the in-process scheduler's task table and run
// history, so a restarted server resumes the sweep cadence instead of
// sweeping immediately.
type SchedulerStore interface {
	// GetTask returns nil and no error if the task does not exist.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// ListTasks returns all persisted tasks ordered by ID.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask upserts a task by ID.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// DeleteTask removes a task. Deleting a missing task is not an error.
	DeleteTask(ctx context.Context, taskID string) error

	// RecordResult appends one run to the task's history.
	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// GetTaskHistory returns up to limit runs, most recent first.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneHistory keeps the most recent keep runs per task.
	PruneHistory(ctx context.Context, keep int) error
}
