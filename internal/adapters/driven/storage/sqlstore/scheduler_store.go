package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// schedulerStore implements driven.SchedulerStore.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

type taskRow struct {
	ID              string         `db:"id"`
	Name            string         `db:"name"`
	IntervalSeconds int64          `db:"interval_seconds"`
	LastRunMs       sql.NullInt64  `db:"last_run_ms"`
	NextRunMs       sql.NullInt64  `db:"next_run_ms"`
	LastError       sql.NullString `db:"last_error"`
	LastSuccessMs   sql.NullInt64  `db:"last_success_ms"`
	Enabled         int            `db:"enabled"`
}

func (r taskRow) toDomain() domain.ScheduledTask {
	return domain.ScheduledTask{
		ID:          r.ID,
		Name:        r.Name,
		Interval:    time.Duration(r.IntervalSeconds) * time.Second,
		LastRun:     timeOrZero(r.LastRunMs),
		NextRun:     timeOrZero(r.NextRunMs),
		LastError:   r.LastError.String,
		LastSuccess: timeOrZero(r.LastSuccessMs),
		Enabled:     r.Enabled == 1,
	}
}

type resultRow struct {
	TaskID         string         `db:"task_id"`
	StartedMs      int64          `db:"started_ms"`
	EndedMs        int64          `db:"ended_ms"`
	Success        int            `db:"success"`
	Error          sql.NullString `db:"error"`
	ItemsProcessed int            `db:"items_processed"`
}

const taskColumns = `id, name, interval_seconds, last_run_ms, next_run_ms, last_error, last_success_ms, enabled`

// GetTask retrieves a scheduled task by ID.
// Returns nil and no error if the task does not exist.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	var row taskRow
	err := s.store.db.GetContext(ctx, &row,
		s.store.q(`SELECT `+taskColumns+` FROM scheduled_tasks WHERE id = ?`), taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying scheduled task: %w", err)
	}
	task := row.toDomain()
	return &task, nil
}

// ListTasks returns all scheduled tasks.
func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	var rows []taskRow
	if err := s.store.db.SelectContext(ctx, &rows,
		`SELECT `+taskColumns+` FROM scheduled_tasks ORDER BY id`); err != nil {
		return nil, fmt.Errorf("querying scheduled tasks: %w", err)
	}
	tasks := make([]domain.ScheduledTask, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toDomain())
	}
	return tasks, nil
}

// SaveTask persists a task's state.
func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, s.store.q(`
		INSERT INTO scheduled_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			interval_seconds = excluded.interval_seconds,
			last_run_ms = excluded.last_run_ms,
			next_run_ms = excluded.next_run_ms,
			last_error = excluded.last_error,
			last_success_ms = excluded.last_success_ms,
			enabled = excluded.enabled
	`), task.ID, task.Name, int64(task.Interval.Seconds()),
		toMillis(&task.LastRun), toMillis(&task.NextRun),
		nullString(task.LastError), toMillis(&task.LastSuccess),
		boolToInt(task.Enabled))
	if err != nil {
		return fmt.Errorf("saving scheduled task: %w", err)
	}
	return nil
}

// DeleteTask removes a task from storage.
func (s *schedulerStore) DeleteTask(ctx context.Context, taskID string) error {
	_, err := s.store.db.ExecContext(ctx, s.store.q("DELETE FROM scheduled_tasks WHERE id = ?"), taskID)
	if err != nil {
		return fmt.Errorf("deleting scheduled task: %w", err)
	}
	return nil
}

// RecordResult logs a task execution result.
func (s *schedulerStore) RecordResult(ctx context.Context, result *domain.TaskResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, s.store.q(`
		INSERT INTO task_results (id, task_id, started_ms, ended_ms, success, error, items_processed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), uuid.NewString(), result.TaskID,
		result.StartedAt.UnixMilli(),
		result.EndedAt.UnixMilli(),
		boolToInt(result.Success),
		nullString(result.Error),
		result.ItemsProcessed)
	if err != nil {
		return fmt.Errorf("recording task result: %w", err)
	}
	return nil
}

// GetTaskHistory returns recent results for a task, most recent first.
func (s *schedulerStore) GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	var rows []resultRow
	err := s.store.db.SelectContext(ctx, &rows, s.store.q(`
		SELECT task_id, started_ms, ended_ms, success, error, items_processed
		FROM task_results
		WHERE task_id = ?
		ORDER BY started_ms DESC
		LIMIT ?
	`), taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying task history: %w", err)
	}

	results := make([]domain.TaskResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, domain.TaskResult{
			TaskID:         r.TaskID,
			StartedAt:      time.UnixMilli(r.StartedMs).UTC(),
			EndedAt:        time.UnixMilli(r.EndedMs).UTC(),
			Success:        r.Success == 1,
			Error:          r.Error.String,
			ItemsProcessed: r.ItemsProcessed,
		})
	}
	return results, nil
}

// PruneHistory keeps the most recent 'keep' results per task.
func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, s.store.q(`
		DELETE FROM task_results
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY task_id ORDER BY started_ms DESC) AS rn
				FROM task_results
			) ranked WHERE rn <= ?
		)
	`), keep)
	if err != nil {
		return fmt.Errorf("pruning task history: %w", err)
	}
	return nil
}
