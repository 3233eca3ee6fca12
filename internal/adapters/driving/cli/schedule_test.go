package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

type mockSchedule struct {
	tasks   []domain.ScheduledTask
	history map[string][]domain.TaskResult
	limits  []int
}

var _ driven.SchedulerStore = (*mockSchedule)(nil)

func (m *mockSchedule) GetTask(context.Context, string) (*domain.ScheduledTask, error) {
	return nil, nil
}

func (m *mockSchedule) ListTasks(context.Context) ([]domain.ScheduledTask, error) {
	return m.tasks, nil
}

func (m *mockSchedule) SaveTask(context.Context, *domain.ScheduledTask) error { return nil }

func (m *mockSchedule) DeleteTask(context.Context, string) error { return nil }

func (m *mockSchedule) RecordResult(context.Context, *domain.TaskResult) error { return nil }

func (m *mockSchedule) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.limits = append(m.limits, limit)
	if taskID == "broken" {
		return nil, errors.New("disk on fire")
	}
	return m.history[taskID], nil
}

func (m *mockSchedule) PruneHistory(context.Context, int) error { return nil }

func TestScheduleCmd_ListsTasks(t *testing.T) {
	last := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	schedule := &mockSchedule{tasks: []domain.ScheduledTask{
		{ID: domain.TaskIDAutoSyncSweep, Name: "Auto-Sync Sweep", Interval: 5 * time.Minute,
			LastRun: last, NextRun: last.Add(5 * time.Minute), LastError: "1 of 3 tenants failed"},
		{ID: domain.TaskIDClaimCleanup, Name: "Reply Claim Cleanup", Interval: time.Hour},
	}}
	setupServices(t, &Services{Schedule: schedule})

	out, err := execute(t, "schedule")

	require.NoError(t, err)
	assert.Contains(t, out, "Auto-Sync Sweep (auto-sync-sweep)")
	assert.Contains(t, out, "Every: 5m0s")
	assert.Contains(t, out, "Last error: 1 of 3 tenants failed")
	assert.Contains(t, out, "Last run: never")
	assert.Contains(t, out, "Next run: due now")
	assert.Empty(t, schedule.limits)
}

func TestScheduleCmd_History(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	schedule := &mockSchedule{
		tasks: []domain.ScheduledTask{{ID: domain.TaskIDAutoSyncSweep, Name: "Auto-Sync Sweep", Interval: 5 * time.Minute}},
		history: map[string][]domain.TaskResult{
			domain.TaskIDAutoSyncSweep: {
				{TaskID: domain.TaskIDAutoSyncSweep, StartedAt: start, EndedAt: start.Add(1500 * time.Millisecond), Success: true, ItemsProcessed: 4},
				{TaskID: domain.TaskIDAutoSyncSweep, StartedAt: start, EndedAt: start, Error: "store down"},
			},
		},
	}
	setupServices(t, &Services{Schedule: schedule})

	out, err := execute(t, "schedule", "--history", "2")

	require.NoError(t, err)
	assert.Equal(t, []int{2}, schedule.limits)
	assert.Contains(t, out, "4 items  1.5s  ok")
	assert.Contains(t, out, "failed: store down")
}

func TestScheduleCmd_HistoryError(t *testing.T) {
	setupServices(t, &Services{Schedule: &mockSchedule{
		tasks: []domain.ScheduledTask{{ID: "broken", Name: "Broken"}},
	}})

	_, err := execute(t, "schedule", "--history", "1")

	assert.ErrorContains(t, err, "disk on fire")
}

func TestScheduleCmd_Empty(t *testing.T) {
	setupServices(t, &Services{Schedule: &mockSchedule{}})

	out, err := execute(t, "schedule")

	require.NoError(t, err)
	assert.Contains(t, out, "No scheduled tasks.")
}

func TestScheduleCmd_Validation(t *testing.T) {
	setupServices(t, &Services{})

	_, err := execute(t, "schedule")
	assert.EqualError(t, err, "scheduler store not configured")

	_, err = execute(t, "schedule", "--history", "-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
