package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	assert.True(t, config.Enabled)
	assert.NotNil(t, config.TaskConfigs)
	assert.Len(t, config.TaskConfigs, 2)

	// Sweep cadence
	sweepCfg := config.TaskConfigs[TaskIDAutoSyncSweep]
	assert.True(t, sweepCfg.Enabled)
	assert.Equal(t, 5*time.Minute, sweepCfg.Interval)

	// Claim cleanup
	cleanupCfg := config.TaskConfigs[TaskIDClaimCleanup]
	assert.True(t, cleanupCfg.Enabled)
	assert.Equal(t, 1*time.Hour, cleanupCfg.Interval)
}

func TestSchedulerConfig_GetTaskConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	// Existing task
	sweepCfg := config.GetTaskConfig(TaskIDAutoSyncSweep)
	assert.True(t, sweepCfg.Enabled)
	assert.Equal(t, 5*time.Minute, sweepCfg.Interval)

	// Non-existent task
	unknownCfg := config.GetTaskConfig("unknown-task")
	assert.False(t, unknownCfg.Enabled)
	assert.Equal(t, time.Duration(0), unknownCfg.Interval)
}

func TestSchedulerConfig_GetTaskConfig_NilMap(t *testing.T) {
	config := SchedulerConfig{
		Enabled:     true,
		TaskConfigs: nil,
	}

	cfg := config.GetTaskConfig("any-task")
	assert.False(t, cfg.Enabled)
	assert.Equal(t, time.Duration(0), cfg.Interval)
}

func TestTaskConstants(t *testing.T) {
	assert.Equal(t, "auto-sync-sweep", TaskIDAutoSyncSweep)
	assert.Equal(t, "reply-claim-cleanup", TaskIDClaimCleanup)
}

func TestScheduledTask_IsDue(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		task ScheduledTask
		want bool
	}{
		{"disabled", ScheduledTask{Enabled: false}, false},
		{"never scheduled", ScheduledTask{Enabled: true}, true},
		{"in the past", ScheduledTask{Enabled: true, NextRun: now.Add(-time.Second)}, true},
		{"exactly now", ScheduledTask{Enabled: true, NextRun: now}, true},
		{"in the future", ScheduledTask{Enabled: true, NextRun: now.Add(time.Minute)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.IsDue(now))
		})
	}
}

func TestTaskResult_Duration(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	finished := TaskResult{StartedAt: start, EndedAt: start.Add(90 * time.Second), Error: "connection timeout"}
	assert.Equal(t, 90*time.Second, finished.Duration())

	unfinished := TaskResult{StartedAt: start}
	assert.Zero(t, unfinished.Duration())
}
