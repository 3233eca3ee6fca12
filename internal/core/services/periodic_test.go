package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodicTask_RunsImmediatelyAndOnInterval(t *testing.T) {
	var runs atomic.Int32
	task := StartPeriodic(context.Background(), 10*time.Millisecond, true, func(context.Context) {
		runs.Add(1)
	})
	defer task.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestPeriodicTask_NotImmediate(t *testing.T) {
	var runs atomic.Int32
	task := StartPeriodic(context.Background(), time.Hour, false, func(context.Context) {
		runs.Add(1)
	})

	time.Sleep(20 * time.Millisecond)
	task.Stop()

	assert.Zero(t, runs.Load())
}

func TestPeriodicTask_StopWaitsForRunningCall(t *testing.T) {
	started := make(chan struct{})
	var finished atomic.Bool
	task := StartPeriodic(context.Background(), time.Hour, true, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		finished.Store(true)
	})

	<-started
	task.Stop()

	assert.True(t, finished.Load())
	select {
	case <-task.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}
}

func TestPeriodicTask_StopIsIdempotent(t *testing.T) {
	task := StartPeriodic(context.Background(), time.Hour, false, func(context.Context) {})

	task.Stop()
	task.Stop()
}

func TestPeriodicTask_ParentCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := StartPeriodic(ctx, time.Hour, false, func(context.Context) {})

	cancel()

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not stop on parent cancel")
	}
}

func TestPeriodicTask_TriggerCoalesces(t *testing.T) {
	release := make(chan struct{})
	var runs atomic.Int32
	task := StartPeriodic(context.Background(), time.Hour, true, func(context.Context) {
		if runs.Add(1) == 1 {
			<-release
		}
	})
	defer task.Stop()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)
	task.Trigger()
	task.Trigger()
	task.Trigger()
	close(release)

	assert.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load())
}
