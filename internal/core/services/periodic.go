package services

import (
	"context"
	"sync"
	"time"
)

// PeriodicTask runs a function on a fixed interval until stopped.
// Runs never overlap. Stop cancels the task's context and waits for the
// running call to return, so teardown never leaves a live timer behind.
type PeriodicTask struct {
	interval time.Duration
	fn       func(ctx context.Context)

	trigger  chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// StartPeriodic starts fn in its own goroutine. When immediate is true fn
// runs once right away, otherwise the first run happens after one interval.
func StartPeriodic(
	ctx context.Context,
	interval time.Duration,
	immediate bool,
	fn func(ctx context.Context),
) *PeriodicTask {
	ctx, cancel := context.WithCancel(ctx)
	t := &PeriodicTask{
		interval: interval,
		fn:       fn,
		trigger:  make(chan struct{}, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	if immediate {
		t.trigger <- struct{}{}
	}
	go t.run(ctx)
	return t
}

func (t *PeriodicTask) run(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.trigger:
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			return
		}
		t.fn(ctx)
	}
}

// Trigger requests an extra run as soon as the current one finishes.
// Requests made while one is already pending are coalesced.
func (t *PeriodicTask) Trigger() {
	select {
	case t.trigger <- struct{}{}:
	default:
	}
}

// Stop cancels the task and waits for it to exit. Safe to call repeatedly.
func (t *PeriodicTask) Stop() {
	t.stopOnce.Do(t.cancel)
	<-t.done
}

// Done is closed once the task has exited.
func (t *PeriodicTask) Done() <-chan struct{} {
	return t.done
}
