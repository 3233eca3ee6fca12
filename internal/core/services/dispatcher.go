package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/logger"
)

// Batch dispatch defaults.
const (
	DefaultBatchConcurrency = 3
	DefaultBatchPause       = 1 * time.Second
)

// TenantFunc is the per-tenant sync procedure run by the dispatcher.
type TenantFunc func(ctx context.Context, profile domain.TenantSyncProfile) domain.SyncOutcome

// BatchDispatcher runs a TenantFunc across tenants in fixed-size batches.
// Every batch settles before the next one starts; a failing or panicking
// tenant never affects its siblings.
type BatchDispatcher struct {
	concurrency int
	pause       time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewBatchDispatcher creates a dispatcher. Non-positive values fall back to
// the defaults; a negative pause disables pacing.
func NewBatchDispatcher(concurrency int, pause time.Duration) *BatchDispatcher {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	if pause == 0 {
		pause = DefaultBatchPause
	}
	if pause < 0 {
		pause = 0
	}
	return &BatchDispatcher{
		concurrency: concurrency,
		pause:       pause,
		sleep:       sleepContext,
	}
}

// Dispatch runs fn for every tenant and returns one outcome per tenant in
// input order. It never retries. If ctx is cancelled between batches the
// remaining tenants are reported as failed with the context error.
func (d *BatchDispatcher) Dispatch(
	ctx context.Context,
	tenants []domain.TenantSyncProfile,
	fn TenantFunc,
) []domain.SyncOutcome {
	outcomes := make([]domain.SyncOutcome, len(tenants))

	for start := 0; start < len(tenants); start += d.concurrency {
		end := min(start+d.concurrency, len(tenants))

		if start > 0 {
			if err := d.sleep(ctx, d.pause); err != nil {
				for i := start; i < len(tenants); i++ {
					outcomes[i] = domain.SyncOutcome{TenantID: tenants[i].ID, Err: err}
				}
				return outcomes
			}
		}

		logger.Debug("dispatch: batch %d-%d of %d", start+1, end, len(tenants))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i] = runIsolated(ctx, tenants[i], fn)
			}(i)
		}
		wg.Wait()
	}

	return outcomes
}

// runIsolated converts a panic in fn into a failed outcome.
func runIsolated(ctx context.Context, p domain.TenantSyncProfile, fn TenantFunc) (out domain.SyncOutcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("dispatch: tenant %s panicked: %v", p.ID, r)
			out = domain.SyncOutcome{
				TenantID: p.ID,
				Err:      fmt.Errorf("tenant %s panicked: %v", p.ID, r),
			}
		}
	}()

	out = fn(ctx, p)
	out.TenantID = p.ID
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
