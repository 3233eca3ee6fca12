package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

func tenantsN(n int) []domain.TenantSyncProfile {
	out := make([]domain.TenantSyncProfile, n)
	for i := range out {
		out[i] = domain.TenantSyncProfile{ID: fmt.Sprintf("t%d", i)}
	}
	return out
}

func TestNewBatchDispatcher_Defaults(t *testing.T) {
	d := NewBatchDispatcher(0, 0)
	assert.Equal(t, 3, d.concurrency)
	assert.Equal(t, time.Second, d.pause)

	d = NewBatchDispatcher(5, -1)
	assert.Equal(t, 5, d.concurrency)
	assert.Zero(t, d.pause)
}

func TestBatchDispatcher_BoundsConcurrency(t *testing.T) {
	d := NewBatchDispatcher(3, -1)

	var active, peak atomic.Int32
	outcomes := d.Dispatch(context.Background(), tenantsN(10), func(_ context.Context, p domain.TenantSyncProfile) domain.SyncOutcome {
		n := active.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
		return domain.SyncOutcome{Success: true}
	})

	require.Len(t, outcomes, 10)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	for i, out := range outcomes {
		assert.Equal(t, fmt.Sprintf("t%d", i), out.TenantID)
		assert.True(t, out.Success)
	}
}

func TestBatchDispatcher_BatchSettlesBeforeNext(t *testing.T) {
	d := NewBatchDispatcher(3, -1)

	var mu sync.Mutex
	var events []string
	d.Dispatch(context.Background(), tenantsN(6), func(_ context.Context, p domain.TenantSyncProfile) domain.SyncOutcome {
		mu.Lock()
		events = append(events, "start:"+p.ID)
		mu.Unlock()
		if p.ID == "t0" {
			time.Sleep(30 * time.Millisecond)
		}
		mu.Lock()
		events = append(events, "end:"+p.ID)
		mu.Unlock()
		return domain.SyncOutcome{Success: true}
	})

	index := func(ev string) int {
		for i, e := range events {
			if e == ev {
				return i
			}
		}
		return -1
	}
	// The slow tenant of batch one ends before any tenant of batch two starts.
	for _, id := range []string{"t3", "t4", "t5"} {
		assert.Greater(t, index("start:"+id), index("end:t0"))
	}
}

func TestBatchDispatcher_PausesBetweenBatches(t *testing.T) {
	d := NewBatchDispatcher(3, time.Second)
	var pauses []time.Duration
	d.sleep = func(_ context.Context, p time.Duration) error {
		pauses = append(pauses, p)
		return nil
	}

	d.Dispatch(context.Background(), tenantsN(7), func(context.Context, domain.TenantSyncProfile) domain.SyncOutcome {
		return domain.SyncOutcome{Success: true}
	})

	assert.Equal(t, []time.Duration{time.Second, time.Second}, pauses)
}

func TestBatchDispatcher_IsolatesFailures(t *testing.T) {
	d := NewBatchDispatcher(3, -1)

	outcomes := d.Dispatch(context.Background(), tenantsN(3), func(_ context.Context, p domain.TenantSyncProfile) domain.SyncOutcome {
		switch p.ID {
		case "t0":
			return domain.SyncOutcome{Err: errTransient}
		case "t1":
			panic("boom")
		}
		return domain.SyncOutcome{Success: true, NewLeadCount: 2}
	})

	require.Len(t, outcomes, 3)
	assert.ErrorIs(t, outcomes[0].Err, errTransient)
	assert.False(t, outcomes[1].Success)
	assert.ErrorContains(t, outcomes[1].Err, "panicked")
	assert.True(t, outcomes[2].Success)
	assert.Equal(t, 2, outcomes[2].NewLeadCount)
}

func TestBatchDispatcher_CancelledBetweenBatches(t *testing.T) {
	d := NewBatchDispatcher(2, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	outcomes := d.Dispatch(ctx, tenantsN(4), func(context.Context, domain.TenantSyncProfile) domain.SyncOutcome {
		calls.Add(1)
		cancel()
		return domain.SyncOutcome{Success: true}
	})

	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, outcomes, 4)
	assert.ErrorIs(t, outcomes[2].Err, context.Canceled)
	assert.ErrorIs(t, outcomes[3].Err, context.Canceled)
}

func TestBatchDispatcher_Empty(t *testing.T) {
	d := NewBatchDispatcher(3, time.Hour)

	outcomes := d.Dispatch(context.Background(), nil, func(context.Context, domain.TenantSyncProfile) domain.SyncOutcome {
		t.Fatal("must not be called")
		return domain.SyncOutcome{}
	})

	assert.Empty(t, outcomes)
}
