package driven

import (
	"context"
	"time"
)

// SyncLeaseStore provides short-lived per-tenant leases so that overlapping
// sweeps never process the same tenant concurrently.
type SyncLeaseStore interface {
	// Acquire takes the tenant's lease for holder until now+ttl.
	// Returns false if another holder owns an unexpired lease.
	Acquire(ctx context.Context, tenantID, holder string, ttl time.Duration) (bool, error)

	// Release gives the lease up if holder still owns it.
	Release(ctx context.Context, tenantID, holder string) error
}
