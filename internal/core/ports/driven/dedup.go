package driven

import (
	"context"
	"time"
)

// ProcessedLeadCache marks leads that are being, or have been, auto-replied
// within the cache's lifetime. It is tenant-scoped and injectable; it never
// replaces the durable AutoReplied flag.
//
// Claim is the only way in: callers must claim before any network call and
// release on failure.
type ProcessedLeadCache interface {
	// Claim atomically adds the lead. Returns false if it was already present.
	Claim(ctx context.Context, tenantID, leadID string) (bool, error)

	// Release removes the lead so a later pass may retry it.
	Release(ctx context.Context, tenantID, leadID string) error

	// Contains reports membership without claiming.
	Contains(ctx context.Context, tenantID, leadID string) (bool, error)

	// Reset clears every entry of a tenant.
	Reset(ctx context.Context, tenantID string) error

	// Prune drops entries older than the cache TTL and returns how many.
	Prune(ctx context.Context, now time.Time) (int, error)
}
