package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.SyncLeaseStore = (*leaseStore)(nil)

// leaseStore excludes sweeps across every process sharing the database.
type leaseStore struct {
	store *Store
	now   func() time.Time
}

// Acquire upserts the lease row. The conflict branch only fires when the
// caller already holds the lease or the current one has expired, so zero
// affected rows means another holder owns it.
func (s *leaseStore) Acquire(ctx context.Context, tenantID, holder string, ttl time.Duration) (bool, error) {
	now := s.now()
	res, err := s.store.db.ExecContext(ctx, s.store.q(`
		INSERT INTO sync_leases (tenant_id, holder, expires_ms)
		VALUES (?, ?, ?)
		ON CONFLICT (tenant_id) DO UPDATE SET
			holder = excluded.holder,
			expires_ms = excluded.expires_ms
		WHERE sync_leases.holder = excluded.holder OR sync_leases.expires_ms <= ?
	`), tenantID, holder, now.Add(ttl).UnixMilli(), now.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease for %s: %w", tenantID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease for %s: %w", tenantID, err)
	}
	return n > 0, nil
}

func (s *leaseStore) Release(ctx context.Context, tenantID, holder string) error {
	_, err := s.store.db.ExecContext(ctx, s.store.q(`
		DELETE FROM sync_leases WHERE tenant_id = ? AND holder = ?
	`), tenantID, holder)
	if err != nil {
		return fmt.Errorf("failed to release lease for %s: %w", tenantID, err)
	}
	return nil
}
