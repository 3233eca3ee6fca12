package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ProcessedLeadCache = (*claimCache)(nil)

// claimCache is a durable ProcessedLeadCache shared by all replicas.
type claimCache struct {
	store *Store
	ttl   time.Duration
	now   func() time.Time
}

// Claim inserts the claim, or takes over an expired one.
func (c *claimCache) Claim(ctx context.Context, tenantID, leadID string) (bool, error) {
	now := c.now()
	res, err := c.store.db.ExecContext(ctx, c.store.q(`
		INSERT INTO reply_claims (tenant_id, lead_id, claimed_ms)
		VALUES (?, ?, ?)
		ON CONFLICT (tenant_id, lead_id) DO UPDATE SET
			claimed_ms = excluded.claimed_ms
		WHERE reply_claims.claimed_ms <= ?
	`), tenantID, leadID, now.UnixMilli(), c.cutoff(now))
	if err != nil {
		return false, fmt.Errorf("failed to claim lead %s: %w", leadID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to claim lead %s: %w", leadID, err)
	}
	return n > 0, nil
}

func (c *claimCache) Release(ctx context.Context, tenantID, leadID string) error {
	_, err := c.store.db.ExecContext(ctx, c.store.q(`
		DELETE FROM reply_claims WHERE tenant_id = ? AND lead_id = ?
	`), tenantID, leadID)
	if err != nil {
		return fmt.Errorf("failed to release lead %s: %w", leadID, err)
	}
	return nil
}

func (c *claimCache) Contains(ctx context.Context, tenantID, leadID string) (bool, error) {
	var n int
	err := c.store.db.GetContext(ctx, &n, c.store.q(`
		SELECT COUNT(*) FROM reply_claims
		WHERE tenant_id = ? AND lead_id = ? AND claimed_ms > ?
	`), tenantID, leadID, c.cutoff(c.now()))
	if err != nil {
		return false, fmt.Errorf("failed to look up lead %s: %w", leadID, err)
	}
	return n > 0, nil
}

func (c *claimCache) Reset(ctx context.Context, tenantID string) error {
	_, err := c.store.db.ExecContext(ctx, c.store.q(`
		DELETE FROM reply_claims WHERE tenant_id = ?
	`), tenantID)
	if err != nil {
		return fmt.Errorf("failed to reset claims for %s: %w", tenantID, err)
	}
	return nil
}

func (c *claimCache) Prune(ctx context.Context, now time.Time) (int, error) {
	res, err := c.store.db.ExecContext(ctx, c.store.q(`
		DELETE FROM reply_claims WHERE claimed_ms <= ?
	`), c.cutoff(now))
	if err != nil {
		return 0, fmt.Errorf("failed to prune claims: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// cutoff is the newest claim time that counts as expired at now.
func (c *claimCache) cutoff(now time.Time) int64 {
	return now.Add(-c.ttl).UnixMilli()
}
