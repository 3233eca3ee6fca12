package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Ensure ProcessedLeadCache implements the interface.
var _ driven.ProcessedLeadCache = (*ProcessedLeadCache)(nil)

// DefaultClaimTTL is how long a processed lead stays in the cache.
const DefaultClaimTTL = 24 * time.Hour

// ProcessedLeadCache is a process-local, tenant-scoped set of lead IDs
// with a TTL per entry.
type ProcessedLeadCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	tenants map[string]map[string]time.Time
}

// NewProcessedLeadCache creates a cache. A non-positive ttl selects
// DefaultClaimTTL.
func NewProcessedLeadCache(ttl time.Duration) *ProcessedLeadCache {
	if ttl <= 0 {
		ttl = DefaultClaimTTL
	}
	return &ProcessedLeadCache{
		ttl:     ttl,
		now:     time.Now,
		tenants: make(map[string]map[string]time.Time),
	}
}

// Claim adds the lead unless an unexpired entry exists.
func (c *ProcessedLeadCache) Claim(_ context.Context, tenantID, leadID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	leads := c.tenants[tenantID]
	if leads == nil {
		leads = make(map[string]time.Time)
		c.tenants[tenantID] = leads
	}
	if claimedAt, ok := leads[leadID]; ok && now.Sub(claimedAt) < c.ttl {
		return false, nil
	}
	leads[leadID] = now
	return true, nil
}

// Release removes the lead.
func (c *ProcessedLeadCache) Release(_ context.Context, tenantID, leadID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if leads := c.tenants[tenantID]; leads != nil {
		delete(leads, leadID)
	}
	return nil
}

// Contains reports whether an unexpired entry exists.
func (c *ProcessedLeadCache) Contains(_ context.Context, tenantID, leadID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	claimedAt, ok := c.tenants[tenantID][leadID]
	return ok && c.now().Sub(claimedAt) < c.ttl, nil
}

// Reset clears every entry of a tenant.
func (c *ProcessedLeadCache) Reset(_ context.Context, tenantID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tenants, tenantID)
	return nil
}

// Prune drops expired entries.
func (c *ProcessedLeadCache) Prune(_ context.Context, now time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for tenantID, leads := range c.tenants {
		for leadID, claimedAt := range leads {
			if now.Sub(claimedAt) >= c.ttl {
				delete(leads, leadID)
				n++
			}
		}
		if len(leads) == 0 {
			delete(c.tenants, tenantID)
		}
	}
	return n, nil
}

// Len returns the number of entries held for a tenant, expired or not.
func (c *ProcessedLeadCache) Len(tenantID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tenants[tenantID])
}
