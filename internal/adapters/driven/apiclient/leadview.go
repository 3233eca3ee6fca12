package apiclient

import (
	"context"
	"sync"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Ensure LeadCache implements the interface.
var _ driven.LeadView = (*LeadCache)(nil)

// DefaultViewSize is how many leads a session keeps.
const DefaultViewSize = 100

// LeadCache is the session's local copy of the tenant's newest leads.
type LeadCache struct {
	client *Client
	limit  int

	mu       sync.RWMutex
	leads    []domain.Lead
	onChange func([]domain.Lead)
}

// NewLeadCache creates an empty cache. onChange, if set, receives a copy of
// the leads after every refresh or clear.
func NewLeadCache(client *Client, limit int, onChange func([]domain.Lead)) *LeadCache {
	if limit <= 0 {
		limit = DefaultViewSize
	}
	return &LeadCache{client: client, limit: limit, onChange: onChange}
}

// Refresh reloads the leads from the server.
func (v *LeadCache) Refresh(ctx context.Context, _ string) error {
	leads, err := v.client.Leads(ctx, v.limit)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.leads = leads
	v.mu.Unlock()
	v.changed()
	return nil
}

// Clear drops the cached leads.
func (v *LeadCache) Clear() {
	v.mu.Lock()
	v.leads = nil
	v.mu.Unlock()
	v.changed()
}

// Leads returns a copy of the cached leads.
func (v *LeadCache) Leads() []domain.Lead {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]domain.Lead, len(v.leads))
	copy(out, v.leads)
	return out
}

func (v *LeadCache) changed() {
	if v.onChange != nil {
		v.onChange(v.Leads())
	}
}
