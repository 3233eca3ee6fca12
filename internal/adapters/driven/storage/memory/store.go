// Package memory holds process-local stores. They back DATABASE_URL=memory:
// for a single long-running server and serve as fixtures in service tests.
package memory

import (
	"sync"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Store bundles one instance of every in-memory store, mirroring the
// accessors of the SQL store.
type Store struct {
	tenants   *TenantStore
	leads     *LeadStore
	settings  *SettingsStore
	leases    *LeaseStore
	scheduler *SchedulerStore

	mu     sync.Mutex
	claims *ProcessedLeadCache
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		tenants:   NewTenantStore(),
		leads:     NewLeadStore(),
		settings:  NewSettingsStore(),
		leases:    NewLeaseStore(),
		scheduler: NewSchedulerStore(),
	}
}

// Driver names the backend in logs.
func (s *Store) Driver() string { return "memory" }

// Close is a no-op; the state is dropped with the process.
func (s *Store) Close() error { return nil }

func (s *Store) TenantStore() driven.TenantStore { return s.tenants }
func (s *Store) LeadStore() driven.LeadStore { return s.leads }
func (s *Store) SettingsStore() driven.AutoReplySettingsStore { return s.settings }
func (s *Store) LeaseStore() driven.SyncLeaseStore { return s.leases }
func (s *Store) SchedulerStore() driven.SchedulerStore { return s.scheduler }

// ClaimCache returns the store's processed-lead cache. The first call
// fixes the TTL.
func (s *Store) ClaimCache(ttl time.Duration) driven.ProcessedLeadCache {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claims == nil {
		s.claims = NewProcessedLeadCache(ttl)
	}
	return s.claims
}
