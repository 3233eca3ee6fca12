package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Ensure LeaseStore implements the interface.
var _ driven.SyncLeaseStore = (*LeaseStore)(nil)

type lease struct {
	holder    string
	expiresAt time.Time
}

// LeaseStore is an in-memory implementation of driven.SyncLeaseStore.
// It only excludes sweeps running in the same process.
type LeaseStore struct {
	now func() time.Time

	mu     sync.Mutex
	leases map[string]lease
}

// NewLeaseStore creates a new in-memory lease store.
func NewLeaseStore() *LeaseStore {
	return &LeaseStore{
		now:    time.Now,
		leases: make(map[string]lease),
	}
}

// Acquire takes the lease unless another holder owns an unexpired one.
// The current holder may re-acquire to extend it.
func (s *LeaseStore) Acquire(_ context.Context, tenantID, holder string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if l, ok := s.leases[tenantID]; ok && l.holder != holder && now.Before(l.expiresAt) {
		return false, nil
	}
	s.leases[tenantID] = lease{holder: holder, expiresAt: now.Add(ttl)}
	return true, nil
}

// Release drops the lease if holder still owns it.
func (s *LeaseStore) Release(_ context.Context, tenantID, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.leases[tenantID]; ok && l.holder == holder {
		delete(s.leases, tenantID)
	}
	return nil
}
