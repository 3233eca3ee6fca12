package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Ensure TenantStore implements the interface.
var _ driven.TenantStore = (*TenantStore)(nil)

// TenantStore is an in-memory implementation of driven.TenantStore.
type TenantStore struct {
	mu      sync.RWMutex
	tenants map[string]domain.TenantSyncProfile
}

// NewTenantStore creates a new in-memory tenant store.
func NewTenantStore() *TenantStore {
	return &TenantStore{
		tenants: make(map[string]domain.TenantSyncProfile),
	}
}

// ListAutoSyncProfiles returns enabled profiles with a credential, ordered by ID.
func (s *TenantStore) ListAutoSyncProfiles(_ context.Context) ([]domain.TenantSyncProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.TenantSyncProfile, 0, len(s.tenants))
	for _, p := range s.tenants {
		if p.AutoSyncEnabled && p.HasCredential() {
			result = append(result, clone(p))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Get retrieves a profile by tenant ID.
func (s *TenantStore) Get(_ context.Context, tenantID string) (*domain.TenantSyncProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.tenants[tenantID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p = clone(p)
	return &p, nil
}

// Save stores or updates a profile.
func (s *TenantStore) Save(_ context.Context, profile domain.TenantSyncProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[profile.ID] = clone(profile)
	return nil
}

// SetAutoSyncEnabled sets the auto-sync flag.
func (s *TenantStore) SetAutoSyncEnabled(_ context.Context, tenantID string, enabled bool) error {
	return s.update(tenantID, func(p *domain.TenantSyncProfile) error {
		if enabled && !p.HasCredential() {
			return domain.ErrCredentialMissing
		}
		p.AutoSyncEnabled = enabled
		return nil
	})
}

// DisableAutoSync clears the auto-sync flag.
func (s *TenantStore) DisableAutoSync(_ context.Context, tenantID string) error {
	return s.update(tenantID, func(p *domain.TenantSyncProfile) error {
		p.AutoSyncEnabled = false
		return nil
	})
}

// UpdateRefreshCredential stores a rotated refresh credential.
func (s *TenantStore) UpdateRefreshCredential(_ context.Context, tenantID, credential string) error {
	return s.update(tenantID, func(p *domain.TenantSyncProfile) error {
		p.RefreshCredential = credential
		return nil
	})
}

// MarkSynced compares the stored marker with previous and sets it to now.
func (s *TenantStore) MarkSynced(_ context.Context, tenantID string, previous *time.Time, now time.Time) error {
	return s.update(tenantID, func(p *domain.TenantSyncProfile) error {
		if !sameInstant(p.LastAutoSyncAt, previous) {
			return domain.ErrStaleMarker
		}
		t := now
		p.LastAutoSyncAt = &t
		return nil
	})
}

// Marker returns the tenant's sync marker.
func (s *TenantStore) Marker(ctx context.Context, tenantID string) (domain.SyncMarker, error) {
	p, err := s.Get(ctx, tenantID)
	if err != nil {
		return domain.SyncMarker{}, err
	}
	return domain.SyncMarker{
		TenantID:        p.ID,
		AutoSyncEnabled: p.AutoSyncEnabled,
		LastAutoSyncAt:  p.LastAutoSyncAt,
	}, nil
}

func (s *TenantStore) update(tenantID string, fn func(p *domain.TenantSyncProfile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.tenants[tenantID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := fn(&p); err != nil {
		return err
	}
	s.tenants[tenantID] = p
	return nil
}

func clone(p domain.TenantSyncProfile) domain.TenantSyncProfile {
	if p.LastAutoSyncAt != nil {
		t := *p.LastAutoSyncAt
		p.LastAutoSyncAt = &t
	}
	return p
}

// sameInstant compares at millisecond precision, matching the SQL store.
func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.UnixMilli() == b.UnixMilli()
}
