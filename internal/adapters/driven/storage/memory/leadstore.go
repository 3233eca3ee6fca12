package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Ensure LeadStore implements the interface.
var _ driven.LeadStore = (*LeadStore)(nil)

// LeadStore is an in-memory implementation of driven.LeadStore.
type LeadStore struct {
	mu    sync.RWMutex
	leads map[leadKey]domain.Lead
}

type leadKey struct {
	tenantID string
	leadID   string
}

// NewLeadStore creates a new in-memory lead store.
func NewLeadStore() *LeadStore {
	return &LeadStore{
		leads: make(map[leadKey]domain.Lead),
	}
}

// RecordIngested inserts leads that are not stored yet.
func (s *LeadStore) RecordIngested(_ context.Context, leads []domain.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, lead := range leads {
		if lead.ID == "" || lead.TenantID == "" {
			return domain.ErrInvalidInput
		}
		key := leadKey{lead.TenantID, lead.ID}
		if _, exists := s.leads[key]; exists {
			continue
		}
		s.leads[key] = lead
	}
	return nil
}

// Get retrieves a lead by ID.
func (s *LeadStore) Get(_ context.Context, tenantID, leadID string) (*domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lead, ok := s.leads[leadKey{tenantID, leadID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &lead, nil
}

// List returns a tenant's leads, newest first. A non-positive limit
// returns all leads.
func (s *LeadStore) List(_ context.Context, tenantID string, limit int) ([]domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Lead, 0)
	for _, lead := range s.leads {
		if lead.TenantID == tenantID {
			result = append(result, lead)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ReceivedAt.After(result[j].ReceivedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// MarkAutoReplied sets the reply flags unless the lead was already
// auto-replied.
func (s *LeadStore) MarkAutoReplied(_ context.Context, tenantID, leadID string, respondedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[leadKey{tenantID, leadID}]
	if !ok {
		return domain.ErrNotFound
	}
	if lead.AutoReplied {
		return domain.ErrAlreadyReplied
	}
	lead.Answered = true
	lead.AutoReplied = true
	lead.RespondedAt = &respondedAt
	s.leads[leadKey{tenantID, leadID}] = lead
	return nil
}

// CountAutoRepliedSince counts auto-replied leads with responded_at >= since.
func (s *LeadStore) CountAutoRepliedSince(_ context.Context, tenantID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, lead := range s.leads {
		if lead.TenantID != tenantID || !lead.AutoReplied || lead.RespondedAt == nil {
			continue
		}
		if !lead.RespondedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// MarkAnswered records a manual reply. Used by tests and tooling.
func (s *LeadStore) MarkAnswered(_ context.Context, tenantID, leadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[leadKey{tenantID, leadID}]
	if !ok {
		return domain.ErrNotFound
	}
	lead.Answered = true
	s.leads[leadKey{tenantID, leadID}] = lead
	return nil
}
