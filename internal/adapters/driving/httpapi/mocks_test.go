package httpapi

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driving"
)

// Compile-time interface checks.
var (
	_ driving.Sweeper             = (*mockSweeper)(nil)
	_ driving.TenantSyncer        = (*mockSyncer)(nil)
	_ driving.AutoReplyController = (*mockControls)(nil)
	_ LeadLister                  = (*mockLeads)(nil)
	_ TokenVerifier               = mockTokens{}
)

type mockSweeper struct {
	summary *domain.SweepSummary
	err     error
	calls   int
}

func (m *mockSweeper) Sweep(context.Context) (*domain.SweepSummary, error) {
	m.calls++
	return m.summary, m.err
}

type mockSyncer struct {
	outcome      *domain.SyncOutcome
	err          error
	marker       domain.SyncMarker
	status       *driving.SyncStatus
	lastTenant   string
	lastLookback domain.Lookback
}

func (m *mockSyncer) SyncTenant(_ context.Context, tenantID string, lookback domain.Lookback) (*domain.SyncOutcome, error) {
	m.lastTenant = tenantID
	m.lastLookback = lookback
	return m.outcome, m.err
}

func (m *mockSyncer) Marker(_ context.Context, tenantID string) (domain.SyncMarker, error) {
	m.lastTenant = tenantID
	return m.marker, m.err
}

func (m *mockSyncer) Status(_ context.Context, tenantID string) (*driving.SyncStatus, error) {
	m.lastTenant = tenantID
	return m.status, m.err
}

type mockControls struct {
	mu        sync.Mutex
	settings  map[string]domain.AutoReplySettings
	autoSync  map[string]bool
	toggleErr error
}

func newMockControls() *mockControls {
	return &mockControls{
		settings: make(map[string]domain.AutoReplySettings),
		autoSync: make(map[string]bool),
	}
}

func (m *mockControls) SetAutoReplyEnabled(_ context.Context, tenantID string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[tenantID]
	if !ok {
		s = domain.DefaultAutoReplySettings()
	}
	s.Enabled = enabled
	m.settings[tenantID] = s
	return nil
}

func (m *mockControls) SetAutoSyncEnabled(_ context.Context, tenantID string, enabled bool) error {
	if m.toggleErr != nil {
		return m.toggleErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoSync[tenantID] = enabled
	return nil
}

func (m *mockControls) Settings(_ context.Context, tenantID string) (domain.AutoReplySettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.settings[tenantID]; ok {
		return s, nil
	}
	return domain.DefaultAutoReplySettings(), nil
}

func (m *mockControls) UpdateSettings(_ context.Context, tenantID string, s domain.AutoReplySettings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[tenantID] = s
	return nil
}

type mockLeads struct {
	leads     []domain.Lead
	lastLimit int
}

func (m *mockLeads) List(_ context.Context, tenantID string, limit int) ([]domain.Lead, error) {
	m.lastLimit = limit
	var out []domain.Lead
	for _, l := range m.leads {
		if l.TenantID == tenantID {
			out = append(out, l)
		}
	}
	return out, nil
}

// mockTokens accepts "token-<tenant>".
type mockTokens struct{}

func (mockTokens) Verify(token string) (string, error) {
	const prefix = "token-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return "", errors.New("bad token")
	}
	return token[len(prefix):], nil
}
