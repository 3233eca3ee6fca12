package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driving"
)

// Compile-time interface checks.
var (
	_ driving.TenantSyncer        = (*mockSyncer)(nil)
	_ driving.Sweeper             = (*mockSweeper)(nil)
	_ driving.AutoReplyController = (*mockControls)(nil)
	_ LeadLister                  = (*mockLeads)(nil)
)

type mockSyncer struct {
	outcome  *domain.SyncOutcome
	status   *driving.SyncStatus
	err      error
	lookback domain.Lookback
}

func (m *mockSyncer) SyncTenant(_ context.Context, tenantID string, l domain.Lookback) (*domain.SyncOutcome, error) {
	m.lookback = l
	if m.outcome != nil {
		m.outcome.TenantID = tenantID
	}
	return m.outcome, m.err
}

func (m *mockSyncer) Marker(_ context.Context, tenantID string) (domain.SyncMarker, error) {
	return domain.SyncMarker{TenantID: tenantID}, m.err
}

func (m *mockSyncer) Status(_ context.Context, _ string) (*driving.SyncStatus, error) {
	return m.status, m.err
}

type mockSweeper struct {
	summary *domain.SweepSummary
	err     error
}

func (m *mockSweeper) Sweep(_ context.Context) (*domain.SweepSummary, error) {
	return m.summary, m.err
}

type mockControls struct {
	settings domain.AutoReplySettings
	err      error
}

func (m *mockControls) SetAutoReplyEnabled(context.Context, string, bool) error { return m.err }
func (m *mockControls) SetAutoSyncEnabled(context.Context, string, bool) error  { return m.err }
func (m *mockControls) Settings(context.Context, string) (domain.AutoReplySettings, error) {
	return m.settings, m.err
}
func (m *mockControls) UpdateSettings(context.Context, string, domain.AutoReplySettings) error {
	return m.err
}

type mockLeads struct {
	leads  []domain.Lead
	tenant string
	limit  int
	err    error
}

func (m *mockLeads) List(_ context.Context, tenantID string, limit int) ([]domain.Lead, error) {
	m.tenant, m.limit = tenantID, limit
	return m.leads, m.err
}

func testTime() time.Time {
	return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
}
