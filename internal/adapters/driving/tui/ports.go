// Package tui is the interactive terminal client for a tenant session.
// It shows the tenant's leads, refreshes them when the server-side sweep
// advances, and surfaces sync failures as toasts or re-auth prompts.
package tui

import (
	"context"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// Session is the running reconciliation loop.
type Session interface {
	RefreshNow()
	State() domain.SessionState
	TenantID() string
}

// LeadSource is the local lead view.
type LeadSource interface {
	Leads() []domain.Lead
	Refresh(ctx context.Context, tenantID string) error
}

// Syncer runs a manual sync with a chosen lookback.
type Syncer interface {
	SyncTenant(ctx context.Context, tenantID string, lookback domain.Lookback) (*domain.SyncOutcome, error)
}

// Ports aggregates what the TUI needs.
type Ports struct {
	Session Session
	Leads   LeadSource
	Syncer  Syncer

	// Events feeds background notifications into the program.
	Events *Events
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Session == nil {
		return ErrMissingSession
	}
	if p.Leads == nil {
		return ErrMissingLeads
	}
	if p.Syncer == nil {
		return ErrMissingSyncer
	}
	return nil
}
