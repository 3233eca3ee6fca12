package mcp

import (
	"context"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driving"
)

// LeadLister lists a tenant's leads, newest first.
type LeadLister interface {
	List(ctx context.Context, tenantID string, limit int) ([]domain.Lead, error)
}

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Syncer runs manual syncs and answers status queries.
	Syncer driving.TenantSyncer

	// Sweeper runs a full sweep. Optional; run_sweep is not registered
	// without it.
	Sweeper driving.Sweeper

	// Controls exposes auto-reply settings. Optional.
	Controls driving.AutoReplyController

	// Leads backs the lead resources. Optional.
	Leads LeadLister
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Syncer == nil {
		return ErrMissingSyncer
	}
	return nil
}
