package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// SweepInput is the input schema for the run_sweep tool.
type SweepInput struct{}

// SweepOutput summarises a sweep.
type SweepOutput struct {
	SweepID       string          `json:"sweep_id"`
	Eligible      int             `json:"eligible"`
	Successful    int             `json:"successful"`
	Failed        int             `json:"failed"`
	NewLeads      int             `json:"new_leads"`
	RepliesSent   int             `json:"replies_sent"`
	RepliesFailed int             `json:"replies_failed"`
	DurationMS    int64           `json:"duration_ms"`
	Tenants       []OutcomeOutput `json:"tenants"`
}

// SyncInput is the input schema for the sync_tenant tool.
type SyncInput struct {
	TenantID     string `json:"tenant_id" jsonschema:"the tenant to sync"`
	LookbackDays int    `json:"lookback_days,omitempty" jsonschema:"how many days of mail to sync: 1, 3, 7 or 30 (default 1)"`
}

// OutcomeOutput is the result of syncing one tenant.
type OutcomeOutput struct {
	TenantID          string `json:"tenant_id"`
	Success           bool   `json:"success"`
	NewLeadCount      int    `json:"new_lead_count"`
	RepliesSent       int    `json:"replies_sent"`
	RepliesFailed     int    `json:"replies_failed"`
	CredentialRevoked bool   `json:"credential_revoked,omitempty"`
	ReauthRequired    bool   `json:"reauth_required,omitempty"`
	Error             string `json:"error,omitempty"`
}

// StatusInput is the input schema for the tenant_status tool.
type StatusInput struct {
	TenantID string `json:"tenant_id" jsonschema:"the tenant to inspect"`
}

// StatusOutput reports a tenant's orchestration state.
type StatusOutput struct {
	TenantID        string `json:"tenant_id"`
	State           string `json:"state"`
	AutoSyncEnabled bool   `json:"auto_sync_enabled"`
	LastAutoSyncAt  string `json:"last_auto_sync_at,omitempty"`
	LastError       string `json:"last_error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	if s.ports.Sweeper != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "run_sweep",
			Description: "Sync and auto-reply for every tenant that is due",
		}, s.handleSweep)
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_tenant",
		Description: "Sync one tenant's mailbox now and send pending auto-replies",
	}, s.handleSync)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "tenant_status",
		Description: "Show a tenant's sync state and last auto-sync time",
	}, s.handleStatus)
}

func (s *Server) handleSweep(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ SweepInput,
) (*mcp.CallToolResult, SweepOutput, error) {
	summary, err := s.ports.Sweeper.Sweep(ctx)
	if err != nil {
		return nil, SweepOutput{}, err
	}

	out := SweepOutput{
		SweepID:       summary.SweepID,
		Eligible:      summary.Eligible,
		Successful:    summary.Successful,
		Failed:        summary.Failed,
		NewLeads:      summary.NewLeads,
		RepliesSent:   summary.RepliesSent,
		RepliesFailed: summary.RepliesFailed,
		DurationMS:    summary.Duration().Milliseconds(),
		Tenants:       make([]OutcomeOutput, len(summary.Outcomes)),
	}
	for i := range summary.Outcomes {
		out.Tenants[i] = outcomeOutput(&summary.Outcomes[i])
	}
	return nil, out, nil
}

func (s *Server) handleSync(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SyncInput,
) (*mcp.CallToolResult, OutcomeOutput, error) {
	if input.TenantID == "" {
		return nil, OutcomeOutput{}, fmt.Errorf("%w: tenant_id is required", domain.ErrInvalidInput)
	}

	lookback := domain.AutoSyncLookback
	if input.LookbackDays != 0 {
		lookback = domain.Lookback(input.LookbackDays)
		if !lookback.IsValid() {
			return nil, OutcomeOutput{}, fmt.Errorf("%w: lookback_days must be 1, 3, 7 or 30", domain.ErrInvalidInput)
		}
	}

	outcome, err := s.ports.Syncer.SyncTenant(ctx, input.TenantID, lookback)
	if outcome == nil {
		return nil, OutcomeOutput{}, err
	}
	// A failed run is reported in the output, not as a tool error.
	return nil, outcomeOutput(outcome), nil
}

func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	if input.TenantID == "" {
		return nil, StatusOutput{}, fmt.Errorf("%w: tenant_id is required", domain.ErrInvalidInput)
	}

	status, err := s.ports.Syncer.Status(ctx, input.TenantID)
	if err != nil {
		return nil, StatusOutput{}, err
	}

	out := StatusOutput{
		TenantID:        status.TenantID,
		State:           string(status.State),
		AutoSyncEnabled: status.AutoSyncEnabled,
		LastError:       status.LastError,
	}
	if status.LastAutoSyncAt != nil {
		out.LastAutoSyncAt = status.LastAutoSyncAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return nil, out, nil
}

func outcomeOutput(o *domain.SyncOutcome) OutcomeOutput {
	out := OutcomeOutput{
		TenantID:          o.TenantID,
		Success:           o.Success,
		NewLeadCount:      o.NewLeadCount,
		RepliesSent:       o.Replies.Sent,
		RepliesFailed:     o.Replies.Failed,
		CredentialRevoked: o.CredentialRevoked,
	}
	if o.Err != nil {
		out.Error = o.Err.Error()
		out.ReauthRequired = domain.IsReauthRequired(o.Err)
	}
	return out
}
