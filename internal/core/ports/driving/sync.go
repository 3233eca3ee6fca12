package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// Sweeper runs one complete scheduled pass across all eligible tenants.
type Sweeper interface {
	// Sweep processes every eligible tenant and returns the aggregate summary.
	// Returns domain.ErrMissingConfig before touching any tenant if the
	// orchestrator is not fully configured.
	Sweep(ctx context.Context) (*domain.SweepSummary, error)
}

// TenantSyncer serves client-triggered syncs and status queries.
type TenantSyncer interface {
	// SyncTenant runs refresh, mailbox sync and auto-reply for one tenant
	// with the given lookback. It does not move the auto-sync marker.
	SyncTenant(ctx context.Context, tenantID string, lookback domain.Lookback) (*domain.SyncOutcome, error)

	// Marker returns the tenant's sync progress marker.
	Marker(ctx context.Context, tenantID string) (domain.SyncMarker, error)

	// Status returns the tenant's current orchestration status.
	Status(ctx context.Context, tenantID string) (*SyncStatus, error)
}

// SyncStatus represents the current state of a tenant.
type SyncStatus struct {
	// TenantID identifies the tenant.
	TenantID string `json:"tenant_id"`

	// State is the tenant's state machine state.
	State domain.TenantState `json:"state"`

	// AutoSyncEnabled mirrors the profile flag.
	AutoSyncEnabled bool `json:"auto_sync_enabled"`

	// LastAutoSyncAt is the completion marker of the last sweep.
	LastAutoSyncAt *time.Time `json:"last_auto_sync_at,omitempty"`

	// LastError is the error of the most recent run, if any.
	LastError string `json:"last_error,omitempty"`
}

// AutoReplyController toggles tenant-level automation switches.
type AutoReplyController interface {
	// SetAutoReplyEnabled flips the auto-reply switch. Turning it off
	// resets the tenant's processed-lead cache.
	SetAutoReplyEnabled(ctx context.Context, tenantID string, enabled bool) error

	// SetAutoSyncEnabled flips the auto-sync switch. Enabling requires a
	// stored refresh credential.
	SetAutoSyncEnabled(ctx context.Context, tenantID string, enabled bool) error

	// Settings returns the tenant's auto-reply settings.
	Settings(ctx context.Context, tenantID string) (domain.AutoReplySettings, error)

	// UpdateSettings validates and stores the tenant's auto-reply settings.
	UpdateSettings(ctx context.Context, tenantID string, settings domain.AutoReplySettings) error
}
