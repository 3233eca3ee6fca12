package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// TenantStore persists tenant sync profiles.
// The table is owned by the hosting backend; the orchestrator only reads
// profiles and writes the enabled flag and the completion marker.
type TenantStore interface {
	// ListAutoSyncProfiles returns profiles with auto-sync enabled and a
	// non-empty refresh credential.
	ListAutoSyncProfiles(ctx context.Context) ([]domain.TenantSyncProfile, error)

	// Get retrieves a profile by tenant ID.
	// Returns domain.ErrNotFound if the tenant does not exist.
	Get(ctx context.Context, tenantID string) (*domain.TenantSyncProfile, error)

	// Save creates or updates a profile.
	Save(ctx context.Context, profile domain.TenantSyncProfile) error

	// SetAutoSyncEnabled sets the auto-sync flag.
	// Returns domain.ErrNotFound if the tenant does not exist.
	SetAutoSyncEnabled(ctx context.Context, tenantID string, enabled bool) error

	// DisableAutoSync clears the auto-sync flag after a fatal credential error.
	DisableAutoSync(ctx context.Context, tenantID string) error

	// UpdateRefreshCredential stores a rotated refresh credential.
	UpdateRefreshCredential(ctx context.Context, tenantID, credential string) error

	// MarkSynced sets last_auto_sync to now if and only if the stored value
	// still equals previous (nil meaning never synced).
	// Returns domain.ErrStaleMarker when another writer got there first.
	MarkSynced(ctx context.Context, tenantID string, previous *time.Time, now time.Time) error

	// Marker returns the tenant's current sync marker.
	Marker(ctx context.Context, tenantID string) (domain.SyncMarker, error)
}
