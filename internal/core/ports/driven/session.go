package driven

import (
	"context"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// SessionBackend is the server side as seen by a client session: either the
// in-process orchestrator or the HTTP API.
type SessionBackend interface {
	// SyncTenant triggers an immediate sync for the tenant.
	SyncTenant(ctx context.Context, tenantID string, lookback domain.Lookback) (*domain.SyncOutcome, error)

	// Marker returns the tenant's server-side sync marker.
	Marker(ctx context.Context, tenantID string) (domain.SyncMarker, error)
}

// LeadView is a client-side cached list of leads.
type LeadView interface {
	// Refresh reloads the tenant's leads.
	Refresh(ctx context.Context, tenantID string) error

	// Clear drops everything cached.
	Clear()
}

// SessionNotifier shows notifications to the session's user.
type SessionNotifier interface {
	Notify(n domain.Notification)
}

// ClientSession is what `leadsync login` stores on the client machine.
type ClientSession struct {
	ServerURL string `json:"server_url"`
	TenantID  string `json:"tenant_id"`
	Token     string `json:"token"`
}

// ClientSessionStore persists the client session.
// Load returns domain.ErrNotLoggedIn when nothing is stored.
type ClientSessionStore interface {
	Save(session ClientSession) error
	Load() (*ClientSession, error)
	Delete() error
}
