package domain

import "time"

// SessionState is the state of a client reconciliation loop.
type SessionState string

const (
	SessionIdle                SessionState = "idle"
	SessionInitialSyncInFlight SessionState = "initial_sync_in_flight"
	SessionPolling             SessionState = "polling"
	SessionRefreshTriggered    SessionState = "refresh_triggered"
	SessionStopped             SessionState = "stopped"
)

// SyncMarker is the server-side progress marker a client polls.
type SyncMarker struct {
	// TenantID identifies the tenant.
	TenantID string `json:"tenant_id"`

	// AutoSyncEnabled mirrors the tenant profile flag.
	AutoSyncEnabled bool `json:"auto_sync_enabled"`

	// LastAutoSyncAt is the completion time of the last server sweep.
	LastAutoSyncAt *time.Time `json:"last_auto_sync_at,omitempty"`
}

// AdvancedSince reports whether the marker moved past prev.
// A nil marker never advances; any marker advances past a nil prev.
func (m SyncMarker) AdvancedSince(prev *time.Time) bool {
	if m.LastAutoSyncAt == nil {
		return false
	}
	if prev == nil {
		return true
	}
	return m.LastAutoSyncAt.After(*prev)
}

// NotificationKind separates blocking re-auth prompts from soft toasts.
type NotificationKind string

const (
	// NotifyInfo is a purely informational message.
	NotifyInfo NotificationKind = "info"

	// NotifySoftError is a transient failure; retried next cycle.
	NotifySoftError NotificationKind = "soft_error"

	// NotifyReauthRequired asks the user to reconnect their mailbox.
	NotifyReauthRequired NotificationKind = "reauth_required"
)

// Notification is a user-visible message emitted by the client loop.
type Notification struct {
	Kind    NotificationKind
	Message string
	Err     error
}

// NotificationFor classifies err into a notification.
func NotificationFor(action string, err error) Notification {
	if IsReauthRequired(err) {
		return Notification{
			Kind:    NotifyReauthRequired,
			Message: action + " failed: please reconnect your mailbox",
			Err:     err,
		}
	}
	return Notification{
		Kind:    NotifySoftError,
		Message: action + " failed, retrying in the background",
		Err:     err,
	}
}
