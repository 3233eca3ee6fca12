// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// LeadsChanged is sent when the local lead view was refreshed or cleared.
type LeadsChanged struct {
	Leads []domain.Lead
}

// Notified carries a notification from the reconciliation loop.
type Notified struct {
	Notification domain.Notification
}

// SessionStateChanged is sent on every reconciliation state change.
type SessionStateChanged struct {
	State domain.SessionState
}

// ManualSyncCompleted carries the result of a user-triggered sync.
type ManualSyncCompleted struct {
	Outcome *domain.SyncOutcome
	Err     error
}

// ToastExpired clears the toast with the given sequence number.
type ToastExpired struct {
	Seq int
}
