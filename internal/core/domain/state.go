package domain

import "fmt"

// TenantState is the per-tenant orchestration state.
//
//	Idle -> Syncing -> Replying -> Idle
//	any  -> Disabled           (fatal credential error)
//	Disabled -> Idle           (external re-enable)
type TenantState string

const (
	TenantIdle     TenantState = "idle"
	TenantSyncing  TenantState = "syncing"
	TenantReplying TenantState = "replying"
	TenantDisabled TenantState = "disabled"
)

// TenantEvent drives TenantState transitions.
type TenantEvent string

const (
	EventSyncStarted       TenantEvent = "sync_started"
	EventLeadsIngested     TenantEvent = "leads_ingested"
	EventRepliesSettled    TenantEvent = "replies_settled"
	EventSyncFailed        TenantEvent = "sync_failed"
	EventCredentialRevoked TenantEvent = "credential_revoked"
	EventReenabled         TenantEvent = "reenabled"
)

// Next returns the state reached by applying e to s.
func (s TenantState) Next(e TenantEvent) (TenantState, error) {
	if e == EventCredentialRevoked {
		return TenantDisabled, nil
	}

	switch s {
	case TenantIdle:
		if e == EventSyncStarted {
			return TenantSyncing, nil
		}
	case TenantSyncing:
		switch e {
		case EventLeadsIngested:
			return TenantReplying, nil
		case EventSyncFailed:
			return TenantIdle, nil
		}
	case TenantReplying:
		switch e {
		case EventRepliesSettled, EventSyncFailed:
			return TenantIdle, nil
		}
	case TenantDisabled:
		if e == EventReenabled {
			return TenantIdle, nil
		}
	}

	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}

// IsBusy returns true while a sync or reply pass is running.
func (s TenantState) IsBusy() bool {
	return s == TenantSyncing || s == TenantReplying
}
