package domain

import (
	"fmt"
	"time"
)

// TenantSyncProfile is the persisted auto-sync configuration of one tenant.
// The Tenant Store owns it; the orchestrator reads it and writes back the
// completion marker and the enabled flag.
type TenantSyncProfile struct {
	// ID is the tenant identifier.
	ID string

	// MailboxAddress is the tenant's own mailbox, used as the reply sender.
	MailboxAddress string

	// RefreshCredential is the provider's long-lived refresh token.
	// Opaque secret; never logged.
	RefreshCredential string

	// AutoSyncEnabled indicates the tenant opted in to scheduled sweeps.
	AutoSyncEnabled bool

	// LastAutoSyncAt is when the last auto-sync completed. Nil if never.
	LastAutoSyncAt *time.Time

	// TimeZone is the IANA zone used for business hours and daily caps.
	TimeZone string
}

// Validate checks the enabled-implies-credential invariant.
func (p TenantSyncProfile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}
	if p.AutoSyncEnabled && p.RefreshCredential == "" {
		return fmt.Errorf("%w: tenant %s", ErrCredentialMissing, p.ID)
	}
	return nil
}

// HasCredential returns true if a refresh credential is stored.
func (p TenantSyncProfile) HasCredential() bool {
	return p.RefreshCredential != ""
}

// Location returns the tenant's time zone, falling back to UTC.
func (p TenantSyncProfile) Location() *time.Location {
	if p.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AccessCredential is a short-lived provider access token.
type AccessCredential struct {
	// Token is the bearer access token.
	Token string

	// Expiry is when the token stops being valid. Zero if unknown.
	Expiry time.Time

	// RotatedRefresh is set when the provider rotated the refresh token.
	RotatedRefresh string
}
