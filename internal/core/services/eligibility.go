package services

import (
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// DefaultStalenessWindow is the minimum time between two auto-syncs of the
// same tenant. It is shorter than the 5 minute sweep cadence to absorb
// scheduler jitter.
const DefaultStalenessWindow = 4 * time.Minute

// EligibilitySelector picks the tenants due for a sync pass.
type EligibilitySelector struct {
	window time.Duration
}

// NewEligibilitySelector creates a selector. A non-positive window falls
// back to DefaultStalenessWindow.
func NewEligibilitySelector(window time.Duration) *EligibilitySelector {
	if window <= 0 {
		window = DefaultStalenessWindow
	}
	return &EligibilitySelector{window: window}
}

// Window returns the staleness window in use.
func (s *EligibilitySelector) Window() time.Duration {
	return s.window
}

// Select returns the profiles with auto-sync enabled that were never synced
// or whose last sync is at least one window old.
func (s *EligibilitySelector) Select(profiles []domain.TenantSyncProfile, now time.Time) []domain.TenantSyncProfile {
	var due []domain.TenantSyncProfile
	for _, p := range profiles {
		if s.IsDue(p, now) {
			due = append(due, p)
		}
	}
	return due
}

// IsDue applies the eligibility rule to a single profile.
func (s *EligibilitySelector) IsDue(p domain.TenantSyncProfile, now time.Time) bool {
	if !p.AutoSyncEnabled {
		return false
	}
	if p.LastAutoSyncAt == nil {
		return true
	}
	return now.Sub(*p.LastAutoSyncAt) >= s.window
}
