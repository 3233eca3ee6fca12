package driven

import (
	"context"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// AutoReplySettingsStore persists per-tenant auto-reply settings.
type AutoReplySettingsStore interface {
	// Get returns the tenant's settings, or domain.DefaultAutoReplySettings
	// when none were saved.
	Get(ctx context.Context, tenantID string) (domain.AutoReplySettings, error)

	// Save stores the tenant's settings.
	Save(ctx context.Context, tenantID string, settings domain.AutoReplySettings) error
}
