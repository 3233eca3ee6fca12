package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/logger"
)

// SetAutoReplyEnabled flips the tenant's auto-reply switch. Turning it off
// clears the tenant's processed-lead cache so that turning it back on
// re-evaluates every lead against the durable flag.
func (o *SweepOrchestrator) SetAutoReplyEnabled(ctx context.Context, tenantID string, enabled bool) error {
	settings, err := o.deps.Settings.Get(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("get auto-reply settings: %w", err)
	}
	settings.Enabled = enabled
	return o.UpdateSettings(ctx, tenantID, settings)
}

// SetAutoSyncEnabled flips the tenant's auto-sync switch.
func (o *SweepOrchestrator) SetAutoSyncEnabled(ctx context.Context, tenantID string, enabled bool) error {
	if enabled {
		profile, err := o.deps.Tenants.Get(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("get tenant: %w", err)
		}
		if !profile.HasCredential() {
			return fmt.Errorf("%w: connect a mailbox before enabling auto-sync", domain.ErrCredentialMissing)
		}
	}

	if err := o.deps.Tenants.SetAutoSyncEnabled(ctx, tenantID, enabled); err != nil {
		return fmt.Errorf("set auto-sync: %w", err)
	}

	if enabled {
		o.mu.Lock()
		if ts, ok := o.states[tenantID]; ok && ts.state == domain.TenantDisabled {
			ts.state, _ = ts.state.Next(domain.EventReenabled)
			ts.lastErr = nil
		}
		o.mu.Unlock()
	}

	logger.Info("tenant %s auto-sync enabled=%t", tenantID, enabled)
	return nil
}

// Settings returns the tenant's auto-reply settings.
func (o *SweepOrchestrator) Settings(ctx context.Context, tenantID string) (domain.AutoReplySettings, error) {
	return o.deps.Settings.Get(ctx, tenantID)
}

// UpdateSettings validates and stores auto-reply settings.
func (o *SweepOrchestrator) UpdateSettings(ctx context.Context, tenantID string, settings domain.AutoReplySettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := o.deps.Settings.Save(ctx, tenantID, settings); err != nil {
		return fmt.Errorf("save auto-reply settings: %w", err)
	}

	if !settings.Enabled {
		if err := o.deps.Cache.Reset(ctx, tenantID); err != nil {
			return fmt.Errorf("reset processed leads: %w", err)
		}
	}

	logger.Info("tenant %s auto-reply enabled=%t", tenantID, settings.Enabled)
	return nil
}
