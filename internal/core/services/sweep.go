package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
	"github.com/custodia-labs/leadsync/internal/core/ports/driving"
	"github.com/custodia-labs/leadsync/internal/logger"
)

// Ensure SweepOrchestrator implements the interfaces.
var (
	_ driving.Sweeper             = (*SweepOrchestrator)(nil)
	_ driving.TenantSyncer        = (*SweepOrchestrator)(nil)
	_ driving.AutoReplyController = (*SweepOrchestrator)(nil)
)

// DefaultLeaseTTL bounds how long a crashed sweep can block a tenant.
const DefaultLeaseTTL = 10 * time.Minute

// SweepDeps are the driven ports used by the orchestrator.
// Leases is optional.
type SweepDeps struct {
	Tenants   driven.TenantStore
	Leads     driven.LeadStore
	Settings  driven.AutoReplySettingsStore
	Cache     driven.ProcessedLeadCache
	Refresher driven.CredentialRefresher
	Mailbox   driven.MailboxSyncClient
	Generator driven.ReplyGenerator
	Sender    driven.ReplySender
	Leases    driven.SyncLeaseStore
}

// SweepOptions tune the orchestrator. Zero values select defaults.
type SweepOptions struct {
	StalenessWindow  time.Duration
	BatchConcurrency int
	BatchPause       time.Duration
	LeaseTTL         time.Duration

	// Preflight runs before every sweep and manual sync. A non-nil error
	// aborts the run before any tenant is touched.
	Preflight func() error
}

// SweepOrchestrator runs the scheduled sync-and-reply sweep and the
// client-triggered per-tenant sync. It owns the per-tenant state machine.
type SweepOrchestrator struct {
	deps       SweepDeps
	opts       SweepOptions
	selector   *EligibilitySelector
	dispatcher *BatchDispatcher
	replies    *AutoReplyDispatcher

	now   func() time.Time
	newID func() string

	mu     sync.Mutex
	states map[string]*tenantStatus
}

type tenantStatus struct {
	state   domain.TenantState
	lastErr error
}

// NewSweepOrchestrator creates an orchestrator.
func NewSweepOrchestrator(deps SweepDeps, opts SweepOptions) *SweepOrchestrator {
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = DefaultLeaseTTL
	}
	return &SweepOrchestrator{
		deps:       deps,
		opts:       opts,
		selector:   NewEligibilitySelector(opts.StalenessWindow),
		dispatcher: NewBatchDispatcher(opts.BatchConcurrency, opts.BatchPause),
		replies:    NewAutoReplyDispatcher(deps.Leads, deps.Cache, deps.Generator, deps.Sender),
		now:        time.Now,
		newID:      uuid.NewString,
		states:     make(map[string]*tenantStatus),
	}
}

// Sweep processes every eligible tenant once.
func (o *SweepOrchestrator) Sweep(ctx context.Context) (*domain.SweepSummary, error) {
	if err := o.preflight(); err != nil {
		return nil, err
	}

	summary := &domain.SweepSummary{
		SweepID:   o.newID(),
		StartedAt: o.now(),
	}
	log := logger.With("sweep", summary.SweepID)

	profiles, err := o.deps.Tenants.ListAutoSyncProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenant profiles: %w", err)
	}

	eligible := o.selector.Select(profiles, summary.StartedAt)
	summary.Eligible = len(eligible)
	log.Info("sweep started", "profiles", len(profiles), "eligible", len(eligible))

	outcomes := o.dispatcher.Dispatch(ctx, eligible, func(ctx context.Context, p domain.TenantSyncProfile) domain.SyncOutcome {
		return o.runTenant(ctx, p, domain.AutoSyncLookback, true, summary.SweepID)
	})
	for _, out := range outcomes {
		summary.Record(out)
	}
	summary.EndedAt = o.now()

	log.Info("sweep complete",
		"successful", summary.Successful,
		"failed", summary.Failed,
		"new_leads", summary.NewLeads,
		"replies_sent", summary.RepliesSent,
		"replies_failed", summary.RepliesFailed,
		"duration", summary.Duration(),
	)
	return summary, nil
}

// SyncTenant runs a client-triggered sync for one tenant. The returned
// error is the outcome's error.
func (o *SweepOrchestrator) SyncTenant(
	ctx context.Context,
	tenantID string,
	lookback domain.Lookback,
) (*domain.SyncOutcome, error) {
	if !lookback.IsValid() {
		return nil, fmt.Errorf("%w: lookback %s", domain.ErrInvalidInput, lookback)
	}
	if err := o.preflight(); err != nil {
		return nil, err
	}

	profile, err := o.deps.Tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}

	outcome := o.runTenant(ctx, *profile, lookback, false, o.newID())
	return &outcome, outcome.Err
}

// Marker returns the tenant's sync marker.
func (o *SweepOrchestrator) Marker(ctx context.Context, tenantID string) (domain.SyncMarker, error) {
	return o.deps.Tenants.Marker(ctx, tenantID)
}

// Status reports the tenant's state.
func (o *SweepOrchestrator) Status(ctx context.Context, tenantID string) (*driving.SyncStatus, error) {
	profile, err := o.deps.Tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}

	status := &driving.SyncStatus{
		TenantID:        profile.ID,
		State:           domain.TenantIdle,
		AutoSyncEnabled: profile.AutoSyncEnabled,
		LastAutoSyncAt:  profile.LastAutoSyncAt,
	}
	if !profile.AutoSyncEnabled && !profile.HasCredential() {
		status.State = domain.TenantDisabled
	}

	o.mu.Lock()
	if ts, ok := o.states[tenantID]; ok {
		status.State = ts.state
		if ts.lastErr != nil {
			status.LastError = ts.lastErr.Error()
		}
	}
	o.mu.Unlock()

	return status, nil
}

func (o *SweepOrchestrator) preflight() error {
	if o.opts.Preflight != nil {
		if err := o.opts.Preflight(); err != nil {
			if errors.Is(err, domain.ErrMissingConfig) {
				return err
			}
			return fmt.Errorf("%w: %w", domain.ErrMissingConfig, err)
		}
	}
	d := o.deps
	if d.Tenants == nil || d.Leads == nil || d.Settings == nil || d.Cache == nil ||
		d.Refresher == nil || d.Mailbox == nil || d.Generator == nil || d.Sender == nil {
		return fmt.Errorf("%w: orchestrator dependencies not wired", domain.ErrMissingConfig)
	}
	return nil
}

// runTenant is the per-tenant procedure: lease, refresh, mailbox sync,
// auto-reply and, for scheduled runs, the completion marker.
func (o *SweepOrchestrator) runTenant(
	ctx context.Context,
	profile domain.TenantSyncProfile,
	lookback domain.Lookback,
	scheduled bool,
	holder string,
) domain.SyncOutcome {
	run := &tenantRun{o: o, profile: profile}
	out := domain.SyncOutcome{TenantID: profile.ID}

	if err := run.begin(scheduled); err != nil {
		out.Err = err
		return out
	}
	defer func() {
		if r := recover(); r != nil {
			run.fail(fmt.Errorf("tenant %s panicked: %v", profile.ID, r))
			panic(r)
		}
	}()

	if o.deps.Leases != nil {
		ok, err := o.deps.Leases.Acquire(ctx, profile.ID, holder, o.opts.LeaseTTL)
		if err != nil {
			out.Err = run.fail(fmt.Errorf("acquire sync lease: %w", err))
			return out
		}
		if !ok {
			out.Err = run.fail(fmt.Errorf("%w: tenant %s", domain.ErrSyncInProgress, profile.ID))
			return out
		}
		defer func() {
			if err := o.deps.Leases.Release(context.WithoutCancel(ctx), profile.ID, holder); err != nil {
				logger.Warn("sweep: release lease for tenant %s: %v", profile.ID, err)
			}
		}()
	}

	cred, err := o.refresh(ctx, profile)
	if err != nil {
		if domain.IsCredentialFatal(err) {
			out.CredentialRevoked = true
			out.Err = run.revoke(ctx, err)
			return out
		}
		out.Err = run.fail(err)
		return out
	}

	result, err := o.deps.Mailbox.SyncMailbox(ctx, driven.MailboxSyncRequest{
		TenantID:    profile.ID,
		AccessToken: cred.Token,
		Lookback:    lookback,
	})
	if err != nil {
		out.Err = run.fail(wrapIfNot(err, domain.ErrMailboxSync))
		return out
	}

	leads := result.NewLeads
	for i := range leads {
		if leads[i].TenantID == "" {
			leads[i].TenantID = profile.ID
		}
	}
	if err := o.deps.Leads.RecordIngested(ctx, leads); err != nil {
		out.Err = run.fail(fmt.Errorf("%w: record leads: %w", domain.ErrMailboxSync, err))
		return out
	}

	out.Success = true
	out.NewLeadCount = max(result.Count, len(leads))
	run.transition(domain.EventLeadsIngested)

	out.Replies = o.autoReply(ctx, profile, cred.Token, leads)
	run.transition(domain.EventRepliesSettled)
	run.setErr(nil)

	if scheduled {
		o.markSynced(ctx, profile)
	}

	logger.Info("sweep: tenant %s synced, %d new leads, %d replies sent, %d failed",
		profile.ID, out.NewLeadCount, out.Replies.Sent, out.Replies.Failed)
	return out
}

func (o *SweepOrchestrator) refresh(ctx context.Context, profile domain.TenantSyncProfile) (*domain.AccessCredential, error) {
	if !profile.HasCredential() {
		return nil, fmt.Errorf("%w: tenant %s", domain.ErrCredentialMissing, profile.ID)
	}

	cred, err := o.deps.Refresher.Refresh(ctx, profile.RefreshCredential)
	if err != nil {
		if domain.IsCredentialFatal(err) {
			return nil, err
		}
		return nil, wrapIfNot(err, domain.ErrTokenRefreshFailed)
	}

	if cred.RotatedRefresh != "" && cred.RotatedRefresh != profile.RefreshCredential {
		if err := o.deps.Tenants.UpdateRefreshCredential(ctx, profile.ID, cred.RotatedRefresh); err != nil {
			logger.Warn("sweep: store rotated credential for tenant %s: %v", profile.ID, err)
		}
	}
	return cred, nil
}

// autoReply never fails the tenant; per-lead failures live in the summary.
func (o *SweepOrchestrator) autoReply(
	ctx context.Context,
	profile domain.TenantSyncProfile,
	accessToken string,
	leads []domain.Lead,
) domain.ReplySummary {
	if len(leads) == 0 {
		return domain.ReplySummary{}
	}

	settings, err := o.deps.Settings.Get(ctx, profile.ID)
	if err != nil {
		logger.Warn("sweep: load auto-reply settings for tenant %s: %v", profile.ID, err)
		return domain.ReplySummary{}
	}

	summary, err := o.replies.Dispatch(ctx, profile, accessToken, settings, leads)
	if err != nil {
		logger.Warn("sweep: auto-reply for tenant %s: %v", profile.ID, err)
	}
	return summary
}

func (o *SweepOrchestrator) markSynced(ctx context.Context, profile domain.TenantSyncProfile) {
	err := o.deps.Tenants.MarkSynced(ctx, profile.ID, profile.LastAutoSyncAt, o.now())
	switch {
	case errors.Is(err, domain.ErrStaleMarker):
		logger.Warn("sweep: tenant %s marker moved by a concurrent sweep", profile.ID)
	case err != nil:
		logger.Warn("sweep: update marker for tenant %s: %v", profile.ID, err)
	}
}

// tenantRun drives one tenant's state machine for the duration of a run.
type tenantRun struct {
	o       *SweepOrchestrator
	profile domain.TenantSyncProfile
}

// begin moves the tenant to Syncing. A tenant already busy in this process
// is rejected. A disabled tenant is re-enabled when the store shows it was
// re-authorised since, or when the user triggers a sync explicitly.
func (r *tenantRun) begin(scheduled bool) error {
	o := r.o
	o.mu.Lock()
	defer o.mu.Unlock()

	ts, ok := o.states[r.profile.ID]
	if !ok {
		ts = &tenantStatus{state: domain.TenantIdle}
		o.states[r.profile.ID] = ts
	}
	if ts.state.IsBusy() {
		return fmt.Errorf("%w: tenant %s", domain.ErrSyncInProgress, r.profile.ID)
	}
	if ts.state == domain.TenantDisabled {
		if scheduled && !r.profile.AutoSyncEnabled {
			return fmt.Errorf("%w: tenant %s", domain.ErrCredentialRevoked, r.profile.ID)
		}
		ts.state, _ = ts.state.Next(domain.EventReenabled)
	}

	next, err := ts.state.Next(domain.EventSyncStarted)
	if err != nil {
		return err
	}
	ts.state = next
	return nil
}

func (r *tenantRun) transition(e domain.TenantEvent) {
	o := r.o
	o.mu.Lock()
	defer o.mu.Unlock()

	ts := o.states[r.profile.ID]
	next, err := ts.state.Next(e)
	if err != nil {
		logger.Warn("sweep: tenant %s: %v", r.profile.ID, err)
		return
	}
	ts.state = next
}

func (r *tenantRun) setErr(err error) {
	r.o.mu.Lock()
	defer r.o.mu.Unlock()
	r.o.states[r.profile.ID].lastErr = err
}

// fail records a transient failure; the tenant stays eligible.
func (r *tenantRun) fail(err error) error {
	logger.Warn("sweep: tenant %s failed: %v", r.profile.ID, err)
	r.transition(domain.EventSyncFailed)
	r.setErr(err)
	return err
}

// revoke disables auto-sync after a fatal credential error.
func (r *tenantRun) revoke(ctx context.Context, err error) error {
	logger.Warn("sweep: tenant %s credential unusable, disabling auto-sync: %v", r.profile.ID, err)
	if dErr := r.o.deps.Tenants.DisableAutoSync(context.WithoutCancel(ctx), r.profile.ID); dErr != nil {
		logger.Error("sweep: disable auto-sync for tenant %s: %v", r.profile.ID, dErr)
		err = errors.Join(err, fmt.Errorf("disable auto-sync: %w", dErr))
	}
	r.transition(domain.EventCredentialRevoked)
	r.setErr(err)
	return err
}
