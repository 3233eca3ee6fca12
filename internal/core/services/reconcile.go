package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
	"github.com/custodia-labs/leadsync/internal/logger"
)

// DefaultPollInterval is how often a session checks the server marker.
const DefaultPollInterval = 2 * time.Minute

// ErrSessionStopped is returned when a stopped session is reused.
var ErrSessionStopped = errors.New("session stopped")

// ReconcileOptions tune a ReconciliationLoop. Zero values select defaults.
type ReconcileOptions struct {
	PollInterval time.Duration

	// Lookback is used by the initial sync. Defaults to one day.
	Lookback domain.Lookback

	// OnState observes state changes. Called without locks held.
	OnState func(domain.SessionState)
}

// ReconciliationLoop keeps a client session in step with the server-side
// sweep. On start it triggers one immediate sync, then polls the tenant's
// marker and refreshes the local lead view whenever the marker advances.
type ReconciliationLoop struct {
	backend  driven.SessionBackend
	view     driven.LeadView
	notifier driven.SessionNotifier
	cache    driven.ProcessedLeadCache
	opts     ReconcileOptions

	mu         sync.Mutex
	state      domain.SessionState
	tenantID   string
	synced     bool
	baselined  bool
	lastMarker *time.Time
	task       *PeriodicTask
}

// NewReconciliationLoop creates a loop. cache may be nil when the session
// keeps no processed-lead cache of its own.
func NewReconciliationLoop(
	backend driven.SessionBackend,
	view driven.LeadView,
	notifier driven.SessionNotifier,
	cache driven.ProcessedLeadCache,
	opts ReconcileOptions,
) *ReconciliationLoop {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if !opts.Lookback.IsValid() {
		opts.Lookback = domain.AutoSyncLookback
	}
	return &ReconciliationLoop{
		backend:  backend,
		view:     view,
		notifier: notifier,
		cache:    cache,
		opts:     opts,
		state:    domain.SessionIdle,
	}
}

// Start begins the session for tenantID. Starting with a different tenant
// than the running one behaves like ChangeTenant.
func (l *ReconciliationLoop) Start(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenant id is required", domain.ErrInvalidInput)
	}

	l.mu.Lock()
	if l.state == domain.SessionStopped {
		l.mu.Unlock()
		return ErrSessionStopped
	}
	if l.task != nil {
		current := l.tenantID
		l.mu.Unlock()
		if current == tenantID {
			return nil
		}
		return l.ChangeTenant(ctx, tenantID)
	}
	// StartPeriodic only spawns the goroutine, so it is safe under the lock.
	l.tenantID = tenantID
	l.task = StartPeriodic(ctx, l.opts.PollInterval, true, l.tick)
	l.mu.Unlock()

	logger.Debug("session: started for tenant %s", tenantID)
	return nil
}

// ChangeTenant switches the session to another tenant. Every local cache is
// reset first so nothing leaks across tenants.
func (l *ReconciliationLoop) ChangeTenant(ctx context.Context, tenantID string) error {
	l.mu.Lock()
	if l.state == domain.SessionStopped {
		l.mu.Unlock()
		return ErrSessionStopped
	}
	task, previous := l.task, l.tenantID
	l.task = nil
	l.mu.Unlock()

	if task != nil {
		task.Stop()
	}

	l.resetLocal(ctx, previous)
	l.setState(domain.SessionIdle)

	logger.Debug("session: tenant changed from %s to %s", previous, tenantID)
	return l.Start(ctx, tenantID)
}

// Stop ends the session and releases its timer. The loop cannot be
// restarted afterwards.
func (l *ReconciliationLoop) Stop() {
	l.mu.Lock()
	task := l.task
	l.task = nil
	wasStopped := l.state == domain.SessionStopped
	l.state = domain.SessionStopped
	l.mu.Unlock()

	if task != nil {
		task.Stop()
	}
	if !wasStopped && l.opts.OnState != nil {
		l.opts.OnState(domain.SessionStopped)
	}
}

// RefreshNow asks for an immediate poll.
func (l *ReconciliationLoop) RefreshNow() {
	l.mu.Lock()
	task := l.task
	l.mu.Unlock()
	if task != nil {
		task.Trigger()
	}
}

// State returns the session state.
func (l *ReconciliationLoop) State() domain.SessionState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// TenantID returns the session's tenant.
func (l *ReconciliationLoop) TenantID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tenantID
}

func (l *ReconciliationLoop) tick(ctx context.Context) {
	l.mu.Lock()
	tenantID, synced := l.tenantID, l.synced
	l.mu.Unlock()

	if !synced {
		l.initialSync(ctx, tenantID)
	}
	if ctx.Err() != nil {
		return
	}
	l.poll(ctx, tenantID)
}

// initialSync runs once per tenant per client lifetime. A soft failure is
// retried on the next tick; a re-authentication failure is not.
func (l *ReconciliationLoop) initialSync(ctx context.Context, tenantID string) {
	l.setState(domain.SessionInitialSyncInFlight)

	outcome, err := l.backend.SyncTenant(ctx, tenantID, l.opts.Lookback)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		l.notify(domain.NotificationFor("Sync", err))
		if domain.IsReauthRequired(err) {
			l.markSynced()
		}
		l.setState(domain.SessionIdle)
		return
	}

	l.markSynced()
	if err := l.view.Refresh(ctx, tenantID); err != nil {
		l.notify(domain.NotificationFor("Refresh", err))
	}
	if outcome != nil && outcome.NewLeadCount > 0 {
		l.notify(domain.Notification{
			Kind:    domain.NotifyInfo,
			Message: fmt.Sprintf("Synced %d new leads", outcome.NewLeadCount),
		})
	}
	l.setState(domain.SessionIdle)
}

func (l *ReconciliationLoop) poll(ctx context.Context, tenantID string) {
	marker, err := l.backend.Marker(ctx, tenantID)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		l.notify(domain.NotificationFor("Sync status", err))
		return
	}
	if !marker.AutoSyncEnabled {
		l.setState(domain.SessionIdle)
		return
	}

	l.mu.Lock()
	advanced := l.baselined && marker.AdvancedSince(l.lastMarker)
	if !l.baselined || advanced {
		l.lastMarker = marker.LastAutoSyncAt
		l.baselined = true
	}
	l.mu.Unlock()

	if !advanced {
		l.setState(domain.SessionPolling)
		return
	}

	l.setState(domain.SessionRefreshTriggered)
	if err := l.view.Refresh(ctx, tenantID); err != nil {
		l.notify(domain.NotificationFor("Refresh", err))
	}
	l.setState(domain.SessionPolling)
}

func (l *ReconciliationLoop) resetLocal(ctx context.Context, tenantID string) {
	l.mu.Lock()
	l.synced = false
	l.baselined = false
	l.lastMarker = nil
	l.mu.Unlock()

	l.view.Clear()
	if l.cache != nil && tenantID != "" {
		if err := l.cache.Reset(ctx, tenantID); err != nil {
			logger.Warn("session: reset processed leads for tenant %s: %v", tenantID, err)
		}
	}
}

func (l *ReconciliationLoop) markSynced() {
	l.mu.Lock()
	l.synced = true
	l.mu.Unlock()
}

// setState never moves a stopped session.
func (l *ReconciliationLoop) setState(s domain.SessionState) {
	l.mu.Lock()
	if l.state == s || (l.state == domain.SessionStopped && s != domain.SessionStopped) {
		l.mu.Unlock()
		return
	}
	l.state = s
	l.mu.Unlock()

	if l.opts.OnState != nil {
		l.opts.OnState(s)
	}
}

func (l *ReconciliationLoop) notify(n domain.Notification) {
	if n.Kind != domain.NotifyInfo {
		logger.Debug("session: %s: %v", n.Message, n.Err)
	}
	if l.notifier != nil {
		l.notifier.Notify(n)
	}
}
