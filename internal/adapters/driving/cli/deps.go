package cli

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
	"github.com/custodia-labs/leadsync/internal/core/ports/driving"
	"github.com/custodia-labs/leadsync/internal/logger"
)

// TokenIssuer issues and verifies tenant session tokens.
type TokenIssuer interface {
	Issue(tenantID string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// MailboxAuthorizer runs the provider consent flow that yields a tenant's
// refresh credential.
type MailboxAuthorizer interface {
	AuthCodeURL(redirectURL, state string) (authURL, verifier string)
	ExchangeCode(ctx context.Context, redirectURL, code, verifier string) (string, error)
}

// Services holds the server-side ports. They are built on first use so
// client commands never touch the database.
type Services struct {
	Sweeper  driving.Sweeper
	Syncer   driving.TenantSyncer
	Controls driving.AutoReplyController

	Tenants driven.TenantStore
	Leads   driven.LeadStore

	Scheduler       driving.Scheduler
	SchedulerConfig domain.SchedulerConfig
	Schedule        driven.SchedulerStore

	// Tokens is nil when JWT_SECRET is not set.
	Tokens     TokenIssuer
	Authorizer MailboxAuthorizer

	// Watchers run for the lifetime of 'serve'.
	Watchers []func(ctx context.Context) error

	HTTPAddr     string
	SweepSecret  string
	RedirectPort int

	Close func() error
}

var (
	servicesLoader func(ctx context.Context) (*Services, error)
	services       *Services

	sessionStore driven.ClientSessionStore
)

// SetServicesLoader sets the function that builds the server-side services.
func SetServicesLoader(fn func(ctx context.Context) (*Services, error)) {
	servicesLoader = fn
}

// SetSessionStore sets where 'login' keeps the client session.
func SetSessionStore(store driven.ClientSessionStore) {
	sessionStore = store
}

func loadServices(ctx context.Context) (*Services, error) {
	if services != nil {
		return services, nil
	}
	if servicesLoader == nil {
		return nil, errors.New("server services not configured")
	}
	svc, err := servicesLoader(ctx)
	if err != nil {
		return nil, err
	}
	services = svc
	return svc, nil
}

func closeServices() {
	if services == nil || services.Close == nil {
		return
	}
	if err := services.Close(); err != nil {
		logger.Warn("closing services: %v", err)
	}
	services = nil
}
