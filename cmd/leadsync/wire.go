package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/leadsync/internal/adapters/driven/ai"
	"github.com/custodia-labs/leadsync/internal/adapters/driven/auth"
	"github.com/custodia-labs/leadsync/internal/adapters/driven/collab"
	"github.com/custodia-labs/leadsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/leadsync/internal/adapters/driven/gmail"
	"github.com/custodia-labs/leadsync/internal/adapters/driven/oauth"
	"github.com/custodia-labs/leadsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/leadsync/internal/adapters/driven/storage/sqlstore"
	"github.com/custodia-labs/leadsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/leadsync/internal/config"
	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
	"github.com/custodia-labs/leadsync/internal/core/services"
	"github.com/custodia-labs/leadsync/internal/logger"
)

// buildServices wires the server side. Collaborators that are not configured
// are left nil; the sweep preflight reports them before any tenant is touched.
func buildServices(ctx context.Context, cfg *config.Config) (*cli.Services, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL", domain.ErrMissingConfig)
	}
	store, err := openStorage(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	logger.Debug("store opened (%s)", store.Driver())

	provider := oauth.ProviderConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		AuthURL:      cfg.AuthURL,
		TokenURL:     cfg.TokenURL,
	}

	limiter := collab.NewRateLimiter(collab.RateLimitConfig{
		RequestsPerSecond: cfg.CollabRate,
		BurstSize:         cfg.CollabBurst,
	})
	collabOpts := func(url string) collab.Options {
		return collab.Options{URL: url, APIKey: cfg.CollabAPIKey, Limiter: limiter}
	}

	var mailbox driven.MailboxSyncClient
	switch {
	case cfg.MailboxSync == config.MailboxGmail:
		mailbox = gmail.NewMailbox(store.LeadStore(), nil, gmail.WithQuery(cfg.GmailQuery), gmail.WithLimiter(limiter))
	case cfg.MailboxSyncURL != "":
		mailbox = collab.NewMailboxClient(collabOpts(cfg.MailboxSyncURL))
	}

	prompts, err := file.NewPromptStore(cfg.PromptsDir)
	if err != nil {
		store.Close()
		return nil, err
	}
	generator, err := ai.CreateReplyGenerator(generatorSettings(cfg), prompts, limiter)
	if err != nil {
		logger.Debug("reply generator unavailable: %v", err)
		generator = nil
	}

	var sender driven.ReplySender
	switch {
	case cfg.ReplySender == config.SenderGmail:
		sender = gmail.NewSender()
	case cfg.ReplySenderURL != "":
		sender = collab.NewSenderClient(collabOpts(cfg.ReplySenderURL))
	}

	var settings driven.AutoReplySettingsStore = store.SettingsStore()
	var watchers []func(context.Context) error
	if cfg.SettingsFile != "" {
		fileSettings, err := file.NewSettingsStore(cfg.SettingsFile)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("loading %s: %w", cfg.SettingsFile, err)
		}
		settings = fileSettings
		watchers = append(watchers, fileSettings.Watch)
	}

	claims := store.ClaimCache(cfg.ClaimTTL)
	orchestrator := services.NewSweepOrchestrator(services.SweepDeps{
		Tenants:   store.TenantStore(),
		Leads:     store.LeadStore(),
		Settings:  settings,
		Cache:     claims,
		Refresher: oauth.NewRefresher(provider),
		Mailbox:   mailbox,
		Generator: generator,
		Sender:    sender,
		Leases:    store.LeaseStore(),
	}, services.SweepOptions{
		StalenessWindow:  cfg.StalenessWindow,
		BatchConcurrency: cfg.BatchConcurrency,
		BatchPause:       cfg.BatchPause,
		LeaseTTL:         cfg.LeaseTTL,
		Preflight:        cfg.ValidateServer,
	})

	schedulerConfig := cfg.SchedulerConfig()
	svc := &cli.Services{
		Sweeper:         orchestrator,
		Syncer:          orchestrator,
		Controls:        orchestrator,
		Tenants:         store.TenantStore(),
		Leads:           store.LeadStore(),
		Scheduler:       services.NewScheduler(schedulerConfig, store.SchedulerStore(), orchestrator, claims),
		SchedulerConfig: schedulerConfig,
		Schedule:        store.SchedulerStore(),
		Authorizer:      mailboxAuthorizer{cfg: provider},
		Watchers:        watchers,
		HTTPAddr:        cfg.HTTPAddr,
		SweepSecret:     cfg.SweepSecret,
		RedirectPort:    cfg.RedirectPort,
		Close:           store.Close,
	}

	if cfg.JWTSecret != "" {
		issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
		if err != nil {
			store.Close()
			return nil, err
		}
		svc.Tokens = issuer
	}
	return svc, nil
}

// storage is the set of stores the server runs on. Both the SQL store and
// the in-memory store provide it.
type storage interface {
	Driver() string
	Close() error
	TenantStore() driven.TenantStore
	LeadStore() driven.LeadStore
	SettingsStore() driven.AutoReplySettingsStore
	LeaseStore() driven.SyncLeaseStore
	SchedulerStore() driven.SchedulerStore
	ClaimCache(ttl time.Duration) driven.ProcessedLeadCache
}

func openStorage(ctx context.Context, dsn string) (storage, error) {
	if strings.TrimSpace(dsn) == config.MemoryDatabase {
		logger.Warn("DATABASE_URL=%s: tenants and leads are lost when the process exits", config.MemoryDatabase)
		return memory.NewStore(), nil
	}
	store, err := sqlstore.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// generatorSettings picks the URL and key for the configured backend.
func generatorSettings(cfg *config.Config) ai.GeneratorSettings {
	s := ai.GeneratorSettings{
		Backend: ai.Backend(cfg.ReplyGenerator),
		Model:   cfg.GeneratorModel,
		Timeout: cfg.GeneratorTimeout,
	}
	switch s.Backend {
	case ai.BackendOllama:
		s.URL = cfg.OllamaURL
	case ai.BackendOpenAI:
		s.URL = cfg.OpenAIBaseURL
		s.APIKey = cfg.OpenAIKey
	default:
		s.URL = cfg.ReplyGeneratorURL
		s.APIKey = cfg.CollabAPIKey
	}
	return s
}

// mailboxAuthorizer adapts the provider config to the CLI's connect flow.
type mailboxAuthorizer struct {
	cfg oauth.ProviderConfig
}

func (a mailboxAuthorizer) AuthCodeURL(redirectURL, state string) (string, string) {
	req := a.cfg.AuthCodeURL(redirectURL, state)
	return req.URL, req.Verifier
}

func (a mailboxAuthorizer) ExchangeCode(ctx context.Context, redirectURL, code, verifier string) (string, error) {
	if err := a.cfg.Validate(); err != nil {
		return "", err
	}
	return a.cfg.ExchangeCode(ctx, redirectURL, code, verifier)
}
