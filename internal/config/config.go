// Package config loads leadsync's process configuration from the
// environment and an optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// Reply sender backends.
const (
	SenderHTTP  = "http"
	SenderGmail = "gmail"
)

// MemoryDatabase keeps all state in process memory. Only useful for a
// single `serve` process; nothing survives a restart.
const MemoryDatabase = "memory:"

// Mailbox ingestion backends.
const (
	MailboxHTTP  = "http"
	MailboxGmail = "gmail"
)

// Config is the server-side configuration.
type Config struct {
	// OAuth provider
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	AuthURL      string `env:"OAUTH_AUTH_URL"`
	TokenURL     string `env:"OAUTH_TOKEN_URL"`
	RedirectPort int    `env:"OAUTH_REDIRECT_PORT" envDefault:"0"`

	// Database: postgres://..., sqlite://path, a bare file path or memory:
	DatabaseURL string `env:"DATABASE_URL"`

	// Mailbox ingestion: http (collaborator) or gmail (direct, unclassified)
	MailboxSync string `env:"MAILBOX_SYNC" envDefault:"http"`
	GmailQuery  string `env:"GMAIL_LEAD_QUERY"`

	// Collaborators
	MailboxSyncURL    string  `env:"MAILBOX_SYNC_URL"`
	ReplyGeneratorURL string  `env:"REPLY_GENERATOR_URL"`
	ReplySenderURL    string  `env:"REPLY_SENDER_URL"`
	CollabAPIKey      string  `env:"COLLAB_API_KEY"`
	CollabRate        float64 `env:"COLLAB_RATE_LIMIT" envDefault:"5"`
	CollabBurst       int     `env:"COLLAB_RATE_BURST" envDefault:"10"`

	// Reply generation: http, ollama or openai
	ReplyGenerator   string        `env:"REPLY_GENERATOR" envDefault:"http"`
	GeneratorModel   string        `env:"GENERATOR_MODEL"`
	OllamaURL        string        `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OpenAIKey        string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL"`
	GeneratorTimeout time.Duration `env:"GENERATOR_TIMEOUT" envDefault:"120s"`
	PromptsDir       string        `env:"PROMPTS_DIR"`

	// Reply sending: http or gmail
	ReplySender string `env:"REPLY_SENDER" envDefault:"http"`

	// Sweep
	StalenessWindow  time.Duration `env:"STALENESS_WINDOW" envDefault:"4m"`
	BatchConcurrency int           `env:"BATCH_CONCURRENCY" envDefault:"3"`
	BatchPause       time.Duration `env:"BATCH_PAUSE" envDefault:"1s"`
	LeaseTTL         time.Duration `env:"LEASE_TTL" envDefault:"10m"`
	ClaimTTL         time.Duration `env:"CLAIM_TTL" envDefault:"24h"`

	// In-process scheduler
	SchedulerEnabled     bool          `env:"SCHEDULER_ENABLED" envDefault:"true"`
	SchedulerTick        time.Duration `env:"SCHEDULER_TICK" envDefault:"30s"`
	SweepInterval        time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	ClaimCleanupInterval time.Duration `env:"CLAIM_CLEANUP_INTERVAL" envDefault:"1h"`

	// HTTP API
	HTTPAddr    string        `env:"HTTP_ADDR" envDefault:":8080"`
	JWTSecret   string        `env:"JWT_SECRET"`
	JWTTTL      time.Duration `env:"JWT_TTL" envDefault:"720h"`
	SweepSecret string        `env:"SWEEP_SECRET"`

	// SettingsFile switches auto-reply settings from the database to a
	// hot-reloaded TOML file.
	SettingsFile string `env:"AUTO_REPLY_SETTINGS_FILE"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Client session
	PollInterval time.Duration `env:"SESSION_POLL_INTERVAL" envDefault:"2m"`
	Profile      string        `env:"LEADSYNC_PROFILE" envDefault:"default"`
}

// Load reads .env files (missing files are ignored) and the environment.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)
	return parse(env.Options{})
}

// FromMap parses cfg from vars instead of the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks what every command needs.
func (c *Config) Validate() error {
	switch c.ReplyGenerator {
	case "http", "ollama", "openai":
	default:
		return fmt.Errorf("%w: REPLY_GENERATOR must be http, ollama or openai", domain.ErrInvalidInput)
	}
	switch c.MailboxSync {
	case MailboxHTTP, MailboxGmail:
	default:
		return fmt.Errorf("%w: MAILBOX_SYNC must be http or gmail", domain.ErrInvalidInput)
	}
	switch c.ReplySender {
	case SenderHTTP, SenderGmail:
	default:
		return fmt.Errorf("%w: REPLY_SENDER must be http or gmail", domain.ErrInvalidInput)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("%w: BATCH_CONCURRENCY must be at least 1", domain.ErrInvalidInput)
	}
	if c.CollabRate <= 0 || c.CollabBurst < 1 {
		return fmt.Errorf("%w: collaborator rate limit must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// ValidateServer checks what sweeping needs. It reports every missing
// variable at once.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}

	var missing []string
	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	require("GOOGLE_CLIENT_ID", c.ClientID)
	require("GOOGLE_CLIENT_SECRET", c.ClientSecret)
	require("DATABASE_URL", c.DatabaseURL)
	if c.MailboxSync == MailboxHTTP {
		require("MAILBOX_SYNC_URL", c.MailboxSyncURL)
	}
	if c.ReplyGenerator == "http" {
		require("REPLY_GENERATOR_URL", c.ReplyGeneratorURL)
	}
	if c.ReplyGenerator == "openai" {
		require("OPENAI_API_KEY", c.OpenAIKey)
	}
	if c.ReplySender == SenderHTTP {
		require("REPLY_SENDER_URL", c.ReplySenderURL)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// ValidateAPI checks what serving the HTTP API needs on top of sweeping.
func (c *Config) ValidateAPI() error {
	if err := c.ValidateServer(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET", domain.ErrMissingConfig)
	}
	return nil
}

// SchedulerConfig returns the in-process scheduler settings.
func (c *Config) SchedulerConfig() domain.SchedulerConfig {
	cfg := domain.DefaultSchedulerConfig()
	cfg.Enabled = c.SchedulerEnabled
	if c.SchedulerTick > 0 {
		cfg.TickInterval = c.SchedulerTick
	}
	if c.SweepInterval > 0 {
		cfg.TaskConfigs[domain.TaskIDAutoSyncSweep] = domain.TaskConfig{Enabled: true, Interval: c.SweepInterval}
	}
	if c.ClaimCleanupInterval > 0 {
		cfg.TaskConfigs[domain.TaskIDClaimCleanup] = domain.TaskConfig{Enabled: true, Interval: c.ClaimCleanupInterval}
	}
	return cfg
}
