// Command leadsync syncs tenant mailboxes and auto-replies to new leads.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/leadsync/internal/adapters/driven/auth"
	"github.com/custodia-labs/leadsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/leadsync/internal/config"
	"github.com/custodia-labs/leadsync/internal/logger"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}

	cli.SetVersion(version)
	cli.SetSessionStore(auth.NewKeyringSessionStore(cfg.Profile))
	cli.SetSessionPollInterval(cfg.PollInterval)
	cli.SetServicesLoader(func(ctx context.Context) (*cli.Services, error) {
		return buildServices(ctx, cfg)
	})

	// cobra reports command errors itself.
	return cli.Execute()
}
