package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/leadsync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler and the HTTP API",
	Long: `Runs until interrupted:

  - the scheduler, which sweeps every SWEEP_INTERVAL and prunes expired
    reply claims (disable with SCHEDULER_ENABLED=false when an external
    scheduler calls POST /api/sweep instead)
  - the HTTP API used by 'leadsync session' and other clients
  - the auto-reply settings file watcher, when AUTO_REPLY_SETTINGS_FILE is set

Requires JWT_SECRET for client tokens. POST /api/sweep is only served when
SWEEP_SECRET is set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	switch {
	case svc.Sweeper == nil || svc.Syncer == nil || svc.Controls == nil:
		return errors.New("sync services not configured")
	case svc.Leads == nil:
		return errors.New("lead store not configured")
	case svc.Tokens == nil:
		return fmt.Errorf("%w: JWT_SECRET", domain.ErrMissingConfig)
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Sweeper:     svc.Sweeper,
		Syncer:      svc.Syncer,
		Controls:    svc.Controls,
		Leads:       svc.Leads,
		Tokens:      svc.Tokens,
		SweepSecret: svc.SweepSecret,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP API: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if svc.SchedulerConfig.Enabled && svc.Scheduler != nil {
		go func() {
			if err := svc.Scheduler.Start(ctx); err != nil && ctx.Err() == nil {
				// Scheduler errors must not take the API down.
				logger.Error("scheduler stopped: %v", err)
			}
		}()
		defer func() {
			if err := svc.Scheduler.Stop(); err != nil {
				logger.Warn("scheduler stop: %v", err)
			}
		}()
	} else {
		logger.Info("In-process scheduler disabled; sweeps run only via POST /api/sweep or 'leadsync sweep'")
	}

	for _, watch := range svc.Watchers {
		go runWatcher(ctx, watch)
	}

	addr := svc.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	if svc.SweepSecret == "" {
		logger.Warn("SWEEP_SECRET not set; POST /api/sweep is disabled")
	}
	logger.Info("HTTP API listening on %s", addr)

	if err := server.Run(ctx, addr); err != nil {
		return fmt.Errorf("HTTP API: %w", err)
	}
	logger.Info("Shut down")
	return nil
}

func runWatcher(ctx context.Context, watch func(context.Context) error) {
	if err := watch(ctx); err != nil && ctx.Err() == nil {
		logger.Warn("watcher stopped: %v", err)
	}
}
