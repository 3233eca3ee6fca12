package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/leadsync/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/leadsync/internal/adapters/driving/tui"
	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
	coreservices "github.com/custodia-labs/leadsync/internal/core/services"
	"github.com/custodia-labs/leadsync/internal/logger"
)

// Flags for session.
var (
	sessionPollInterval = coreservices.DefaultPollInterval
	sessionLookback     string
	sessionHeadless     bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Keep a live view of the tenant's leads",
	Long: `Starts a client session against the server stored by 'leadsync login'.

The session runs one sync straight away, then polls the server's auto-sync
marker and reloads the lead list whenever a sweep has processed the tenant.
Sync failures are shown as notifications; a revoked or rejected mailbox
credential asks you to reconnect.

In a terminal this opens an interactive view:
  s        - Sync now with the selected lookback
  l        - Cycle lookback (1d, 3d, 7d, 30d)
  r        - Check for updates now
  ↑/k, ↓/j - Navigate leads
  ?        - Toggle help
  q        - Quit

Without a terminal, or with --headless, notifications go to the log.`,
	Args: cobra.NoArgs,
	RunE: runSession,
}

func init() {
	sessionCmd.Flags().DurationVar(&sessionPollInterval, "poll", sessionPollInterval, "How often to check for server-side syncs")
	sessionCmd.Flags().StringVar(&sessionLookback, "lookback", "1d", "Lookback for the initial sync")
	sessionCmd.Flags().BoolVar(&sessionHeadless, "headless", false, "Log notifications instead of opening the interactive view")
	rootCmd.AddCommand(sessionCmd)
}

// SetSessionPollInterval sets the default marker polling interval.
func SetSessionPollInterval(d time.Duration) {
	if d > 0 {
		sessionPollInterval = d
	}
}

func runSession(cmd *cobra.Command, _ []string) error {
	if sessionStore == nil {
		return errors.New("session store not configured")
	}
	lookback, err := domain.ParseLookback(sessionLookback)
	if err != nil {
		return err
	}

	session, err := sessionStore.Load()
	if err != nil {
		if errors.Is(err, domain.ErrNotLoggedIn) {
			return errors.New("not logged in; run: leadsync login --server URL --token TOKEN")
		}
		return fmt.Errorf("loading session: %w", err)
	}
	client, err := apiclient.New(*session)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := coreservices.ReconcileOptions{PollInterval: sessionPollInterval, Lookback: lookback}
	if sessionHeadless || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runSessionHeadless(ctx, cmd, client, session, opts)
	}
	return runSessionTUI(ctx, client, session, opts)
}

func runSessionTUI(
	ctx context.Context,
	client *apiclient.Client,
	session *driven.ClientSession,
	opts coreservices.ReconcileOptions,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	// Keep the TUI's alternate screen free of log output.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	events := tui.NewEvents()
	view := apiclient.NewLeadCache(client, 0, events.LeadsChanged)
	opts.OnState = events.StateChanged
	loop := coreservices.NewReconciliationLoop(client, view, events, nil, opts)

	if err := loop.Start(ctx, session.TenantID); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer loop.Stop()
	defer events.Close()

	app, err := tui.NewApp(&tui.Ports{Session: loop, Leads: view, Syncer: client, Events: events})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func runSessionHeadless(
	ctx context.Context,
	cmd *cobra.Command,
	client *apiclient.Client,
	session *driven.ClientSession,
	opts coreservices.ReconcileOptions,
) error {
	view := apiclient.NewLeadCache(client, 0, func(leads []domain.Lead) {
		logger.Info("Leads updated: %d", len(leads))
	})
	opts.OnState = func(s domain.SessionState) {
		logger.Debug("session state: %s", s)
	}
	loop := coreservices.NewReconciliationLoop(client, view, logNotifier{}, nil, opts)

	if err := loop.Start(ctx, session.TenantID); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer loop.Stop()

	cmd.Printf("Session started for tenant %s on %s. Press Ctrl+C to stop.\n", session.TenantID, session.ServerURL)
	<-ctx.Done()
	return nil
}

// logNotifier writes session notifications to the log.
type logNotifier struct{}

func (logNotifier) Notify(n domain.Notification) {
	switch n.Kind {
	case domain.NotifyReauthRequired:
		logger.Error("%s; run: leadsync tenant connect", n.Message)
	case domain.NotifySoftError:
		logger.Warn("%s: %v", n.Message, n.Err)
	default:
		logger.Info("%s", n.Message)
	}
}
