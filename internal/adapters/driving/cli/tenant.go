package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/leadsync/internal/adapters/driving/oauth"
	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/logger"
)

// connectTimeout bounds how long 'tenant connect' waits for consent.
const connectTimeout = 5 * time.Minute

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenant sync profiles",
	Long: `Add tenants, connect their mailboxes and switch scheduled syncs on or off.

Examples:
  leadsync tenant add acme --mailbox sales@acme.example --timezone Europe/London
  leadsync tenant connect acme
  leadsync tenant auto-sync acme on
  leadsync tenant show acme`,
}

var tenantAddCmd = &cobra.Command{
	Use:   "add [tenant-id]",
	Short: "Add or update a tenant",
	Args:  cobra.ExactArgs(1),
	RunE:  runTenantAdd,
}

var tenantShowCmd = &cobra.Command{
	Use:   "show [tenant-id]",
	Short: "Show a tenant's sync status",
	Args:  cobra.ExactArgs(1),
	RunE:  runTenantShow,
}

var tenantConnectCmd = &cobra.Command{
	Use:   "connect [tenant-id]",
	Short: "Connect a tenant's mailbox",
	Long: `Opens the provider consent page and stores the refresh credential it
returns. Run this again to reconnect after a credential is revoked.`,
	Args: cobra.ExactArgs(1),
	RunE: runTenantConnect,
}

var tenantAutoSyncCmd = &cobra.Command{
	Use:   "auto-sync [tenant-id] [on|off]",
	Short: "Turn scheduled syncs on or off",
	Args:  cobra.ExactArgs(2),
	RunE:  runTenantAutoSync,
}

// Flags.
var (
	tenantMailbox   string
	tenantTimeZone  string
	connectNoBrowse bool
)

func init() {
	tenantAddCmd.Flags().StringVar(&tenantMailbox, "mailbox", "", "The tenant's own mailbox address")
	tenantAddCmd.Flags().StringVar(&tenantTimeZone, "timezone", "", "IANA time zone for business hours and daily caps (default UTC)")
	tenantConnectCmd.Flags().BoolVar(&connectNoBrowse, "no-browser", false, "Print the consent URL without opening a browser")

	tenantCmd.AddCommand(tenantAddCmd)
	tenantCmd.AddCommand(tenantShowCmd)
	tenantCmd.AddCommand(tenantConnectCmd)
	tenantCmd.AddCommand(tenantAutoSyncCmd)
	rootCmd.AddCommand(tenantCmd)
}

func runTenantAdd(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	if svc.Tenants == nil {
		return errors.New("tenant store not configured")
	}

	ctx := cmd.Context()
	tenantID := args[0]

	profile := domain.TenantSyncProfile{ID: tenantID}
	existing, err := svc.Tenants.Get(ctx, tenantID)
	switch {
	case err == nil:
		profile = *existing
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("failed to load tenant: %w", err)
	}

	if cmd.Flags().Changed("mailbox") {
		profile.MailboxAddress = tenantMailbox
	}
	if cmd.Flags().Changed("timezone") {
		if _, err := time.LoadLocation(tenantTimeZone); err != nil {
			return fmt.Errorf("%w: time zone %q", domain.ErrInvalidInput, tenantTimeZone)
		}
		profile.TimeZone = tenantTimeZone
	}

	if err := profile.Validate(); err != nil {
		return err
	}
	if err := svc.Tenants.Save(ctx, profile); err != nil {
		return fmt.Errorf("failed to save tenant: %w", err)
	}

	if existing != nil {
		cmd.Printf("Updated tenant %s.\n", tenantID)
		return nil
	}
	cmd.Printf("Added tenant %s.\n", tenantID)
	cmd.Printf("Connect its mailbox with: leadsync tenant connect %s\n", tenantID)
	return nil
}

func runTenantShow(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	if svc.Syncer == nil {
		return errors.New("sync service not configured")
	}

	status, err := svc.Syncer.Status(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	cmd.Printf("Tenant: %s\n", status.TenantID)
	cmd.Printf("  State:      %s\n", status.State)
	cmd.Printf("  Auto-sync:  %s\n", onOff(status.AutoSyncEnabled))
	if status.LastAutoSyncAt != nil {
		cmd.Printf("  Last sync:  %s\n", status.LastAutoSyncAt.Local().Format(time.RFC3339))
	} else {
		cmd.Println("  Last sync:  never")
	}
	if status.LastError != "" {
		cmd.Printf("  Last error: %s\n", status.LastError)
	}
	return nil
}

func runTenantConnect(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	switch {
	case svc.Authorizer == nil:
		return errors.New("mailbox authorizer not configured")
	case svc.Tenants == nil:
		return errors.New("tenant store not configured")
	}

	ctx := cmd.Context()
	tenantID := args[0]
	if _, err := svc.Tenants.Get(ctx, tenantID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("tenant %s not found; add it with: leadsync tenant add %s", tenantID, tenantID)
		}
		return fmt.Errorf("failed to load tenant: %w", err)
	}

	state, err := oauth.NewState()
	if err != nil {
		return err
	}
	callback := oauth.NewCallbackServer(svc.RedirectPort, state)
	if err := callback.Start(); err != nil {
		return fmt.Errorf("starting callback server: %w", err)
	}
	defer callback.Stop() //nolint:errcheck

	redirectURI := callback.RedirectURI()
	authURL, verifier := svc.Authorizer.AuthCodeURL(redirectURI, state)

	cmd.Println("Open this URL to connect the mailbox:")
	cmd.Println()
	cmd.Printf("  %s\n", authURL)
	cmd.Println()
	if !connectNoBrowse {
		if err := oauth.OpenBrowser(authURL); err != nil {
			logger.Debug("opening browser: %v", err)
		}
	}
	cmd.Println("Waiting for authorisation...")

	waitCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	code, err := callback.WaitForCode(waitCtx)
	if err != nil {
		return fmt.Errorf("authorisation failed: %w", err)
	}

	credential, err := svc.Authorizer.ExchangeCode(ctx, redirectURI, code, verifier)
	if err != nil {
		return err
	}
	if err := svc.Tenants.UpdateRefreshCredential(ctx, tenantID, credential); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	cmd.Printf("Mailbox connected for tenant %s.\n", tenantID)
	cmd.Printf("Enable scheduled syncs with: leadsync tenant auto-sync %s on\n", tenantID)
	return nil
}

func runTenantAutoSync(cmd *cobra.Command, args []string) error {
	enabled, err := parseSwitch(args[1])
	if err != nil {
		return err
	}

	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	if svc.Controls == nil {
		return errors.New("auto-reply controls not configured")
	}

	if err := svc.Controls.SetAutoSyncEnabled(cmd.Context(), args[0], enabled); err != nil {
		if errors.Is(err, domain.ErrCredentialMissing) {
			return fmt.Errorf("tenant %s has no mailbox credential; run: leadsync tenant connect %s", args[0], args[0])
		}
		return fmt.Errorf("failed to update auto-sync: %w", err)
	}

	cmd.Printf("Auto-sync %s for tenant %s.\n", onOff(enabled), args[0])
	return nil
}

// parseSwitch accepts on/off style arguments.
func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "enable", "enabled":
		return true, nil
	case "off", "false", "no", "disable", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("%w: expected on or off, got %q", domain.ErrInvalidInput, s)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
