package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

var syncLookback string

var syncCmd = &cobra.Command{
	Use:   "sync [tenant-id]",
	Short: "Sync one tenant's mailbox now",
	Long: `Refreshes the tenant's credential, pulls new mail for the lookback
window and sends any pending auto-replies.

A manual sync does not require auto-sync to be enabled and does not move the
tenant's auto-sync marker. It fails if a sweep is already working on the
tenant.

Examples:
  leadsync sync acme
  leadsync sync acme --lookback 7d`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncLookback, "lookback", "l", "1d", "How far back to sync: 1d, 3d, 7d or 30d")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	lookback, err := domain.ParseLookback(syncLookback)
	if err != nil {
		return err
	}

	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	if svc.Syncer == nil {
		return errors.New("sync service not configured")
	}

	tenantID := args[0]
	cmd.Printf("Synchronising tenant %s (last %s)...\n", tenantID, lookback)

	outcome, err := svc.Syncer.SyncTenant(cmd.Context(), tenantID, lookback)
	if outcome == nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	printOutcomeLine(cmd, outcome)
	if err != nil {
		if domain.IsReauthRequired(err) {
			cmd.Printf("Reconnect the mailbox with: leadsync tenant connect %s\n", tenantID)
		}
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}
