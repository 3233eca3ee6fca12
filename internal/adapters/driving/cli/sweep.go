package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/leadsync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/leadsync/internal/core/domain"
)

var sweepJSON bool

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one sync-and-reply sweep across all due tenants",
	Long: `Runs a single sweep and exits.

Every tenant with auto-sync enabled, a stored refresh credential and a last
auto-sync older than the staleness window is refreshed, synced and replied
to. Tenants are processed a few at a time. A failing tenant never stops the
others; it is reported in the summary and retried by the next sweep.

Suitable for cron or any other external scheduler:
  */5 * * * * leadsync sweep --json >> /var/log/leadsync-sweep.log`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().BoolVar(&sweepJSON, "json", false, "Print the summary as JSON")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	if svc.Sweeper == nil {
		return errors.New("sweep service not configured")
	}

	summary, err := svc.Sweeper.Sweep(cmd.Context())
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	if sweepJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(httpapi.NewSweepResponse(summary))
	}

	printSweepSummary(cmd, summary)
	return nil
}

func printSweepSummary(cmd *cobra.Command, s *domain.SweepSummary) {
	if s.Eligible == 0 {
		cmd.Println("No tenants due for sync.")
		return
	}

	cmd.Printf("Sweep %s: %d tenants, %d succeeded, %d failed (%s)\n",
		s.SweepID, s.Eligible, s.Successful, s.Failed, s.Duration().Round(time.Millisecond))
	cmd.Printf("New leads: %d, replies sent: %d, replies failed: %d\n",
		s.NewLeads, s.RepliesSent, s.RepliesFailed)

	for i := range s.Outcomes {
		printOutcomeLine(cmd, &s.Outcomes[i])
	}
}

func printOutcomeLine(cmd *cobra.Command, o *domain.SyncOutcome) {
	if o.Success {
		cmd.Printf("  %s  ok  %d new leads, %d/%d replies sent\n",
			o.TenantID, o.NewLeadCount, o.Replies.Sent, o.Replies.Attempted)
		return
	}

	note := ""
	switch {
	case o.CredentialRevoked:
		note = " (credential revoked, auto-sync disabled)"
	case domain.IsReauthRequired(o.Err):
		note = " (reconnect required)"
	}
	cmd.Printf("  %s  failed  %v%s\n", o.TenantID, o.Err, note)
}
