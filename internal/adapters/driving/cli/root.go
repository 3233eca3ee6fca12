// Package cli is the leadsync command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/leadsync/internal/logger"
)

// version is set at build time.
var version = "dev"

// Global flags.
var (
	verbose   bool
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "leadsync",
	Short: "Sync tenant mailboxes and auto-reply to new leads",
	Long: `leadsync keeps tenant mailboxes in sync and answers new leads automatically.

Server side, a sweep refreshes each due tenant's mailbox credential, pulls new
mail through the mailbox sync service and sends generated replies to leads
that pass the tenant's auto-reply rules. Run one sweep with 'leadsync sweep'
from an external scheduler, or keep 'leadsync serve' running for the built-in
scheduler and the HTTP API.

Client side, 'leadsync login' stores a session token and 'leadsync session'
keeps a live view of the tenant's leads.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if logLevel != "" || logFormat != "" {
			if err := logger.Setup(logLevel, logFormat); err != nil {
				return err
			}
		}
		if verbose {
			logger.SetVerbose(true)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (overrides LOG_FORMAT)")
}

// SetVersion sets the version reported by 'leadsync version'.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and releases any services it opened.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}
