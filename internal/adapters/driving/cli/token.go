package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage client session tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue [tenant-id]",
	Short: "Issue a session token for a tenant",
	Long: `Issues a signed token that lets a client act as the tenant against the
HTTP API. Hand it to the tenant's user for 'leadsync login'.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenIssue,
}

func init() {
	tokenCmd.AddCommand(tokenIssueCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenIssue(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	switch {
	case svc.Tokens == nil:
		return fmt.Errorf("%w: JWT_SECRET", domain.ErrMissingConfig)
	case svc.Tenants == nil:
		return errors.New("tenant store not configured")
	}

	tenantID := args[0]
	if _, err := svc.Tenants.Get(cmd.Context(), tenantID); err != nil {
		return fmt.Errorf("failed to load tenant: %w", err)
	}

	token, expires, err := svc.Tokens.Issue(tenantID)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	cmd.Println(token)
	cmd.PrintErrf("Expires %s\n", expires.Local().Format(time.RFC3339))
	return nil
}
