package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/leadsync/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

var (
	loginServer string
	loginToken  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a session for a leadsync server",
	Long: `Checks the token against the server and stores the session in the
system keyring for 'leadsync session'.

Example:
  leadsync login --server https://leadsync.example.com --token eyJhbGciOi...`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVar(&loginServer, "server", "", "Server URL")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Session token from 'leadsync token issue'")
	_ = loginCmd.MarkFlagRequired("server")
	_ = loginCmd.MarkFlagRequired("token")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	if sessionStore == nil {
		return errors.New("session store not configured")
	}

	session := driven.ClientSession{
		ServerURL: strings.TrimRight(loginServer, "/"),
		Token:     strings.TrimSpace(loginToken),
	}
	client, err := apiclient.New(session)
	if err != nil {
		return err
	}

	status, err := client.Status(cmd.Context())
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return fmt.Errorf("server rejected the token: %w", err)
		}
		return fmt.Errorf("contacting server: %w", err)
	}

	session.TenantID = status.TenantID
	if err := sessionStore.Save(session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	cmd.Printf("Logged in as tenant %s on %s.\n", session.TenantID, session.ServerURL)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	if sessionStore == nil {
		return errors.New("session store not configured")
	}
	if err := sessionStore.Delete(); err != nil {
		return fmt.Errorf("removing session: %w", err)
	}
	cmd.Println("Logged out.")
	return nil
}
