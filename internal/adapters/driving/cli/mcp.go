package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/leadsync/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

Tools:
  run_sweep      Sync and auto-reply for every tenant that is due
  sync_tenant    Sync one tenant now with a chosen lookback
  tenant_status  Show a tenant's sync state

Resources:
  leadsync://tenants/{tenantId}/leads
  leadsync://tenants/{tenantId}/settings

By default, the server communicates over stdio using JSON-RPC.
Use --port to serve over HTTP instead. The HTTP transport requires
"Authorization: Bearer $SWEEP_SECRET" when SWEEP_SECRET is set.

Examples:
  leadsync mcp serve
  leadsync mcp serve --port 8090`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	if svc.Syncer == nil {
		return errors.New("sync service not configured")
	}

	ports := &mcp.Ports{
		Syncer:   svc.Syncer,
		Sweeper:  svc.Sweeper,
		Controls: svc.Controls,
		Leads:    svc.Leads,
	}

	server, err := mcp.NewServer(ports, mcp.WithVersion(version), mcp.WithHTTPSecret(svc.SweepSecret))
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
