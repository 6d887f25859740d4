package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve staging tools over the Model Context Protocol",
	Long: `Starts an MCP server exposing address parsing, corpus listing and
staging as tools, and the run manifest as resources.

By default the server speaks over stdio, for use as a subprocess of an
MCP client. With --port it serves streamable HTTP instead.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().IntP("port", "p", 0, "serve streamable HTTP on this port instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	if explorerService == nil || stagerService == nil {
		return errors.New("staging services not configured")
	}

	ports := &mcp.Ports{
		Explorer: explorerService,
		Stager:   stagerService,
		Manifest: manifestService,
		Settings: settingsService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	port, _ := cmd.Flags().GetInt("port")
	if port > 0 {
		addr := fmt.Sprintf("localhost:%d", port)
		cmd.Printf("Starting MCP server on http://%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
