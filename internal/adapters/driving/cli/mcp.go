package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/loreweave/internal/adapters/driving/mcp"
	"github.com/custodia-labs/loreweave/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so a chat host can retrieve lore.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

The server exposes:
  retrieve                                    tool: rank chunks for a query
  loreweave://collections                     global collections
  loreweave://collections/{id}                collection metadata and chunk index
  loreweave://collections/{id}/chunks/{hash}  chunk text

Settings changes in the config file are applied to running queries
without a restart.

Examples:
  # Stdio mode (default)
  loreweave mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  loreweave mcp serve --port 8080`,
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

	ports := &mcp.Ports{
		Retrieval:  retrievalService,
		Collection: collectionService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if configWatcher != nil {
		if err := configWatcher.Start(); err != nil {
			logger.Warn("settings reload disabled: %v", err)
		} else {
			defer configWatcher.Stop()
		}
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
