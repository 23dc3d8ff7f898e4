// ABOUTME: MCP server command for podplay CLI
// ABOUTME: Starts the Model Context Protocol server on stdio

package main

import (
	"github.com/spf13/cobra"

	"github.com/harper/podplay/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long:  "Start the Model Context Protocol server on stdio so AI agents can manage podcast subscriptions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := mcp.NewServer(Version, repo, store, nil, newSearchClient())
		return server.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
