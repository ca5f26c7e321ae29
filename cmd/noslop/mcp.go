package main

import (
	"github.com/panbanda/noslop/internal/mcpserver"
	"github.com/spf13/cobra"
)

func newMCPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start an MCP server for LLM tool integration",
		Long: `Starts an MCP (Model Context Protocol) server over stdio that exposes the
unused-default analysis as a tool an LLM can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "noslop": {
        "command": "noslop",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - find_unused_defaults   Default parameter values every call site overrides

Settings from the config file become the tool's defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := loadConfig(opts, ".")
			if err != nil {
				return err
			}
			return mcpserver.NewServer(version, result.Config).Run(cmd.Context())
		},
	}
}
