package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Leon4s4/dynamics-mcp/internal/mcpserver"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	root := &cobra.Command{
		Use:   "dynamics-mcp",
		Short: "MCP server exposing Dynamics 365 / Dataverse as dynamically synthesized tools",
		Long: `dynamics-mcp connects to Microsoft Dataverse instances, introspects their
entity metadata, and synthesizes a callable operation catalog
(create/read/update/delete/list/search per record type) served over the
Model Context Protocol.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(mcpserver.NewCommand(version))
	root.AddCommand(newVersionCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dynamics-mcp %s (commit %s, built %s)\n", version, commit, buildDate)
		},
	}
}
