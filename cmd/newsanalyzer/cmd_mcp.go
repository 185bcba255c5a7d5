package main

import (
	"os"

	"github.com/spf13/cobra"

	"NewsAnalyzer/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server over stdio",
	Long: `Exposes analyze_article, detect_water and detect_clickbait as MCP tools over
stdin/stdout. Logs are written to stderr.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		application, err := buildApp(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		defer application.Close()

		go application.Warmup(cmd.Context())

		srv := mcpserver.NewServer(application.Services(), version, application.Logger().With("component", "mcp"))
		return srv.Run(cmd.Context())
	},
}
