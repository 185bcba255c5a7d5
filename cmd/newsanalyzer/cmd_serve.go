package main

import (
	"os"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the JSON API (/analysis, /water-detection, /clickbait/analyze, /health).
Models are warmed up in the background; requests arriving before a model is
ready load it on demand.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		application, err := buildApp(cmd.Context(), os.Stdout)
		if err != nil {
			return err
		}
		defer application.Close()
		return application.Serve(cmd.Context())
	},
}
