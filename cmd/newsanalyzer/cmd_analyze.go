package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"NewsAnalyzer/internal/domain"
)

var analyzeFlags struct {
	url           string
	text          string
	publishedDate string
	requestID     string
	seed          int64
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one article given by --url or --text and print the envelope",
	RunE:  runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.url, "url", "", "article URL")
	f.StringVar(&analyzeFlags.text, "text", "", "raw article text")
	f.StringVar(&analyzeFlags.publishedDate, "published-date", "", "publication date for --text input")
	f.StringVar(&analyzeFlags.requestID, "request-id", "", "request id echoed in the result")
	f.Int64Var(&analyzeFlags.seed, "seed", 0, "seed for reproducible scoring")
	analyzeCmd.MarkFlagsMutuallyExclusive("url", "text")
	analyzeCmd.MarkFlagsOneRequired("url", "text")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	req := domain.AnalyzeRequest{
		InputType:     domain.InputText,
		Text:          domain.StringPtr(analyzeFlags.text),
		PublishedDate: domain.StringPtr(analyzeFlags.publishedDate),
		Language:      "ru",
		RequestID:     domain.StringPtr(analyzeFlags.requestID),
	}
	if analyzeFlags.url != "" {
		req.InputType = domain.InputURL
		req.URL = &analyzeFlags.url
	}
	if cmd.Flags().Changed("seed") {
		req.Seed = &analyzeFlags.seed
	}
	if req.InputType == domain.InputText && req.Text == nil {
		return errors.New("--text must not be empty")
	}

	application, err := buildApp(cmd.Context(), os.Stderr)
	if err != nil {
		return err
	}
	defer application.Close()

	envelope, err := application.Analyzer.Analyze(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), envelope)
}
