package main

import (
	"os"

	"github.com/spf13/cobra"

	"NewsAnalyzer/internal/domain"
)

var (
	waterText       string
	waterNoFeatures bool
	clickbaitTitle  string
)

var waterCmd = &cobra.Command{
	Use:   "water",
	Short: "Estimate filler (\"water\") in a text",
	RunE: func(cmd *cobra.Command, _ []string) error {
		application, err := buildApp(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		defer application.Close()

		include := !waterNoFeatures
		report, err := application.Water.Analyze(cmd.Context(), domain.WaterRequest{Text: waterText, IncludeFeatures: &include})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), report)
	},
}

var clickbaitCmd = &cobra.Command{
	Use:   "clickbait",
	Short: "Classify a headline as clickbait or not",
	RunE: func(cmd *cobra.Command, _ []string) error {
		application, err := buildApp(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		defer application.Close()

		report, err := application.Clickbait.Analyze(cmd.Context(), domain.ClickbaitRequest{Headline: clickbaitTitle})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), report)
	},
}

func init() {
	waterCmd.Flags().StringVar(&waterText, "text", "", "text to analyze")
	waterCmd.Flags().BoolVar(&waterNoFeatures, "no-features", false, "omit features and interpretations")
	_ = waterCmd.MarkFlagRequired("text")

	clickbaitCmd.Flags().StringVar(&clickbaitTitle, "headline", "", "headline to classify")
	_ = clickbaitCmd.MarkFlagRequired("headline")
}
