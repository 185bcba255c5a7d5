package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/config"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/logging"
)

func testConfig() config.Config {
	return config.Config{
		HTTP:     config.HTTPConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second},
		Versions: config.VersionsConfig{Contract: "0.1.0", Model: "test_model"},
		Freshness: config.FreshnessConfig{
			Timezone:   "UTC",
			RecentDays: 7,
		},
		Fetcher: config.FetcherConfig{Timeout: time.Second},
		Models: config.ModelsConfig{
			Sentiment: config.SentimentModelConfig{Backend: "vader"},
			Clickbait: config.ClickbaitModelConfig{Backend: "missing", Threshold: 0.5, PositiveLabel: "кликбейт"},
			Water: config.WaterModelConfig{
				Backend:   "logistic",
				Weights:   []float64{-0.02, 8.0, 12.0, 6.0},
				Intercept: -1.5,
			},
		},
	}
}

func newTestApp(t *testing.T, cfg config.Config) *Application {
	t.Helper()
	application, err := New(context.Background(), cfg, logging.NewWriter(io.Discard, "error", "json"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = application.Close() })
	return application
}

func TestApplicationAnalyzesText(t *testing.T) {
	t.Parallel()

	application := newTestApp(t, testConfig())
	text := "Компания сообщила о росте прибыли. «Это отличный результат», заявил директор."
	seed := int64(42)
	envelope, err := application.Analyzer.Analyze(context.Background(), domain.AnalyzeRequest{
		InputType: domain.InputText,
		Text:      &text,
		Seed:      &seed,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if envelope.RequestID == nil || envelope.Meta.Seed != 42 {
		t.Fatalf("unexpected envelope meta: %+v %+v", envelope.RequestID, envelope.Meta)
	}
	if envelope.Freshness.Status != domain.FreshnessUnknown {
		t.Fatalf("freshness = %s, want unknown", envelope.Freshness.Status)
	}
	if len(envelope.Sentiment.Errors) != 0 {
		t.Fatalf("vader backend degraded: %v", envelope.Sentiment.Errors)
	}
}

func TestApplicationWaterWithLogisticBackend(t *testing.T) {
	t.Parallel()

	application := newTestApp(t, testConfig())
	report, err := application.Water.Analyze(context.Background(), domain.WaterRequest{
		Text: "Очень-очень важная и крайне интересная новость, которая, безусловно, невероятно важна.",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Label == "" || report.Confidence < 0 || report.Confidence > 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if got := application.Services().Water.Status(); got != "ready" {
		t.Fatalf("water status = %s, want ready", got)
	}
}

func TestApplicationUnknownBackendFailsOnLoad(t *testing.T) {
	t.Parallel()

	application := newTestApp(t, testConfig())
	application.Warmup(context.Background())

	_, err := application.Clickbait.Analyze(context.Background(), domain.ClickbaitRequest{Headline: "Вы не поверите, что случилось"})
	if apperr.CodeOf(err) != apperr.CodeClickbaitInitError {
		t.Fatalf("code = %s, want %s (err %v)", apperr.CodeOf(err), apperr.CodeClickbaitInitError, err)
	}
	if got := application.Services().Clickbait.Status(); got != "failed" {
		t.Fatalf("clickbait status = %s, want failed", got)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	application := newTestApp(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}
