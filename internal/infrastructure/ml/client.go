package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/determinism"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

const initialBackoff = 250 * time.Millisecond

// Client talks to an external ML service hosting the sentiment, clickbait and
// water models. Every request carries the request seed.
type Client struct {
	endpoint string
	apiKey   string
	retries  int
	backoff  time.Duration
	http     *http.Client
	logger   *slog.Logger
}

// NewClient creates a reusable HTTP client; retries below 1 means a single attempt.
func NewClient(endpoint, apiKey string, timeout time.Duration, retries int, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if retries < 1 {
		retries = 1
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		retries:  retries,
		backoff:  initialBackoff,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Ping checks that the service answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/health", nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping ml service: %w: %w", err, apperr.ErrModelUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping ml service: unexpected status %s: %w", resp.Status, apperr.ErrModelUnavailable)
	}
	return nil
}

// Sentiment exposes the remote sentiment model.
func (c *Client) Sentiment() *SentimentService { return &SentimentService{c: c} }

// Clickbait exposes the remote headline classifier.
func (c *Client) Clickbait() *ClickbaitService { return &ClickbaitService{c: c} }

// Water exposes the remote water probability model.
func (c *Client) Water() *WaterService { return &WaterService{c: c} }

// SentimentService implements ports.SentimentModel over HTTP.
type SentimentService struct{ c *Client }

var _ ports.SentimentModel = (*SentimentService)(nil)

// Predict posts the text to /sentiment.
func (s *SentimentService) Predict(ctx context.Context, text string) (domain.RawSentiment, error) {
	payload := map[string]any{
		"text": text,
		"seed": determinism.SeedFromContext(ctx),
	}

	var resp domain.RawSentiment
	if err := s.c.post(ctx, "/sentiment", payload, &resp); err != nil {
		return domain.RawSentiment{}, err
	}
	if resp.PredictedLabel == "" {
		return domain.RawSentiment{}, fmt.Errorf("sentiment response without label: %w", apperr.ErrMalformedOutput)
	}
	return resp, nil
}

// ClickbaitService implements ports.ClickbaitModel over HTTP.
type ClickbaitService struct{ c *Client }

var _ ports.ClickbaitModel = (*ClickbaitService)(nil)

// Predict posts the headline to /clickbait.
func (s *ClickbaitService) Predict(ctx context.Context, headline string) (domain.RawClassification, error) {
	payload := map[string]any{
		"headline": headline,
		"seed":     determinism.SeedFromContext(ctx),
	}

	var resp domain.RawClassification
	if err := s.c.post(ctx, "/clickbait", payload, &resp); err != nil {
		return domain.RawClassification{}, err
	}
	if resp.Label == "" {
		return domain.RawClassification{}, fmt.Errorf("clickbait response without label: %w", apperr.ErrMalformedOutput)
	}
	return resp, nil
}

// WaterService implements ports.ProbabilityModel over HTTP.
type WaterService struct{ c *Client }

var _ ports.ProbabilityModel = (*WaterService)(nil)

// Predict posts the feature vector to /water/predict.
func (s *WaterService) Predict(ctx context.Context, features []float64) (float64, error) {
	var resp struct {
		Probability *float64 `json:"probability"`
	}
	if err := s.c.post(ctx, "/water/predict", waterPayload(ctx, features), &resp); err != nil {
		return 0, err
	}
	if resp.Probability == nil {
		return 0, fmt.Errorf("water response without probability: %w", apperr.ErrMalformedOutput)
	}
	return *resp.Probability, nil
}

// PredictProba posts the feature vector to /water/predict_proba.
func (s *WaterService) PredictProba(ctx context.Context, features []float64) ([]float64, error) {
	var resp struct {
		Probabilities []float64 `json:"probabilities"`
	}
	if err := s.c.post(ctx, "/water/predict_proba", waterPayload(ctx, features), &resp); err != nil {
		return nil, err
	}
	return resp.Probabilities, nil
}

func waterPayload(ctx context.Context, features []float64) map[string]any {
	named := make(map[string]float64, len(domain.FeatureNames))
	for i, name := range domain.FeatureNames {
		if i < len(features) {
			named[name] = features[i]
		}
	}
	return map[string]any{
		"vector":   features,
		"features": named,
		"seed":     determinism.SeedFromContext(ctx),
	}
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	if c.endpoint == "" {
		return fmt.Errorf("ml service endpoint is not configured: %w", apperr.ErrModelUnavailable)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	// Jitter comes from the request stamp, so a replayed request retries on
	// the same schedule.
	jitter := determinism.Rand(ctx)
	backoff := c.backoff
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		retry, err := c.do(ctx, path, body, v)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || attempt == c.retries {
			break
		}

		if c.logger != nil {
			c.logger.Warn("ml request failed, will retry", "path", path, "attempt", attempt, "error", err)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w: %w", path, ctx.Err(), apperr.ErrModelUnavailable)
		case <-time.After(retryDelay(jitter, backoff)):
		}
		backoff *= 2
	}
	return lastErr
}

// retryDelay adds up to half of base as jitter.
func retryDelay(r *rand.Rand, base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	return base + time.Duration(r.Int64N(int64(base)/2+1))
}

// do performs one attempt and reports whether a failure is worth retrying.
func (c *Client) do(ctx context.Context, path string, body []byte, v any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("do request: %w: %w", err, apperr.ErrModelUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode >= http.StatusInternalServerError,
			fmt.Errorf("unexpected status %s: %s: %w", resp.Status, strings.TrimSpace(string(msg)), apperr.ErrModelUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("decode response: %w: %w", err, apperr.ErrMalformedOutput)
	}
	return false, nil
}
