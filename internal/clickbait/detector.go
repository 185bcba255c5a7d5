package clickbait

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/determinism"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/modelhandle"
	"NewsAnalyzer/internal/ports"
)

const (
	LabelClickbait    = "clickbait"
	LabelNotClickbait = "not clickbait"

	// DefaultPositiveLabel is the class name the headline model emits for clickbait.
	DefaultPositiveLabel = "кликбейт"

	lowConfidenceMargin = 0.1
	lowConfidenceNote   = "Низкая уверенность: результат близок к пороговому значению."

	minHeadlineLen = 5
	maxHeadlineLen = 200
)

// Config carries the decision threshold and echoed versions.
type Config struct {
	Threshold       float64
	PositiveLabel   string
	ContractVersion string
	DetectorVersion string
}

// Detector scores headlines with a lazily loaded classifier.
type Detector struct {
	cfg    Config
	model  *modelhandle.Handle[ports.ClickbaitModel]
	logger *slog.Logger
	now    func() time.Time
}

// NewDetector wires the model handle; an empty positive label means DefaultPositiveLabel.
func NewDetector(cfg Config, model *modelhandle.Handle[ports.ClickbaitModel], logger *slog.Logger) *Detector {
	if cfg.PositiveLabel == "" {
		cfg.PositiveLabel = DefaultPositiveLabel
	}
	return &Detector{
		cfg:    cfg,
		model:  model,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Validate trims the headline and enforces its length.
func (d *Detector) Validate(headline string) (string, error) {
	text := strings.TrimSpace(headline)
	n := utf8.RuneCountInString(text)
	switch {
	case text == "":
		return "", apperr.Validation(apperr.CodeInvalidInput, "headline must not be empty or whitespace")
	case n < minHeadlineLen:
		return "", apperr.Validation(apperr.CodeInvalidInput, fmt.Sprintf("headline must be at least %d characters", minHeadlineLen))
	case n > maxHeadlineLen:
		return "", apperr.Validation(apperr.CodeInvalidInput, fmt.Sprintf("headline must be at most %d characters", maxHeadlineLen))
	}
	return text, nil
}

// Analyze returns a report. Invalid input and a failed model load are errors;
// an inference failure yields a "status unavailable" report.
func (d *Detector) Analyze(ctx context.Context, req domain.ClickbaitRequest) (domain.ClickbaitReport, error) {
	headline, err := d.Validate(req.Headline)
	if err != nil {
		return domain.ClickbaitReport{}, err
	}
	ctx, _ = determinism.Ensure(ctx, determinism.Versions{Contract: d.cfg.ContractVersion, Model: d.cfg.DetectorVersion})

	if d.model == nil {
		return domain.ClickbaitReport{}, apperr.New(apperr.KindInternal, apperr.CodeClickbaitInitError, "no clickbait model configured", nil)
	}
	model, err := d.model.Get(ctx)
	if err != nil {
		return domain.ClickbaitReport{}, apperr.New(apperr.KindInternal, apperr.CodeClickbaitInitError, "clickbait model failed to load", err)
	}

	raw, err := predict(ctx, model, headline)
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("clickbait inference failed", "error", err)
		}
		return d.fallback(apperr.Diagnostic("clickbait detector", err)), nil
	}

	score := domain.Clamp01(raw.Score)
	isClickbait := raw.Label == d.cfg.PositiveLabel && raw.Score >= d.cfg.Threshold
	label := LabelNotClickbait
	if isClickbait {
		label = LabelClickbait
	}

	return domain.ClickbaitReport{
		IsClickbait:     isClickbait,
		Score:           score,
		Label:           label,
		ConfidenceNote:  d.confidenceNote(score),
		ContractVersion: d.cfg.ContractVersion,
		DetectorVersion: d.cfg.DetectorVersion,
		EvaluatedAt:     d.now(),
	}, nil
}

// Status reports the model readiness for health checks.
func (d *Detector) Status() string {
	if d.model == nil {
		return "not_configured"
	}
	return d.model.Status()
}

func (d *Detector) confidenceNote(score float64) *string {
	if math.Abs(score-d.cfg.Threshold) <= lowConfidenceMargin {
		note := lowConfidenceNote
		return &note
	}
	return nil
}

func (d *Detector) fallback(message string) domain.ClickbaitReport {
	return domain.ClickbaitReport{
		Label:           domain.StatusUnavailable,
		ConfidenceNote:  &message,
		ContractVersion: d.cfg.ContractVersion,
		DetectorVersion: d.cfg.DetectorVersion,
		EvaluatedAt:     d.now(),
	}
}

func predict(ctx context.Context, model ports.ClickbaitModel, headline string) (raw domain.RawClassification, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v: %w", r, apperr.ErrModelUnavailable)
		}
	}()

	raw, err = model.Predict(ctx, headline)
	if err != nil {
		return raw, err
	}
	if math.IsNaN(raw.Score) || math.IsInf(raw.Score, 0) {
		return raw, fmt.Errorf("score %v: %w", raw.Score, apperr.ErrMalformedOutput)
	}
	return raw, nil
}
