package water

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/determinism"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/modelhandle"
	"NewsAnalyzer/internal/ports"
	"NewsAnalyzer/internal/textfeatures"
)

// Config carries the versions and input limits of the water detector.
type Config struct {
	ContractVersion string
	DetectorVersion string
	TextMinLength   int
	TextMaxLength   int
	BatchParallel   int
}

// Service runs standalone water detection: validate, extract, classify, interpret.
type Service struct {
	cfg       Config
	extractor *textfeatures.Extractor
	model     *modelhandle.Handle[ports.ProbabilityModel]
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the extractor and the lazily loaded probability model.
func NewService(cfg Config, extractor *textfeatures.Extractor, model *modelhandle.Handle[ports.ProbabilityModel], logger *slog.Logger) *Service {
	if extractor == nil {
		extractor = textfeatures.NewExtractor(nil)
	}
	if cfg.TextMinLength <= 0 {
		cfg.TextMinLength = 20
	}
	if cfg.TextMaxLength <= 0 {
		cfg.TextMaxLength = 10000
	}
	if cfg.BatchParallel <= 0 {
		cfg.BatchParallel = 4
	}
	return &Service{
		cfg:       cfg,
		extractor: extractor,
		model:     model,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Validate trims the text and checks length and control characters.
func (s *Service) Validate(text string) (string, error) {
	content := strings.TrimSpace(text)
	n := utf8.RuneCountInString(content)

	switch {
	case content == "":
		return "", apperr.Validation(apperr.CodeInvalidInput, "text must not be empty or whitespace")
	case n < s.cfg.TextMinLength:
		return "", apperr.Validation(apperr.CodeInvalidInput, fmt.Sprintf("text must be at least %d characters", s.cfg.TextMinLength))
	case n > s.cfg.TextMaxLength:
		return "", apperr.Validation(apperr.CodeInvalidInput, fmt.Sprintf("text must be at most %d characters", s.cfg.TextMaxLength))
	}

	for _, r := range content {
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			return "", apperr.Validation(apperr.CodeInvalidInput, "text contains unsupported control characters")
		}
	}
	return content, nil
}

// Analyze scores one text. Only validation fails the call; model problems
// produce a "status unavailable" report with a diagnostic.
func (s *Service) Analyze(ctx context.Context, req domain.WaterRequest) (domain.WaterReport, error) {
	text, err := s.Validate(req.Text)
	if err != nil {
		return domain.WaterReport{}, err
	}
	return s.analyze(ctx, text, req.WantsFeatures()), nil
}

// AnalyzeBatch scores several texts concurrently and keeps their order.
// Any invalid text rejects the whole batch.
func (s *Service) AnalyzeBatch(ctx context.Context, reqs []domain.WaterRequest) ([]domain.WaterReport, error) {
	texts := make([]string, len(reqs))
	for i, req := range reqs {
		text, err := s.Validate(req.Text)
		if err != nil {
			if e, ok := apperr.As(err); ok {
				return nil, apperr.Validation(e.Code, fmt.Sprintf("item %d: %s", i, e.Message))
			}
			return nil, err
		}
		texts[i] = text
	}

	reports := make([]domain.WaterReport, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchParallel)
	for i := range reqs {
		g.Go(func() error {
			reports[i] = s.analyze(gctx, texts[i], reqs[i].WantsFeatures())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze batch: %w", err)
	}
	return reports, nil
}

// Status reports the model readiness for health checks.
func (s *Service) Status() string {
	if s.model == nil {
		return "not_configured"
	}
	return s.model.Status()
}

// analyze scores one validated text under its own stamp unless the caller
// already attached one.
func (s *Service) analyze(ctx context.Context, text string, withFeatures bool) domain.WaterReport {
	ctx, _ = determinism.Ensure(ctx, determinism.Versions{Contract: s.cfg.ContractVersion, Model: s.cfg.DetectorVersion})
	if s.model == nil {
		return s.fallback("water detector init error: no model configured")
	}
	model, err := s.model.Get(ctx)
	if err != nil {
		s.warn("water model init failed", "error", err)
		return s.fallback(fmt.Sprintf("water detector init error: %v", err))
	}

	features := s.extractor.Extract(text)
	verdict, err := NewClassifier(model).Classify(ctx, features)
	if err != nil {
		s.warn("water classification failed", "error", err)
		return s.fallback(apperr.Diagnostic("water detector", err))
	}

	report := domain.WaterReport{
		IsWater:         verdict.IsPositive,
		Label:           verdict.Label,
		Confidence:      verdict.Confidence,
		WaterPercentage: verdict.Percentage,
		ContractVersion: s.cfg.ContractVersion,
		DetectorVersion: s.cfg.DetectorVersion,
		EvaluatedAt:     s.now(),
	}
	if withFeatures {
		report.Features = &features
		report.Interpretations = Interpret(features)
	}
	return report
}

func (s *Service) fallback(message string) domain.WaterReport {
	return domain.WaterReport{
		Label:           domain.StatusUnavailable,
		ContractVersion: s.cfg.ContractVersion,
		DetectorVersion: s.cfg.DetectorVersion,
		EvaluatedAt:     s.now(),
		Errors:          []string{message},
	}
}

func (s *Service) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
