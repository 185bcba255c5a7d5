package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/modelhandle"
	"NewsAnalyzer/internal/ports"
)

// MapLabel folds model labels into the three-class contract. Anything that is
// not clearly positive or negative, UNCERTAIN included, is neutral.
func MapLabel(label string) domain.SentimentLabel {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "NEGATIVE":
		return domain.SentimentNegative
	case "POSITIVE":
		return domain.SentimentPositive
	default:
		return domain.SentimentNeutral
	}
}

// Orchestrator scores the main text and every quote independently.
type Orchestrator struct {
	model  *modelhandle.Handle[ports.SentimentModel]
	logger *slog.Logger
}

// NewOrchestrator wires the lazily loaded sentiment model.
func NewOrchestrator(model *modelhandle.Handle[ports.SentimentModel], logger *slog.Logger) *Orchestrator {
	return &Orchestrator{model: model, logger: logger}
}

// Score runs one model call per segment. Any failure degrades the whole result
// to a neutral main text with no quotes and one diagnostic in Errors; Errors is
// empty exactly when scoring succeeded.
func (o *Orchestrator) Score(ctx context.Context, mainText string, quotes []domain.Quote) domain.SentimentResult {
	result, err := o.score(ctx, mainText, quotes)
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("sentiment degraded", "error", err, "quotes", len(quotes))
		}
		return Degraded(mainText, apperr.Diagnostic("sentiment model", err))
	}
	return result
}

// Status reports the model readiness for health checks.
func (o *Orchestrator) Status() string {
	if o.model == nil {
		return "not_configured"
	}
	return o.model.Status()
}

// Degraded is the neutral result used when sentiment could not be computed.
func Degraded(mainText, message string) domain.SentimentResult {
	return domain.SentimentResult{
		MainText: domain.SentimentSummary{Text: mainText, Label: domain.SentimentNeutral, Confidence: 0.0},
		Quotes:   []domain.QuoteSentiment{},
		Errors:   []string{message},
	}
}

func (o *Orchestrator) score(ctx context.Context, mainText string, quotes []domain.Quote) (domain.SentimentResult, error) {
	if o.model == nil {
		return domain.SentimentResult{}, fmt.Errorf("no sentiment model configured: %w", apperr.ErrModelUnavailable)
	}
	model, err := o.model.Get(ctx)
	if err != nil {
		return domain.SentimentResult{}, err
	}

	main, err := predict(ctx, model, mainText)
	if err != nil {
		return domain.SentimentResult{}, fmt.Errorf("main text: %w", err)
	}

	segments := domain.Segments(quotes)
	out := domain.SentimentResult{
		MainText: domain.SentimentSummary{Text: mainText, Label: MapLabel(main.PredictedLabel), Confidence: main.Confidence},
		Quotes:   make([]domain.QuoteSentiment, 0, len(segments)),
		Errors:   []string{},
	}
	for _, seg := range segments {
		raw, err := predict(ctx, model, seg.Text)
		if err != nil {
			return domain.SentimentResult{}, fmt.Errorf("quote %d: %w", seg.Position, err)
		}
		out.Quotes = append(out.Quotes, domain.QuoteSentiment{
			QuoteText:  seg.Text,
			Label:      MapLabel(raw.PredictedLabel),
			Confidence: raw.Confidence,
			Position:   seg.Position,
			Author:     seg.Author,
		})
	}
	return out, nil
}

func predict(ctx context.Context, model ports.SentimentModel, text string) (raw domain.RawSentiment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v: %w", r, apperr.ErrModelUnavailable)
		}
	}()

	raw, err = model.Predict(ctx, text)
	if err != nil {
		return raw, err
	}
	// Finite confidences pass through as reported; float32 softmax averages
	// may land a hair outside [0,1].
	if math.IsNaN(raw.Confidence) || math.IsInf(raw.Confidence, 0) {
		return raw, fmt.Errorf("confidence %v: %w", raw.Confidence, apperr.ErrMalformedOutput)
	}
	return raw, nil
}
