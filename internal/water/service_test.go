package water

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/determinism"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/modelhandle"
	"NewsAnalyzer/internal/ports"
)

const sampleText = "Сегодня в городе открылся новый парк. Жители довольны прекрасным и очень красивым местом."

func newTestService(model ports.ProbabilityModel) *Service {
	return NewService(Config{
		ContractVersion: "1.0.0",
		DetectorVersion: "water-detector-1.0",
		TextMinLength:   20,
		TextMaxLength:   10000,
		BatchParallel:   2,
	}, nil, modelhandle.Ready[ports.ProbabilityModel]("water", model), nil)
}

func TestAnalyzeReturnsFeaturesAndInterpretations(t *testing.T) {
	t.Parallel()

	svc := newTestService(constPredict(0.9))
	report, err := svc.Analyze(context.Background(), domain.WaterRequest{Text: "  " + sampleText + "  "})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if !report.IsWater || report.Label != LabelWater || report.WaterPercentage != 90 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Features == nil || len(report.Interpretations) != 4 {
		t.Fatalf("features and interpretations expected by default: %+v", report)
	}
	if report.ContractVersion != "1.0.0" || report.DetectorVersion != "water-detector-1.0" {
		t.Fatalf("versions not echoed: %+v", report)
	}
	if report.EvaluatedAt.IsZero() {
		t.Fatal("evaluated_at must be set")
	}
}

func TestAnalyzeWithoutFeatures(t *testing.T) {
	t.Parallel()

	off := false
	report, err := newTestService(constPredict(0.1)).Analyze(context.Background(), domain.WaterRequest{Text: sampleText, IncludeFeatures: &off})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if report.Features != nil || report.Interpretations != nil {
		t.Fatalf("features must be omitted: %+v", report)
	}
}

func TestAnalyzeFallbackWhenModelFails(t *testing.T) {
	t.Parallel()

	report, err := newTestService(stubModel{}).Analyze(context.Background(), domain.WaterRequest{Text: sampleText})
	if err != nil {
		t.Fatalf("model failure must not reject the request: %v", err)
	}
	if report.Label != domain.StatusUnavailable || report.Confidence != 0.0 || report.IsWater {
		t.Fatalf("unexpected fallback: %+v", report)
	}
	if len(report.Errors) != 1 || !strings.HasPrefix(report.Errors[0], "water detector unavailable:") {
		t.Fatalf("unexpected diagnostics: %v", report.Errors)
	}
	if report.ContractVersion == "" || report.DetectorVersion == "" {
		t.Fatalf("fallback must echo versions: %+v", report)
	}
}

func TestAnalyzeFallbackWhenInitFails(t *testing.T) {
	t.Parallel()

	handle := modelhandle.New("water", func(ctx context.Context) (ports.ProbabilityModel, error) {
		return nil, errors.New("weights missing")
	}, nil)
	svc := NewService(Config{ContractVersion: "1.0.0", DetectorVersion: "d"}, nil, handle, nil)

	report, err := svc.Analyze(context.Background(), domain.WaterRequest{Text: sampleText})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Errors) != 1 || !strings.HasPrefix(report.Errors[0], "water detector init error:") {
		t.Fatalf("unexpected diagnostics: %v", report.Errors)
	}
	if svc.Status() != "failed" {
		t.Fatalf("unexpected status: %s", svc.Status())
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	svc := newTestService(constPredict(0.5))
	cases := map[string]string{
		"empty":   "   ",
		"short":   "коротко",
		"long":    strings.Repeat("а", 10001),
		"control": "Текст с управляющим символом \x01 внутри строки",
	}
	for name, text := range cases {
		_, err := svc.Validate(text)
		if apperr.CodeOf(err) != apperr.CodeInvalidInput {
			t.Fatalf("%s: expected INVALID_INPUT, got %v", name, err)
		}
	}

	if _, err := svc.Validate("Строка\tс табуляцией\nи переводом строки"); err != nil {
		t.Fatalf("tabs and newlines are allowed: %v", err)
	}
}

func TestAnalyzeBatchPreservesOrder(t *testing.T) {
	t.Parallel()

	model := stubModel{predict: func(f []float64) (float64, error) {
		// readability differs per text, so the verdicts differ too
		if f[0] > 0 {
			return 0.9, nil
		}
		return 0.1, nil
	}}
	svc := newTestService(model)

	reqs := []domain.WaterRequest{
		{Text: sampleText},
		{Text: "1234567890 1234567890 1234567890"},
		{Text: sampleText},
	}
	reports, err := svc.AnalyzeBatch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("AnalyzeBatch returned error: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	if !reports[0].IsWater || reports[1].IsWater || !reports[2].IsWater {
		t.Fatalf("order not preserved: %v %v %v", reports[0].IsWater, reports[1].IsWater, reports[2].IsWater)
	}
}

func TestAnalyzeBatchRejectsInvalidItem(t *testing.T) {
	t.Parallel()

	_, err := newTestService(constPredict(0.5)).AnalyzeBatch(context.Background(), []domain.WaterRequest{{Text: sampleText}, {Text: ""}})
	e, ok := apperr.As(err)
	if !ok || e.Code != apperr.CodeInvalidInput || !strings.Contains(e.Message, "item 1") {
		t.Fatalf("unexpected error: %v", err)
	}
}

// stampRecorder remembers the stamp each Predict call saw.
type stampRecorder struct {
	mu     sync.Mutex
	stamps []domain.Stamp
	missed int
}

func (r *stampRecorder) Predict(ctx context.Context, features []float64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp, ok := determinism.FromContext(ctx)
	if !ok {
		r.missed++
	}
	r.stamps = append(r.stamps, stamp)
	return 0.6, nil
}

func (r *stampRecorder) PredictProba(ctx context.Context, features []float64) ([]float64, error) {
	return nil, errors.New("predict_proba not supported")
}

func TestAnalyzeRunsModelUnderStamp(t *testing.T) {
	t.Parallel()

	rec := &stampRecorder{}
	svc := newTestService(rec)
	for range 2 {
		if _, err := svc.Analyze(context.Background(), domain.WaterRequest{Text: sampleText}); err != nil {
			t.Fatalf("Analyze returned error: %v", err)
		}
	}
	if _, err := svc.AnalyzeBatch(context.Background(), []domain.WaterRequest{{Text: sampleText}, {Text: sampleText}}); err != nil {
		t.Fatalf("AnalyzeBatch returned error: %v", err)
	}

	if rec.missed != 0 || len(rec.stamps) != 4 {
		t.Fatalf("model calls without stamp: %d of %d", rec.missed, len(rec.stamps))
	}
	for _, stamp := range rec.stamps {
		if stamp.ContractVersion != "1.0.0" || stamp.ModelVersion != "water-detector-1.0" {
			t.Fatalf("unexpected stamp: %+v", stamp)
		}
	}
}

func TestAnalyzeKeepsCallerStamp(t *testing.T) {
	t.Parallel()

	rec := &stampRecorder{}
	seed := int64(11)
	ctx := determinism.WithStamp(context.Background(), determinism.New(&seed, determinism.Versions{}))
	if _, err := newTestService(rec).Analyze(ctx, domain.WaterRequest{Text: sampleText}); err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(rec.stamps) != 1 || rec.stamps[0].Seed != 11 {
		t.Fatalf("caller stamp replaced: %+v", rec.stamps)
	}
}
