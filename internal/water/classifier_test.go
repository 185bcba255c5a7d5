package water

import (
	"context"
	"errors"
	"math"
	"testing"

	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/domain"
)

type stubModel struct {
	predict      func([]float64) (float64, error)
	predictProba func([]float64) ([]float64, error)
}

func (m stubModel) Predict(ctx context.Context, features []float64) (float64, error) {
	if m.predict == nil {
		return 0, errors.New("predict not supported")
	}
	return m.predict(features)
}

func (m stubModel) PredictProba(ctx context.Context, features []float64) ([]float64, error) {
	if m.predictProba == nil {
		return nil, errors.New("predict_proba not supported")
	}
	return m.predictProba(features)
}

func constPredict(p float64) stubModel {
	return stubModel{predict: func([]float64) (float64, error) { return p, nil }}
}

func TestClassifyUsesPredict(t *testing.T) {
	t.Parallel()

	v, err := NewClassifier(constPredict(0.8)).Classify(context.Background(), domain.FeatureVector{})
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if !v.IsPositive || v.Label != LabelWater || v.Confidence != 0.8 {
		t.Fatalf("unexpected verdict: %+v", v)
	}
	if math.Abs(v.Percentage-80) > 1e-9 {
		t.Fatalf("unexpected percentage: %v", v.Percentage)
	}
}

func TestClassifyFallsBackToPredictProba(t *testing.T) {
	t.Parallel()

	var got []float64
	model := stubModel{predictProba: func(f []float64) ([]float64, error) {
		got = f
		return []float64{0.3, 0.7}, nil
	}}

	fv := domain.FeatureVector{ReadabilityIndex: 55.5, AdjRatio: 0.1, AdvRatio: 0.02, RepetitionRatio: 0.2}
	v, err := NewClassifier(model).Classify(context.Background(), fv)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if v.IsPositive || v.Label != LabelNotWater || v.Confidence != 0.3 {
		t.Fatalf("index 0 must be the water probability: %+v", v)
	}
	if len(got) != 4 || got[0] != 55.5 || got[3] != 0.2 {
		t.Fatalf("features passed in wrong order: %v", got)
	}
}

func TestClassifyThresholdAndClamp(t *testing.T) {
	t.Parallel()

	cases := []struct {
		p        float64
		wantConf float64
		wantPos  bool
	}{
		{p: 0.5, wantConf: 0.5, wantPos: true},
		{p: 0.4999, wantConf: 0.4999, wantPos: false},
		{p: 1.7, wantConf: 1, wantPos: true},
		{p: -0.2, wantConf: 0, wantPos: false},
	}
	for _, tc := range cases {
		v, err := NewClassifier(constPredict(tc.p)).Classify(context.Background(), domain.FeatureVector{})
		if err != nil {
			t.Fatalf("p=%v: unexpected error: %v", tc.p, err)
		}
		if v.Confidence != tc.wantConf || v.IsPositive != tc.wantPos {
			t.Fatalf("p=%v: unexpected verdict %+v", tc.p, v)
		}
	}
}

func TestClassifyBothShapesFail(t *testing.T) {
	t.Parallel()

	v, err := NewClassifier(stubModel{}).Classify(context.Background(), domain.FeatureVector{})
	if err == nil {
		t.Fatal("expected error when both calls fail")
	}
	if !errors.Is(err, apperr.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	if v.Confidence != 0.0 || v.IsPositive || v.Label != LabelNotWater {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestClassifyRecoversPanicsAndRejectsNaN(t *testing.T) {
	t.Parallel()

	model := stubModel{
		predict: func([]float64) (float64, error) { panic("shape mismatch") },
		predictProba: func([]float64) ([]float64, error) {
			return []float64{math.NaN()}, nil
		},
	}
	_, err := NewClassifier(model).Classify(context.Background(), domain.FeatureVector{})
	if !errors.Is(err, apperr.ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}

	empty := stubModel{predictProba: func([]float64) ([]float64, error) { return nil, nil }}
	if _, err := NewClassifier(empty).Classify(context.Background(), domain.FeatureVector{}); !errors.Is(err, apperr.ErrMalformedOutput) {
		t.Fatalf("empty proba must be malformed output, got %v", err)
	}
}

func TestInterpretBoundaries(t *testing.T) {
	t.Parallel()

	got := Interpret(domain.FeatureVector{ReadabilityIndex: 80.0, AdjRatio: 0.12, AdvRatio: 0.07, RepetitionRatio: 0.05})
	want := map[string]string{
		"readability": "normal",
		"adjectives":  "neutral",
		"adverbs":     "emotional filler",
		"repetitions": "tolerable",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s: got %q, want %q", k, got[k], v)
		}
	}

	low := Interpret(domain.FeatureVector{ReadabilityIndex: 40, AdjRatio: 0.5, AdvRatio: 0, RepetitionRatio: 0})
	if low["readability"] != "hard" || low["adjectives"] != "possible filler" || low["adverbs"] != "dry" || low["repetitions"] != "good" {
		t.Fatalf("unexpected bands: %v", low)
	}
}
