package hf

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/domain"
)

type fakeClassifier struct {
	calls  [][]string
	result func(text string) []domain.RawClassification
	err    error
}

func (f *fakeClassifier) Classify(_ context.Context, texts []string) ([][]domain.RawClassification, error) {
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]domain.RawClassification, len(texts))
	for i, text := range texts {
		out[i] = f.result(text)
	}
	return out, nil
}

func TestChunk(t *testing.T) {
	t.Parallel()

	got := Chunk("раз два три четыре", 9)
	want := []string{"раз два", "три", "четыре"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Chunk() mismatch (-want +got):\n%s", diff)
	}

	if got := Chunk("  короткий  ", 100); len(got) != 1 || got[0] != "короткий" {
		t.Fatalf("unexpected chunks: %q", got)
	}
	if got := Chunk("абвгдежзий", 4); strings.Join(got, "") != "абвгдежзий" || len(got) != 3 {
		t.Fatalf("hard cut expected, got %q", got)
	}
}

func TestSentimentModelAveragesChunks(t *testing.T) {
	t.Parallel()

	fake := &fakeClassifier{result: func(text string) []domain.RawClassification {
		if strings.HasPrefix(text, "плохо") {
			return []domain.RawClassification{{Label: "NEGATIVE", Score: 0.9}}
		}
		return []domain.RawClassification{{Label: "POSITIVE", Score: 0.6}}
	}}
	model := newSentimentModel(fake, 6)

	res, err := model.Predict(context.Background(), "плохо плохо хорошо")
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if len(fake.calls) != 1 || len(fake.calls[0]) != 3 {
		t.Fatalf("expected one batched call with 3 chunks, got %q", fake.calls)
	}
	if res.PredictedLabel != "NEGATIVE" || math.Abs(res.Confidence-0.6) > 1e-9 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSentimentModelPropagatesErrors(t *testing.T) {
	t.Parallel()

	model := newSentimentModel(&fakeClassifier{err: apperr.ErrModelUnavailable}, 0)
	if _, err := model.Predict(context.Background(), "текст"); !errors.Is(err, apperr.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}

	empty := newSentimentModel(&fakeClassifier{result: func(string) []domain.RawClassification { return nil }}, 0)
	if _, err := empty.Predict(context.Background(), "текст"); !errors.Is(err, apperr.ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
}

func TestClickbaitModelTopLabel(t *testing.T) {
	t.Parallel()

	model := &ClickbaitModel{clf: &fakeClassifier{result: func(string) []domain.RawClassification {
		return []domain.RawClassification{{Label: "не кликбейт", Score: 0.3}, {Label: "кликбейт", Score: 0.7}}
	}}}
	res, err := model.Predict(context.Background(), "Шок! Учёные раскрыли тайну")
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if res.Label != "кликбейт" || res.Score != 0.7 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestResolveModelDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, dir := range []string{"checkpoint-500", "checkpoint-1500", "checkpoint-900", "logs"} {
		if err := os.Mkdir(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	got, err := ResolveModelDir(root)
	if err != nil {
		t.Fatalf("ResolveModelDir() error = %v", err)
	}
	if got != filepath.Join(root, "checkpoint-1500") {
		t.Fatalf("got %s, want latest checkpoint", got)
	}

	if err := os.WriteFile(filepath.Join(root, "config.json"), []byte("{}"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if got, _ := ResolveModelDir(root); got != root {
		t.Fatalf("got %s, want root with config.json", got)
	}

	if _, err := ResolveModelDir(t.TempDir()); err == nil {
		t.Fatal("expected error for directory without model")
	}
	if _, err := ResolveModelDir(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
