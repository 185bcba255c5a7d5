package hf

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

const defaultMaxChars = 2000

// SentimentModel scores long texts by splitting them into chunks the
// transformer can take and averaging the per-label scores.
type SentimentModel struct {
	clf      classifier
	maxChars int
}

var _ ports.SentimentModel = (*SentimentModel)(nil)

// NewSentimentModel wraps clf; maxChars <= 0 uses the default chunk size.
func NewSentimentModel(clf *TextClassifier, maxChars int) *SentimentModel {
	return newSentimentModel(clf, maxChars)
}

func newSentimentModel(clf classifier, maxChars int) *SentimentModel {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	return &SentimentModel{clf: clf, maxChars: maxChars}
}

func (m *SentimentModel) Predict(ctx context.Context, text string) (domain.RawSentiment, error) {
	chunks := Chunk(text, m.maxChars)
	if len(chunks) == 0 {
		chunks = []string{text}
	}

	results, err := m.clf.Classify(ctx, chunks)
	if err != nil {
		return domain.RawSentiment{}, err
	}

	best, ok := average(results)
	if !ok {
		return domain.RawSentiment{}, fmt.Errorf("sentiment pipeline returned no labels: %w", apperr.ErrMalformedOutput)
	}
	return domain.RawSentiment{PredictedLabel: best.Label, Confidence: best.Score}, nil
}

// ClickbaitModel returns the top label of a single headline.
type ClickbaitModel struct {
	clf classifier
}

var _ ports.ClickbaitModel = (*ClickbaitModel)(nil)

func NewClickbaitModel(clf *TextClassifier) *ClickbaitModel {
	return &ClickbaitModel{clf: clf}
}

func (m *ClickbaitModel) Predict(ctx context.Context, headline string) (domain.RawClassification, error) {
	results, err := m.clf.Classify(ctx, []string{headline})
	if err != nil {
		return domain.RawClassification{}, err
	}
	best, ok := top(results[0])
	if !ok {
		return domain.RawClassification{}, fmt.Errorf("clickbait pipeline returned no labels: %w", apperr.ErrMalformedOutput)
	}
	return best, nil
}

// average folds per-chunk scores into one score per label. A label missing
// from a chunk counts as 0 there.
func average(results [][]domain.RawClassification) (domain.RawClassification, bool) {
	if len(results) == 0 {
		return domain.RawClassification{}, false
	}
	sums := make(map[string]float64)
	for _, scores := range results {
		for _, s := range scores {
			sums[s.Label] += s.Score
		}
	}
	merged := make([]domain.RawClassification, 0, len(sums))
	for label, sum := range sums {
		merged = append(merged, domain.RawClassification{Label: label, Score: sum / float64(len(results))})
	}
	return top(merged)
}

// top picks the highest score; ties go to the lexically smaller label.
func top(scores []domain.RawClassification) (domain.RawClassification, bool) {
	if len(scores) == 0 {
		return domain.RawClassification{}, false
	}
	sorted := append([]domain.RawClassification(nil), scores...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Label < sorted[j].Label
	})
	return sorted[0], true
}

// Chunk splits text into pieces of at most maxChars runes, cutting at the last
// whitespace inside the window when there is one.
func Chunk(text string, maxChars int) []string {
	runes := []rune(strings.TrimSpace(text))
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= maxChars {
			chunks = append(chunks, string(runes))
			break
		}
		cut := maxChars
		for i := maxChars; i > 0; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
		if piece := strings.TrimSpace(string(runes[:cut])); piece != "" {
			chunks = append(chunks, piece)
		}
		runes = []rune(strings.TrimLeftFunc(string(runes[cut:]), unicode.IsSpace))
	}
	return chunks
}
