package sentiment

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

const vaderCutoff = 0.20

var (
	markdownLink = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	bareURL      = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTag      = regexp.MustCompile(`<[^>]+>`)
)

// RemoveLinks keeps link captions and drops bare URLs.
func RemoveLinks(input string) string {
	input = markdownLink.ReplaceAllString(input, "$1")
	return bareURL.ReplaceAllString(input, "")
}

// PlainText renders markdown and strips markup, links and extra whitespace.
func PlainText(input string) string {
	html := blackfriday.Run([]byte(RemoveLinks(input)), blackfriday.WithNoExtensions())
	text := htmlTag.ReplaceAllString(string(html), " ")
	return strings.Join(strings.Fields(text), " ")
}

// VaderModel is the lexicon backend. It needs no weights, so it is the
// backend of choice for offline runs and tests.
type VaderModel struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

var _ ports.SentimentModel = (*VaderModel)(nil)

// NewVaderModel builds the lexicon analyzer.
func NewVaderModel() *VaderModel {
	return &VaderModel{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Predict maps the VADER compound score to POSITIVE, NEGATIVE or NEUTRAL.
func (m *VaderModel) Predict(ctx context.Context, text string) (domain.RawSentiment, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawSentiment{}, err
	}

	score := m.analyzer.PolarityScores(PlainText(text)).Compound
	switch {
	case score >= vaderCutoff:
		return domain.RawSentiment{PredictedLabel: "POSITIVE", Confidence: math.Abs(score)}, nil
	case score <= -vaderCutoff:
		return domain.RawSentiment{PredictedLabel: "NEGATIVE", Confidence: math.Abs(score)}, nil
	default:
		return domain.RawSentiment{PredictedLabel: "NEUTRAL", Confidence: 1 - math.Abs(score)}, nil
	}
}
