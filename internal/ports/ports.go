package ports

import (
	"context"

	"NewsAnalyzer/internal/domain"
)

// ArticleFetcher downloads and parses an article page.
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (domain.RawArticle, error)
}

// ArticleCache keeps recently fetched articles keyed by URL.
type ArticleCache interface {
	Get(ctx context.Context, url string) (domain.RawArticle, bool, error)
	Put(ctx context.Context, url string, article domain.RawArticle) error
}

// Morphology lemmatizes and tags single word tokens.
type Morphology interface {
	Lemma(word string) string
	Tag(word string) domain.POS
}

// ProbabilityModel is a binary classifier over a numeric feature vector.
// Implementations may support either call shape; the other should return an error.
type ProbabilityModel interface {
	Predict(ctx context.Context, features []float64) (float64, error)
	PredictProba(ctx context.Context, features []float64) ([]float64, error)
}

// SentimentModel scores arbitrarily long text; chunking is its own concern.
type SentimentModel interface {
	Predict(ctx context.Context, text string) (domain.RawSentiment, error)
}

// ClickbaitModel classifies a single headline.
type ClickbaitModel interface {
	Predict(ctx context.Context, headline string) (domain.RawClassification, error)
}

// FreshnessEvaluator maps a publish timestamp to a recency bucket.
type FreshnessEvaluator interface {
	Assess(publishedAt *string) domain.FreshnessResult
}

// QuoteSplitter separates quoted speech from narrative text.
type QuoteSplitter interface {
	FindQuotes(text string) []domain.Quote
	RemoveQuotes(text string) string
}
