package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/determinism"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

const (
	noQuotesNote        = "Цитаты не найдены в тексте"
	sentimentFailedNote = "Не удалось выполнить анализ тональности"
)

// SentimentScorer scores main text and quotes; failures come back in Errors.
type SentimentScorer interface {
	Score(ctx context.Context, mainText string, quotes []domain.Quote) domain.SentimentResult
}

// AnalyzerDeps wires the driven adapters into the analysis workflow.
type AnalyzerDeps struct {
	Fetcher   ports.ArticleFetcher
	Freshness ports.FreshnessEvaluator
	Quotes    ports.QuoteSplitter
	Sentiment SentimentScorer
	Versions  determinism.Versions
	Logger    *slog.Logger
}

// Analyzer implements the article analysis workflow:
// resolve, freshness, segment, sentiment, stamp.
type Analyzer struct {
	fetcher   ports.ArticleFetcher
	freshness ports.FreshnessEvaluator
	quotes    ports.QuoteSplitter
	sentiment SentimentScorer
	versions  determinism.Versions
	logger    *slog.Logger
	now       func() time.Time
}

// NewAnalyzer constructs the orchestration component.
func NewAnalyzer(deps AnalyzerDeps) *Analyzer {
	return &Analyzer{
		fetcher:   deps.Fetcher,
		freshness: deps.Freshness,
		quotes:    deps.Quotes,
		sentiment: deps.Sentiment,
		versions:  deps.Versions,
		logger:    deps.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Analyze runs one request. Only input resolution can fail it; every later
// step degrades into a diagnostic in the envelope's Errors.
func (a *Analyzer) Analyze(ctx context.Context, req domain.AnalyzeRequest) (domain.AnalysisEnvelope, error) {
	stamp := determinism.New(req.Seed, a.versions)
	ctx = determinism.WithStamp(ctx, stamp)

	requestID := req.RequestID
	if requestID == nil || *requestID == "" {
		id := uuid.NewString()
		requestID = &id
	}

	article, err := a.resolve(ctx, req)
	if err != nil {
		a.debug("analysis rejected", "request_id", *requestID, "code", apperr.CodeOf(err))
		return domain.AnalysisEnvelope{}, err
	}
	if strings.TrimSpace(article.Content) == "" {
		return domain.AnalysisEnvelope{}, apperr.Validation(apperr.CodeEmptyContent, "Article content is empty")
	}

	errs := []string{}

	freshness := domain.FreshnessResult{Status: domain.FreshnessUnknown}
	if a.freshness != nil {
		freshness = a.freshness.Assess(article.PublishedAt)
	}
	if freshness.Status == domain.FreshnessUnknown && freshness.Message != "" {
		errs = append(errs, freshness.Message)
	}

	var quotes []domain.Quote
	mainText := article.Content
	if a.quotes != nil {
		quotes = a.quotes.FindQuotes(article.Content)
		mainText = a.quotes.RemoveQuotes(article.Content)
	}
	if len(quotes) == 0 {
		errs = append(errs, noQuotesNote)
	}

	var sentiment domain.SentimentResult
	if a.sentiment != nil {
		sentiment = a.sentiment.Score(ctx, mainText, quotes)
	} else {
		sentiment = domain.SentimentResult{
			MainText: domain.SentimentSummary{Text: mainText, Label: domain.SentimentNeutral},
			Errors:   []string{fmt.Sprintf("sentiment model unavailable: %v", apperr.ErrModelUnavailable)},
		}
	}
	if sentiment.Quotes == nil {
		sentiment.Quotes = []domain.QuoteSentiment{}
	}
	if sentiment.Errors == nil {
		sentiment.Errors = []string{}
	}
	if len(sentiment.Errors) > 0 {
		errs = append(errs, sentimentFailedNote)
		errs = append(errs, sentiment.Errors...)
	}

	envelope := domain.AnalysisEnvelope{
		RequestID: requestID,
		Article:   article,
		Freshness: freshness,
		Sentiment: sentiment,
		Meta: domain.AnalysisMeta{
			ContractVersion: stamp.ContractVersion,
			AnalysisVersion: stamp.ModelVersion,
			AnalyzedAt:      a.now().Format(time.RFC3339Nano),
			Seed:            stamp.Seed,
		},
		Errors: errs,
	}

	a.debug("analysis completed",
		"request_id", *requestID,
		"seed", stamp.Seed,
		"quotes", len(quotes),
		"freshness", freshness.Status,
		"errors", len(errs))
	return envelope, nil
}

func (a *Analyzer) resolve(ctx context.Context, req domain.AnalyzeRequest) (domain.ArticleContent, error) {
	hasURL := req.URL != nil && strings.TrimSpace(*req.URL) != ""
	hasText := req.Text != nil && strings.TrimSpace(*req.Text) != ""
	if hasURL && hasText {
		return domain.ArticleContent{}, apperr.Validation(apperr.CodeInvalidInput, "exactly one of url or text must be provided")
	}

	switch req.InputType {
	case domain.InputURL:
		if !hasURL {
			return domain.ArticleContent{}, apperr.Validation(apperr.CodeMissingURL, "url must be provided for input_type='url'")
		}
		return a.fetch(ctx, strings.TrimSpace(*req.URL))
	case domain.InputText:
		if !hasText {
			return domain.ArticleContent{}, apperr.Validation(apperr.CodeMissingText, "text must be provided for input_type='text'")
		}
		return domain.ArticleContent{PublishedAt: req.PublishedDate, Content: *req.Text}, nil
	default:
		return domain.ArticleContent{}, apperr.Validation(apperr.CodeInvalidInput, fmt.Sprintf("unsupported input_type %q", req.InputType))
	}
}

func (a *Analyzer) fetch(ctx context.Context, url string) (domain.ArticleContent, error) {
	if a.fetcher == nil {
		return domain.ArticleContent{}, apperr.New(apperr.KindUpstream, apperr.CodeFetchError, "article fetcher is not configured", nil)
	}

	raw, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		return domain.ArticleContent{}, apperr.New(apperr.KindUpstream, apperr.CodeFetchError, "fetch article", err)
	}
	if raw.Error != nil {
		return domain.ArticleContent{}, apperr.Validation(apperr.CodeFetchFailed, *raw.Error)
	}
	return domain.NormalizeArticle(raw), nil
}

func (a *Analyzer) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
