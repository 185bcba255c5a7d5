package domain

// InputType selects how an analysis request supplies its article.
type InputType string

const (
	InputURL  InputType = "url"
	InputText InputType = "text"
)

// AnalyzeRequest is the orchestrator input.
type AnalyzeRequest struct {
	InputType     InputType `json:"input_type" binding:"required,oneof=url text"`
	URL           *string   `json:"url,omitempty"`
	Text          *string   `json:"text,omitempty"`
	PublishedDate *string   `json:"published_date,omitempty"`
	Language      string    `json:"language,omitempty"`
	RequestID     *string   `json:"request_id,omitempty"`
	Seed          *int64    `json:"seed,omitempty"`
}

// FreshnessStatus is the recency bucket of an article.
type FreshnessStatus string

const (
	FreshnessToday     FreshnessStatus = "today"
	FreshnessYesterday FreshnessStatus = "yesterday"
	FreshnessRecent    FreshnessStatus = "recent"
	FreshnessStale     FreshnessStatus = "stale"
	FreshnessUnknown   FreshnessStatus = "unknown"
)

// FreshnessResult describes how old the article is relative to ReferenceDate.
type FreshnessResult struct {
	Status        FreshnessStatus `json:"status"`
	AgeDays       *int            `json:"age_days"`
	ReferenceDate string          `json:"reference_date"`
	Message       string          `json:"message"`
	SourceDate    *string         `json:"source_date"`
}

// AnalysisMeta is the version/seed echo of a scoring run.
type AnalysisMeta struct {
	ContractVersion string `json:"contract_version"`
	AnalysisVersion string `json:"analysis_version"`
	AnalyzedAt      string `json:"analyzed_at"`
	Seed            int64  `json:"seed"`
}

// AnalysisEnvelope is the full response of one analysis request.
// It is built fresh per request and never mutated after it is returned.
type AnalysisEnvelope struct {
	RequestID *string         `json:"request_id"`
	Article   ArticleContent  `json:"article"`
	Freshness FreshnessResult `json:"freshness"`
	Sentiment SentimentResult `json:"sentiment"`
	Meta      AnalysisMeta    `json:"meta"`
	Errors    []string        `json:"errors"`
}

// Stamp makes a scoring run reproducible and traceable.
type Stamp struct {
	Seed            int64  `json:"seed"`
	ContractVersion string `json:"contract_version"`
	ModelVersion    string `json:"model_version"`
}
