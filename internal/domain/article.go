package domain

// RawArticle is the fetcher output before normalization.
type RawArticle struct {
	Title      *string `json:"title,omitempty"`
	Author     *string `json:"author,omitempty"`
	Date       *string `json:"date,omitempty"`
	Text       *string `json:"text,omitempty"`
	URL        string  `json:"url"`
	ParserType string  `json:"parser_type,omitempty"`
	// Error is set by the fetcher when the page could not be turned into an article.
	Error *string `json:"error,omitempty"`
}

// ArticleContent is the normalized article every analysis runs against.
type ArticleContent struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	PublishedAt *string `json:"published_at"`
	Content     string  `json:"content"`
}

// NormalizeArticle converts a fetcher result into ArticleContent.
func NormalizeArticle(raw RawArticle) ArticleContent {
	content := ""
	if raw.Text != nil {
		content = *raw.Text
	}
	return ArticleContent{
		Title:       raw.Title,
		Author:      raw.Author,
		PublishedAt: raw.Date,
		Content:     content,
	}
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
