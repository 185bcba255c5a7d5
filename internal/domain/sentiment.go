package domain

import "strings"

// SentimentLabel is the three-class sentiment contract.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// SegmentKind tells main narrative text apart from quoted speech.
type SegmentKind string

const (
	SegmentMain  SegmentKind = "main"
	SegmentQuote SegmentKind = "quote"
)

// TextSegment is an independently scorable piece of a document.
// Position is the 0-based index among quotes, not a character offset.
type TextSegment struct {
	Text     string      `json:"text"`
	Kind     SegmentKind `json:"kind"`
	Position int         `json:"position"`
	Author   *string     `json:"author,omitempty"`
}

// Quote is a directly quoted span with the people it is attributed to.
type Quote struct {
	Text    string   `json:"quote"`
	Authors []string `json:"authors"`
}

// Segments returns the quote list as TextSegments in document order.
func Segments(quotes []Quote) []TextSegment {
	out := make([]TextSegment, 0, len(quotes))
	for i, q := range quotes {
		seg := TextSegment{Text: q.Text, Kind: SegmentQuote, Position: i}
		if len(q.Authors) > 0 {
			seg.Author = StringPtr(strings.TrimSpace(q.Authors[0]))
		}
		out = append(out, seg)
	}
	return out
}

// RawSentiment is what a sentiment model returns before label mapping.
type RawSentiment struct {
	PredictedLabel string  `json:"predicted_label"`
	Confidence     float64 `json:"confidence"`
}

// SentimentSummary is the contract result for the main text.
type SentimentSummary struct {
	Text       string         `json:"text"`
	Label      SentimentLabel `json:"sentiment_label"`
	Confidence float64        `json:"confidence"`
}

// QuoteSentiment is the contract result for one quote.
type QuoteSentiment struct {
	QuoteText  string         `json:"quote_text"`
	Label      SentimentLabel `json:"sentiment_label"`
	Confidence float64        `json:"confidence"`
	Position   int            `json:"position"`
	Author     *string        `json:"author"`
}

// SentimentResult groups main-text and per-quote sentiment.
type SentimentResult struct {
	MainText SentimentSummary `json:"main_text"`
	Quotes   []QuoteSentiment `json:"quotes"`
	Errors   []string         `json:"errors"`
}
