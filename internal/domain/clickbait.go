package domain

import "time"

// RawClassification is a text-classification model answer.
type RawClassification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClickbaitRequest is the standalone clickbait input.
type ClickbaitRequest struct {
	Headline string  `json:"headline" binding:"required"`
	Language *string `json:"language,omitempty"`
}

// ClickbaitReport is the clickbait response, success or fallback.
type ClickbaitReport struct {
	IsClickbait     bool      `json:"is_clickbait"`
	Score           float64   `json:"score"`
	Label           string    `json:"label"`
	ConfidenceNote  *string   `json:"confidence_note"`
	ContractVersion string    `json:"contract_version"`
	DetectorVersion string    `json:"detector_version"`
	EvaluatedAt     time.Time `json:"evaluated_at"`
}

// StatusUnavailable is the sentinel label of fallback responses.
const StatusUnavailable = "status unavailable"
