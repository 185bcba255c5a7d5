package domain

import (
	"math"
	"time"
)

// FeatureNames is the fixed order the water model expects.
var FeatureNames = []string{
	"readability_index",
	"adj_ratio",
	"adv_ratio",
	"repetition_ratio",
}

// FeatureVector is the linguistic fingerprint of a text.
type FeatureVector struct {
	ReadabilityIndex float64 `json:"readability_index"`
	AdjRatio         float64 `json:"adj_ratio"`
	AdvRatio         float64 `json:"adv_ratio"`
	RepetitionRatio  float64 `json:"repetition_ratio"`
}

// Values returns the features in FeatureNames order.
func (f FeatureVector) Values() []float64 {
	return []float64{f.ReadabilityIndex, f.AdjRatio, f.AdvRatio, f.RepetitionRatio}
}

// POS is a coarse part-of-speech tag.
type POS string

const (
	POSAdjFull  POS = "ADJF"
	POSAdjShort POS = "ADJS"
	POSAdverb   POS = "ADVB"
	POSNoun     POS = "NOUN"
	POSVerb     POS = "VERB"
	POSInfinit  POS = "INFN"
	POSParticip POS = "PRTF"
	POSGerund   POS = "GRND"
	POSOther    POS = "OTHER"
)

// Verdict is a binary classification with clamped confidence.
type Verdict struct {
	Label      string  `json:"label"`
	IsPositive bool    `json:"is_positive"`
	Confidence float64 `json:"confidence"`
	Percentage float64 `json:"percentage"`
}

// NewVerdict clamps confidence into [0,1] and derives the percentage.
// NaN is treated as 0.
func NewVerdict(confidence, threshold float64, positive, negative string) Verdict {
	c := Clamp01(confidence)
	v := Verdict{Confidence: c, Percentage: c * 100, IsPositive: c >= threshold, Label: negative}
	if v.IsPositive {
		v.Label = positive
	}
	return v
}

// Clamp01 bounds v to [0,1]; NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// WaterRequest is the standalone water-detection input.
type WaterRequest struct {
	Text            string  `json:"text" binding:"required"`
	IncludeFeatures *bool   `json:"include_features,omitempty"`
	Language        *string `json:"language,omitempty"`
}

// WantsFeatures reports whether features were requested; the default is true.
func (r WaterRequest) WantsFeatures() bool {
	return r.IncludeFeatures == nil || *r.IncludeFeatures
}

// WaterReport is the standalone water-detection response, success or fallback.
type WaterReport struct {
	IsWater         bool              `json:"is_water"`
	Label           string            `json:"label"`
	Confidence      float64           `json:"confidence"`
	WaterPercentage float64           `json:"water_percentage"`
	Features        *FeatureVector    `json:"features"`
	Interpretations map[string]string `json:"interpretations"`
	ContractVersion string            `json:"contract_version"`
	DetectorVersion string            `json:"detector_version"`
	EvaluatedAt     time.Time         `json:"evaluated_at"`
	Errors          []string          `json:"errors,omitempty"`
}
