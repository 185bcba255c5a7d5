package ml

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

// LogisticModel is an in-process logistic regression over the water features.
// It answers both call shapes; PredictProba returns [p(water), p(not water)].
type LogisticModel struct {
	weights   []float64
	intercept float64
}

var _ ports.ProbabilityModel = (*LogisticModel)(nil)

// NewLogisticModel validates the weights against the feature vector width.
func NewLogisticModel(weights []float64, intercept float64) (*LogisticModel, error) {
	if len(weights) != len(domain.FeatureNames) {
		return nil, fmt.Errorf("logistic model: want %d weights, got %d", len(domain.FeatureNames), len(weights))
	}
	for _, w := range append([]float64{intercept}, weights...) {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("logistic model: non-finite coefficient %v", w)
		}
	}
	return &LogisticModel{weights: append([]float64(nil), weights...), intercept: intercept}, nil
}

// Predict returns the water probability.
func (m *LogisticModel) Predict(ctx context.Context, features []float64) (float64, error) {
	if len(features) != len(m.weights) {
		return 0, fmt.Errorf("logistic model: want %d features, got %d: %w", len(m.weights), len(features), apperr.ErrMalformedOutput)
	}
	z := floats.Dot(m.weights, features) + m.intercept
	return 1 / (1 + math.Exp(-z)), nil
}

// PredictProba returns [p, 1-p].
func (m *LogisticModel) PredictProba(ctx context.Context, features []float64) ([]float64, error) {
	p, err := m.Predict(ctx, features)
	if err != nil {
		return nil, err
	}
	return []float64{p, 1 - p}, nil
}
