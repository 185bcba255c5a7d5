package water

import (
	"context"
	"errors"
	"fmt"
	"math"

	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

const (
	LabelWater    = "water"
	LabelNotWater = "not water"

	// Threshold is inclusive: p == 0.5 is water.
	Threshold = 0.5
)

// Classifier turns a feature vector into a water verdict using a probability model
// that may expose either Predict or PredictProba.
type Classifier struct {
	model ports.ProbabilityModel
}

// NewClassifier wraps a probability model.
func NewClassifier(model ports.ProbabilityModel) *Classifier {
	return &Classifier{model: model}
}

// Classify tries Predict first and falls back to PredictProba[0]. When both fail
// it returns a zero-confidence "not water" verdict together with the cause.
func (c *Classifier) Classify(ctx context.Context, fv domain.FeatureVector) (domain.Verdict, error) {
	vec := fv.Values()

	p, err := c.predict(ctx, vec)
	if err != nil {
		var fallbackErr error
		p, fallbackErr = c.predictProba(ctx, vec)
		if fallbackErr != nil {
			return domain.NewVerdict(0, Threshold, LabelWater, LabelNotWater),
				fmt.Errorf("classify water: %w", errors.Join(err, fallbackErr))
		}
	}

	return domain.NewVerdict(p, Threshold, LabelWater, LabelNotWater), nil
}

func (c *Classifier) predict(ctx context.Context, vec []float64) (p float64, err error) {
	if c.model == nil {
		return 0, fmt.Errorf("predict: no model: %w", apperr.ErrModelUnavailable)
	}
	defer recoverModel("predict", &err)

	p, err = c.model.Predict(ctx, vec)
	if err != nil {
		return 0, modelErr("predict", err)
	}
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("predict returned %v: %w", p, apperr.ErrMalformedOutput)
	}
	return p, nil
}

func (c *Classifier) predictProba(ctx context.Context, vec []float64) (p float64, err error) {
	if c.model == nil {
		return 0, fmt.Errorf("predict_proba: no model: %w", apperr.ErrModelUnavailable)
	}
	defer recoverModel("predict_proba", &err)

	proba, err := c.model.PredictProba(ctx, vec)
	if err != nil {
		return 0, modelErr("predict_proba", err)
	}
	if len(proba) == 0 {
		return 0, fmt.Errorf("predict_proba returned no classes: %w", apperr.ErrMalformedOutput)
	}
	if math.IsNaN(proba[0]) || math.IsInf(proba[0], 0) {
		return 0, fmt.Errorf("predict_proba returned %v: %w", proba[0], apperr.ErrMalformedOutput)
	}
	return proba[0], nil
}

func recoverModel(op string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: panic: %v: %w", op, r, apperr.ErrModelUnavailable)
	}
}

func modelErr(op string, err error) error {
	if errors.Is(err, apperr.ErrMalformedOutput) || errors.Is(err, apperr.ErrModelUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, err, apperr.ErrModelUnavailable)
}
