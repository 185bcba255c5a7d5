package hf

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/domain"
)

// classifier is the part of TextClassifier the model adapters depend on.
type classifier interface {
	Classify(ctx context.Context, texts []string) ([][]domain.RawClassification, error)
}

// TextClassifier runs a local ONNX text-classification pipeline.
type TextClassifier struct {
	mu       sync.Mutex
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

// NewTextClassifier opens an ORT session and loads the model found in modelDir.
// When modelDir holds no model and repo is set, the model is downloaded from
// the Hugging Face hub into modelDir first.
func NewTextClassifier(name, modelDir, repo string) (*TextClassifier, error) {
	path, err := ResolveModelDir(modelDir)
	if err != nil && repo != "" {
		path, err = hugot.DownloadModel(repo, modelDir, hugot.NewDownloadOptions())
		if err != nil {
			return nil, fmt.Errorf("download %s model %s: %w", name, repo, err)
		}
	}
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("init hugot session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.TextClassificationConfig{
		ModelPath: path,
		Name:      name,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("init %s pipeline: %w", name, err), session.Destroy())
	}

	return &TextClassifier{session: session, pipeline: pipeline}, nil
}

// Classify returns the label scores of every input text.
func (c *TextClassifier) Classify(ctx context.Context, texts []string) ([][]domain.RawClassification, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("classify: %w: %w", err, apperr.ErrModelUnavailable)
	}

	c.mu.Lock()
	output, err := c.pipeline.RunPipeline(texts)
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("run pipeline: %w: %w", err, apperr.ErrModelUnavailable)
	}
	if len(output.ClassificationOutputs) != len(texts) {
		return nil, fmt.Errorf("pipeline returned %d results for %d inputs: %w",
			len(output.ClassificationOutputs), len(texts), apperr.ErrMalformedOutput)
	}

	out := make([][]domain.RawClassification, len(output.ClassificationOutputs))
	for i, scores := range output.ClassificationOutputs {
		out[i] = make([]domain.RawClassification, 0, len(scores))
		for _, s := range scores {
			out[i] = append(out[i], domain.RawClassification{Label: s.Label, Score: float64(s.Score)})
		}
	}
	return out, nil
}

// Close releases the ORT session.
func (c *TextClassifier) Close() error {
	if c == nil || c.session == nil {
		return nil
	}
	return c.session.Destroy()
}
