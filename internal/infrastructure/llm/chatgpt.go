package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/config"
	"NewsAnalyzer/internal/determinism"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

const systemPrompt = `Ты классификатор заголовков русскоязычных новостей.
Определи, является ли заголовок кликбейтом.
Верни только JSON без пояснений и без Markdown:
{"label": "кликбейт" | "не кликбейт", "score": число от 0 до 1}
где score это вероятность того, что заголовок является кликбейтом.`

// ClickbaitClassifier implements ports.ClickbaitModel backed by OpenAI-compatible APIs.
type ClickbaitClassifier struct {
	client *openai.Client
	model  string
}

var _ ports.ClickbaitModel = (*ClickbaitClassifier)(nil)

// NewClickbaitClassifier builds a classifier from configuration.
func NewClickbaitClassifier(cfg config.OpenAIConfig) (*ClickbaitClassifier, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("chatgpt classifier misconfigured: api key and model are required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &ClickbaitClassifier{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// Predict asks the chat model for a label and score. Temperature is 0 and the
// request seed is forwarded so repeated calls agree.
func (c *ClickbaitClassifier) Predict(ctx context.Context, headline string) (domain.RawClassification, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(headline),
		}),
		Model:       openai.F(openai.ChatModel(c.model)),
		Temperature: openai.Float(0),
		Seed:        openai.Int(determinism.SeedFromContext(ctx)),
	})
	if err != nil {
		return domain.RawClassification{}, fmt.Errorf("chat completion: %w: %w", err, apperr.ErrModelUnavailable)
	}
	if len(completion.Choices) == 0 {
		return domain.RawClassification{}, fmt.Errorf("chat completion without choices: %w", apperr.ErrMalformedOutput)
	}

	return parseAnswer(completion.Choices[0].Message.Content)
}

func parseAnswer(content string) (domain.RawClassification, error) {
	var answer struct {
		Label *string  `json:"label"`
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(cleanResponse(content)), &answer); err != nil {
		return domain.RawClassification{}, fmt.Errorf("parse chat answer: %w: %w", err, apperr.ErrMalformedOutput)
	}
	if answer.Label == nil || answer.Score == nil {
		return domain.RawClassification{}, fmt.Errorf("chat answer misses label or score: %w", apperr.ErrMalformedOutput)
	}
	return domain.RawClassification{
		Label: strings.TrimSpace(*answer.Label),
		Score: *answer.Score,
	}, nil
}

func cleanResponse(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.ReplaceAll(response, "“", `"`)
	response = strings.ReplaceAll(response, "”", `"`)
	return strings.TrimSpace(response)
}
