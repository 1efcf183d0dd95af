package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/sentimentscope/backend/pkg/circuitbreaker"
	"github.com/sentimentscope/backend/pkg/logger"
	"github.com/sentimentscope/backend/pkg/retry"
)

const annotateSystemPrompt = `You label short user comments about products and posts.
Given one comment, respond with a JSON object:
{"category": "<one-word product/content category>", "topics": ["..."], "summary": "<one sentence>"}
Respond with ONLY the JSON object.`

type Annotation struct {
	Category *string
	Topics   []string
	Summary  *string
}

// Annotator asks a chat model for category/topics/summary labels.
type Annotator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewAnnotator(apiKey, model string, maxTokens int) *Annotator {
	cb := circuitbreaker.New("annotator", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("Comment annotator initialized", zap.String("model", model))

	return &Annotator{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

func (a *Annotator) Annotate(ctx context.Context, text string) (*Annotation, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var content string

	err := a.cb.Execute(ctx, func() error {
		return retry.Do(ctx, a.retryConfig, func() error {
			resp, err := a.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:     a.model,
					MaxTokens: a.maxTokens,
					Messages: []openai.ChatCompletionMessage{
						{Role: openai.ChatMessageRoleSystem, Content: annotateSystemPrompt},
						{Role: openai.ChatMessageRoleUser, Content: text},
					},
				},
			)

			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}

			content = resp.Choices[0].Message.Content
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return parseAnnotation(content)
}

func parseAnnotation(content string) (*Annotation, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var parsed struct {
		Category string   `json:"category"`
		Topics   []string `json:"topics"`
		Summary  string   `json:"summary"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse annotation: %w", err)
	}

	annotation := &Annotation{Topics: parsed.Topics}
	if parsed.Category != "" {
		annotation.Category = &parsed.Category
	}
	if parsed.Summary != "" {
		annotation.Summary = &parsed.Summary
	}
	return annotation, nil
}
