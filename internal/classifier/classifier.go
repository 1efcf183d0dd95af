// Package classifier scores comment text against the 5-way star-rating
// sentiment model and detects purchase intent lexically.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/sentimentscope/backend/internal/storage/models"
	"github.com/sentimentscope/backend/pkg/circuitbreaker"
	"github.com/sentimentscope/backend/pkg/logger"
	"github.com/sentimentscope/backend/pkg/retry"
)

// purchaseVocabulary is matched case-insensitively and independently of
// the sentiment model.
var purchaseVocabulary = []string{
	"buy",
	"purchase",
	"order",
	"cart",
	"checkout",
	"will order",
	"want to buy",
}

type Result struct {
	Sentiment      models.Sentiment
	Confidence     float64
	PurchaseIntent bool
}

// Client calls the hosted inference API for the star-rating model.
type Client struct {
	http        *resty.Client
	endpoint    string
	model       string
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

type scoredLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func NewClient(endpoint, model, apiKey string, timeout time.Duration) *Client {
	http := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		http.SetAuthToken(apiKey)
	}

	cb := circuitbreaker.New("sentiment", circuitbreaker.Config{
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

	logger.Info("Sentiment classifier initialized", zap.String("model", model))

	return &Client{
		http:        http,
		endpoint:    strings.TrimRight(endpoint, "/"),
		model:       model,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

// Classify scores one comment. A failure here is the caller's cue to
// skip the comment, never to abort the batch.
func (c *Client) Classify(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("empty comment text")
	}

	var labels []scoredLabel

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.http.R().
				SetContext(ctx).
				SetBody(map[string]string{"inputs": text}).
				Post(fmt.Sprintf("%s/models/%s", c.endpoint, c.model))

			if err != nil {
				return fmt.Errorf("failed to call inference API: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("inference API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
			}

			labels, err = parseScores(resp.Body())
			return err
		})
	})

	if err != nil {
		return Result{}, err
	}

	top := labels[0]
	starIndex, err := starIndexFromLabel(top.Label)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Sentiment:      sentimentFromStarIndex(starIndex),
		Confidence:     top.Score,
		PurchaseIntent: HasPurchaseIntent(text),
	}

	logger.Debug("Comment classified",
		zap.String("label", top.Label),
		zap.Float64("score", top.Score),
		zap.String("sentiment", string(result.Sentiment)),
	)

	return result, nil
}

// parseScores unwraps the API's nested label array and sorts it best
// score first.
func parseScores(body []byte) ([]scoredLabel, error) {
	var nested [][]scoredLabel
	if err := json.Unmarshal(body, &nested); err != nil {
		var flat []scoredLabel
		if err := json.Unmarshal(body, &flat); err != nil {
			return nil, fmt.Errorf("failed to parse inference response: %w", err)
		}
		nested = [][]scoredLabel{flat}
	}

	if len(nested) == 0 || len(nested[0]) == 0 {
		return nil, fmt.Errorf("inference response contained no labels")
	}

	labels := nested[0]
	sort.Slice(labels, func(i, j int) bool {
		return labels[i].Score > labels[j].Score
	})
	return labels, nil
}

// starIndexFromLabel maps labels like "5 stars" to the model's 0-4
// output index.
func starIndexFromLabel(label string) (int, error) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0, fmt.Errorf("unrecognized sentiment label %q", label)
	}

	stars, err := strconv.Atoi(fields[0])
	if err != nil || stars < 1 || stars > 5 {
		return 0, fmt.Errorf("unrecognized sentiment label %q", label)
	}
	return stars - 1, nil
}

// sentimentFromStarIndex keeps the coarse two-bucket mapping: only a
// top rating (index > 3, i.e. 5 stars) counts as positive.
func sentimentFromStarIndex(index int) models.Sentiment {
	if index > 3 {
		return models.SentimentPositive
	}
	return models.SentimentNegative
}

// HasPurchaseIntent reports whether the lowercased text contains any
// purchase-vocabulary term.
func HasPurchaseIntent(text string) bool {
	lowered := strings.ToLower(text)
	for _, term := range purchaseVocabulary {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}
