// Package analysis implements the aggregation engine: it classifies a
// batch of raw comments, persists per-comment and per-run records, and
// produces the percentage summary.
package analysis

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sentimentscope/backend/internal/classifier"
	"github.com/sentimentscope/backend/internal/enrich"
	"github.com/sentimentscope/backend/internal/metrics"
	"github.com/sentimentscope/backend/internal/storage/models"
	"github.com/sentimentscope/backend/pkg/logger"
)

type Classifier interface {
	Classify(ctx context.Context, text string) (classifier.Result, error)
}

type Store interface {
	InsertComment(comment *models.Comment) error
	InsertAnalysisRun(run *models.AnalysisRun) error
}

type Summary struct {
	PositivePercent       float64 `json:"positive_percent"`
	NegativePercent       float64 `json:"negative_percent"`
	NeutralPercent        float64 `json:"neutral_percent"`
	PurchaseIntentPercent float64 `json:"purchase_intent_percent"`
	TotalComments         int     `json:"total_comments"`
	Platform              string  `json:"platform"`
}

type Engine struct {
	store      Store
	classifier Classifier
	enricher   *enrich.Enricher
}

// NewEngine wires the engine. enricher may be nil, which leaves the
// optional Comment fields unset.
func NewEngine(store Store, clf Classifier, enricher *enrich.Enricher) *Engine {
	return &Engine{
		store:      store,
		classifier: clf,
		enricher:   enricher,
	}
}

// Run classifies rawComments sequentially and returns the summary.
//
// The percentage denominator is the raw fetched count, not the count
// that classified successfully: a skipped comment depresses every
// percentage rather than leaving the denominator. Storage failures on
// individual records are logged and swallowed; the summary is computed
// from the in-memory tallies either way.
func (e *Engine) Run(ctx context.Context, url, platform string, rawComments []string, user *models.User) Summary {
	if len(rawComments) == 0 {
		logger.Warn("No comments found to analyze",
			zap.String("platform", platform),
			zap.String("url", url),
		)
		metrics.DegradedFetches.WithLabelValues(platform).Inc()
		metrics.AnalysisRunsTotal.WithLabelValues(platform, "empty").Inc()
		return Summary{Platform: platform}
	}

	var sentiments []models.Sentiment
	purchaseIntentCount := 0

	for _, text := range rawComments {
		start := time.Now()
		result, err := e.classifier.Classify(ctx, text)
		metrics.ClassifyDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			logger.Error("Error analyzing comment", zap.Error(err))
			metrics.ClassificationFailures.Inc()
			continue
		}

		sentiments = append(sentiments, result.Sentiment)
		if result.PurchaseIntent {
			purchaseIntentCount++
		}
		metrics.CommentsClassified.WithLabelValues(platform, string(result.Sentiment)).Inc()

		comment := &models.Comment{
			ID:             uuid.New().String(),
			Platform:       platform,
			Content:        text,
			Sentiment:      result.Sentiment,
			PurchaseIntent: result.PurchaseIntent,
			UserID:         user.ID,
			CreatedAt:      time.Now(),
		}

		if e.enricher != nil {
			enrichment := e.enricher.Enrich(ctx, text)
			comment.Entities = enrichment.Entities
			comment.Keywords = enrichment.Keywords
			comment.Topics = enrichment.Topics
			comment.Category = enrichment.Category
			comment.Summary = enrichment.Summary
			trend := enrich.TrendScore(sentiments)
			comment.TrendScore = &trend
		}

		if err := e.store.InsertComment(comment); err != nil {
			logger.Error("Database save error", zap.Error(err))
			metrics.PersistenceFailures.WithLabelValues("comment").Inc()
		}
	}

	totalComments := len(rawComments)
	positiveCount := 0
	negativeCount := 0
	neutralCount := 0
	for _, s := range sentiments {
		switch s {
		case models.SentimentPositive:
			positiveCount++
		case models.SentimentNegative:
			negativeCount++
		case models.SentimentNeutral:
			neutralCount++
		}
	}

	summary := Summary{
		PositivePercent:       percent(positiveCount, totalComments),
		NegativePercent:       percent(negativeCount, totalComments),
		NeutralPercent:        percent(neutralCount, totalComments),
		PurchaseIntentPercent: percent(purchaseIntentCount, totalComments),
		TotalComments:         totalComments,
		Platform:              platform,
	}

	run := &models.AnalysisRun{
		ID:                    uuid.New().String(),
		URL:                   url,
		Platform:              platform,
		PositivePercent:       summary.PositivePercent,
		NegativePercent:       summary.NegativePercent,
		PurchaseIntentPercent: summary.PurchaseIntentPercent,
		TotalComments:         totalComments,
		UserID:                user.ID,
		CreatedAt:             time.Now(),
	}

	if err := e.store.InsertAnalysisRun(run); err != nil {
		logger.Error("Error saving analysis history", zap.Error(err))
		metrics.PersistenceFailures.WithLabelValues("analysis_run").Inc()
	}

	metrics.AnalysisRunsTotal.WithLabelValues(platform, "completed").Inc()
	logger.Info("Analysis completed",
		zap.String("platform", platform),
		zap.Int("total_comments", totalComments),
		zap.Int("classified", len(sentiments)),
	)

	return summary
}

// percent is round(count/total*100, 2).
func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}
