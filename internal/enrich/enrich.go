// Package enrich populates the optional Comment fields (entities,
// keywords, topics, category, summary, trend score). Enrichment is
// best-effort: a failure leaves fields empty, never fails the batch.
package enrich

import (
	"context"
	"math"
	"strings"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/sentimentscope/backend/internal/storage/models"
	"github.com/sentimentscope/backend/pkg/logger"
)

type Enrichment struct {
	Entities []string
	Keywords []string
	Topics   []string
	Category *string
	Summary  *string
}

// Enricher runs local NLP over comment text and, when an annotator is
// configured, asks it for category/topics/summary.
type Enricher struct {
	annotator *Annotator
}

func NewEnricher(annotator *Annotator) *Enricher {
	return &Enricher{annotator: annotator}
}

func (e *Enricher) Enrich(ctx context.Context, text string) *Enrichment {
	result := &Enrichment{}

	doc, err := prose.NewDocument(text)
	if err != nil {
		logger.Warn("Failed to build NLP document", zap.Error(err))
	} else {
		result.Entities = entityNames(doc)
		result.Keywords = nounKeywords(doc)
	}

	if e.annotator != nil {
		annotation, err := e.annotator.Annotate(ctx, text)
		if err != nil {
			logger.Warn("Comment annotation failed", zap.Error(err))
		} else {
			result.Category = annotation.Category
			result.Topics = annotation.Topics
			result.Summary = annotation.Summary
		}
	}

	return result
}

func entityNames(doc *prose.Document) []string {
	seen := make(map[string]bool)
	var names []string
	for _, ent := range doc.Entities() {
		if !seen[ent.Text] {
			seen[ent.Text] = true
			names = append(names, ent.Text)
		}
	}
	return names
}

func nounKeywords(doc *prose.Document) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, tok := range doc.Tokens() {
		if !strings.HasPrefix(tok.Tag, "NN") {
			continue
		}
		lowered := strings.ToLower(tok.Text)
		if len(lowered) < 3 || seen[lowered] {
			continue
		}
		seen[lowered] = true
		keywords = append(keywords, lowered)
	}
	return keywords
}

// TrendScore is the share of positive sentiments as a percentage,
// rounded to two decimals. Zero input yields zero.
func TrendScore(sentiments []models.Sentiment) float64 {
	if len(sentiments) == 0 {
		return 0
	}

	positive := 0
	for _, s := range sentiments {
		if s == models.SentimentPositive {
			positive++
		}
	}
	return math.Round(float64(positive)/float64(len(sentiments))*100*100) / 100
}
