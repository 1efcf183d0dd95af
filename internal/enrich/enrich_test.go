package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentimentscope/backend/internal/storage/models"
)

func TestTrendScore(t *testing.T) {
	tests := []struct {
		name       string
		sentiments []models.Sentiment
		expected   float64
	}{
		{
			name:       "Empty",
			sentiments: nil,
			expected:   0,
		},
		{
			name:       "All positive",
			sentiments: []models.Sentiment{models.SentimentPositive, models.SentimentPositive},
			expected:   100,
		},
		{
			name:       "All negative",
			sentiments: []models.Sentiment{models.SentimentNegative},
			expected:   0,
		},
		{
			name: "One third positive",
			sentiments: []models.Sentiment{
				models.SentimentPositive,
				models.SentimentNegative,
				models.SentimentNegative,
			},
			expected: 33.33,
		},
		{
			name: "Neutral counts against",
			sentiments: []models.Sentiment{
				models.SentimentPositive,
				models.SentimentNeutral,
			},
			expected: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TrendScore(tt.sentiments))
		})
	}
}

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		category string
		topics   []string
		summary  string
	}{
		{
			name:     "Plain JSON",
			content:  `{"category": "electronics", "topics": ["battery", "price"], "summary": "Praises battery life."}`,
			category: "electronics",
			topics:   []string{"battery", "price"},
			summary:  "Praises battery life.",
		},
		{
			name: "Fenced JSON",
			content: "```json\n" +
				`{"category": "fashion", "topics": ["fit"], "summary": "Complains about sizing."}` +
				"\n```",
			category: "fashion",
			topics:   []string{"fit"},
			summary:  "Complains about sizing.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			annotation, err := parseAnnotation(tt.content)
			require.NoError(t, err)
			require.NotNil(t, annotation.Category)
			assert.Equal(t, tt.category, *annotation.Category)
			assert.Equal(t, tt.topics, annotation.Topics)
			require.NotNil(t, annotation.Summary)
			assert.Equal(t, tt.summary, *annotation.Summary)
		})
	}
}

func TestParseAnnotationEmptyFields(t *testing.T) {
	annotation, err := parseAnnotation(`{"category": "", "topics": [], "summary": ""}`)
	require.NoError(t, err)
	assert.Nil(t, annotation.Category)
	assert.Nil(t, annotation.Summary)
	assert.Empty(t, annotation.Topics)
}

func TestParseAnnotationInvalid(t *testing.T) {
	_, err := parseAnnotation("not json at all")
	assert.Error(t, err)
}

func TestEnricher_EnrichWithoutAnnotator(t *testing.T) {
	enricher := NewEnricher(nil)

	result := enricher.Enrich(context.Background(), "The Samsung charger broke after one week")

	require.NotNil(t, result)
	assert.Nil(t, result.Category)
	assert.Nil(t, result.Summary)
	// Noun keywords come from the local tagger.
	assert.Contains(t, result.Keywords, "charger")
	assert.Contains(t, result.Keywords, "week")
}
