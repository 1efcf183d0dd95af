package classifier

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentimentscope/backend/internal/storage/models"
)

func TestHasPurchaseIntent(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"Direct buy", "I will buy this!", true},
		{"Uppercase", "PURCHASE NOW", true},
		{"Cart mention", "added it to my cart yesterday", true},
		{"Checkout mention", "the checkout flow was smooth", true},
		{"Multi-word term", "I want to buy one for my sister", true},
		{"No intent", "Terrible product", false},
		{"Sentiment-positive without intent", "Absolutely love it, 5 stars", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HasPurchaseIntent(tt.text))
		})
	}
}

func TestStarIndexFromLabel(t *testing.T) {
	tests := []struct {
		label    string
		expected int
		wantErr  bool
	}{
		{"1 star", 0, false},
		{"3 stars", 2, false},
		{"5 stars", 4, false},
		{"no stars", 0, true},
		{"", 0, true},
		{"6 stars", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			index, err := starIndexFromLabel(tt.label)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, index)
		})
	}
}

func TestSentimentFromStarIndex(t *testing.T) {
	// Only the top class counts as positive; mid ratings are negative.
	for index := 0; index <= 3; index++ {
		assert.Equal(t, models.SentimentNegative, sentimentFromStarIndex(index), "index %d", index)
	}
	assert.Equal(t, models.SentimentPositive, sentimentFromStarIndex(4))
}

func TestParseScores(t *testing.T) {
	body := []byte(`[[{"label":"2 stars","score":0.1},{"label":"5 stars","score":0.7},{"label":"4 stars","score":0.2}]]`)

	labels, err := parseScores(body)
	require.NoError(t, err)
	require.Len(t, labels, 3)
	assert.Equal(t, "5 stars", labels[0].Label)
	assert.Equal(t, 0.7, labels[0].Score)
}

func TestParseScoresEmpty(t *testing.T) {
	_, err := parseScores([]byte(`[[]]`))
	assert.Error(t, err)

	_, err = parseScores([]byte(`not json`))
	assert.Error(t, err)
}

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, "nlptown/bert-base-multilingual-uncased-sentiment", "", 5*time.Second)
}

func TestClient_Classify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/nlptown/bert-base-multilingual-uncased-sentiment", r.URL.Path)
		fmt.Fprint(w, `[[{"label":"5 stars","score":0.91},{"label":"4 stars","score":0.05}]]`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.Classify(context.Background(), "Absolutely love it, 5 stars")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentPositive, result.Sentiment)
	assert.Equal(t, 0.91, result.Confidence)
	assert.False(t, result.PurchaseIntent)
}

func TestClient_ClassifyDeterministic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[[{"label":"3 stars","score":0.6},{"label":"2 stars","score":0.4}]]`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	first, err := client.Classify(context.Background(), "I will buy this!")
	require.NoError(t, err)

	second, err := client.Classify(context.Background(), "I will buy this!")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, models.SentimentNegative, first.Sentiment)
	assert.True(t, first.PurchaseIntent)
}

func TestClient_ClassifyEmptyText(t *testing.T) {
	client := newTestClient("http://localhost:0")

	_, err := client.Classify(context.Background(), "   ")
	assert.Error(t, err)
}
