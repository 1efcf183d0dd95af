package models

import "time"

type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Comment is one classified comment as persisted per analysis run.
// The enrichment fields stay nil unless an enrichment pass ran.
type Comment struct {
	ID             string
	Platform       string
	Content        string
	Sentiment      Sentiment
	PurchaseIntent bool
	Category       *string
	Entities       []string
	Topics         []string
	Keywords       []string
	Summary        *string
	TrendScore     *float64
	UserID         string
	CreatedAt      time.Time
}

// AnalysisRun is the immutable per-run record written once per
// successful analysis that saw at least one comment.
type AnalysisRun struct {
	ID                    string
	URL                   string
	Platform              string
	PositivePercent       float64
	NegativePercent       float64
	PurchaseIntentPercent float64
	TotalComments         int
	UserID                string
	CreatedAt             time.Time
}
