package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/sentimentscope/backend/pkg/logger"
)

// TwitterFetcher pulls replies to a tweet via the v2 recent search API.
type TwitterFetcher struct {
	bearerToken string
	maxReplies  int
	client      *resty.Client
	baseURL     string
}

type twitterSearchResponse struct {
	Data []struct {
		Text string `json:"text"`
	} `json:"data"`
}

func NewTwitterFetcher(bearerToken string, maxReplies int) *TwitterFetcher {
	if maxReplies <= 0 {
		maxReplies = 50
	}
	return &TwitterFetcher{
		bearerToken: bearerToken,
		maxReplies:  maxReplies,
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "SentimentScope/1.0"),
		baseURL: "https://api.twitter.com",
	}
}

// Fetch returns up to maxReplies reply texts, excluding reshares. Any
// API failure degrades to an empty result by policy.
func (t *TwitterFetcher) Fetch(ctx context.Context, postURL string) ([]string, error) {
	tweetID := extractTweetID(postURL)
	if tweetID == "" {
		logger.Warn("Could not extract tweet ID", zap.String("url", postURL))
		return nil, nil
	}

	query := url.QueryEscape(fmt.Sprintf("conversation_id:%s", tweetID))
	searchURL := fmt.Sprintf("%s/2/tweets/search/recent?query=%s&max_results=%d",
		t.baseURL, query, t.maxReplies)

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+t.bearerToken).
		Get(searchURL)

	if err != nil {
		logger.Error("Failed to fetch Twitter replies", zap.String("tweet_id", tweetID), zap.Error(err))
		return nil, nil
	}

	if resp.StatusCode() != 200 {
		logger.Error("Twitter API error",
			zap.String("tweet_id", tweetID),
			zap.Int("status", resp.StatusCode()),
		)
		return nil, nil
	}

	var searchResp twitterSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		logger.Error("Failed to parse Twitter response", zap.Error(err))
		return nil, nil
	}

	comments := make([]string, 0, len(searchResp.Data))
	for _, tweet := range searchResp.Data {
		// Reshares repeat the original text and would skew the tallies.
		if strings.HasPrefix(tweet.Text, "RT") {
			continue
		}
		comments = append(comments, tweet.Text)
		if len(comments) >= t.maxReplies {
			break
		}
	}

	logger.Info("Twitter replies fetched",
		zap.String("tweet_id", tweetID),
		zap.Int("count", len(comments)),
	)
	return comments, nil
}

// extractTweetID takes the final path segment with any query stripped,
// e.g. https://twitter.com/user/status/12345?s=20 -> 12345.
func extractTweetID(postURL string) string {
	trimmed := strings.TrimSuffix(postURL, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 {
		return ""
	}
	last := parts[len(parts)-1]
	return strings.Split(last, "?")[0]
}
