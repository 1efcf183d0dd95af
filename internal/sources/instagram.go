package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/sentimentscope/backend/pkg/logger"
)

var shortcodePattern = regexp.MustCompile(`(?:p|reel)/([^/?]+)`)

// InstagramFetcher loads all comments of a post identified by its
// shortcode. Unlike the other fetchers its failures propagate: the
// original service reported Instagram errors to the client instead of
// degrading, and that behavior is preserved.
type InstagramFetcher struct {
	sessionID string
	client    *resty.Client
	baseURL   string
}

type instagramCommentsResponse struct {
	Comments []struct {
		Text string `json:"text"`
	} `json:"comments"`
	NextMaxID string `json:"next_max_id"`
}

func NewInstagramFetcher(sessionID string) *InstagramFetcher {
	return &InstagramFetcher{
		sessionID: sessionID,
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
		baseURL: "https://www.instagram.com",
	}
}

func (i *InstagramFetcher) Fetch(ctx context.Context, postURL string) ([]string, error) {
	shortcode := ExtractShortcode(postURL)
	if shortcode == "" {
		return nil, fmt.Errorf("%w: no shortcode in %q", ErrInvalidURL, postURL)
	}

	var comments []string
	maxID := ""

	for {
		page, nextMaxID, err := i.fetchPage(ctx, shortcode, maxID)
		if err != nil {
			return nil, fmt.Errorf("error fetching comments: %w", err)
		}

		comments = append(comments, page...)
		if nextMaxID == "" {
			break
		}
		maxID = nextMaxID
	}

	if len(comments) == 0 {
		return nil, ErrNoComments
	}

	logger.Info("Instagram comments fetched",
		zap.String("shortcode", shortcode),
		zap.Int("count", len(comments)),
	)
	return comments, nil
}

func (i *InstagramFetcher) fetchPage(ctx context.Context, shortcode, maxID string) ([]string, string, error) {
	commentsURL := fmt.Sprintf("%s/api/v1/media/shortcode/%s/comments/", i.baseURL, shortcode)

	req := i.client.R().SetContext(ctx)
	if i.sessionID != "" {
		req.SetCookie(&http.Cookie{Name: "sessionid", Value: i.sessionID})
	}
	if maxID != "" {
		req.SetQueryParam("max_id", maxID)
	}

	resp, err := req.Get(commentsURL)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode() != 200 {
		return nil, "", fmt.Errorf("instagram API returned status %d", resp.StatusCode())
	}

	var commentsResp instagramCommentsResponse
	if err := json.Unmarshal(resp.Body(), &commentsResp); err != nil {
		return nil, "", fmt.Errorf("failed to parse Instagram response: %w", err)
	}

	texts := make([]string, 0, len(commentsResp.Comments))
	for _, comment := range commentsResp.Comments {
		texts = append(texts, comment.Text)
	}
	return texts, commentsResp.NextMaxID, nil
}

// ExtractShortcode pulls the post shortcode from a /p/ or /reel/ path
// segment. Empty means the URL is not a post URL.
func ExtractShortcode(postURL string) string {
	match := shortcodePattern.FindStringSubmatch(postURL)
	if match == nil {
		return ""
	}
	return match[1]
}
