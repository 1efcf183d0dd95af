package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/sentimentscope/backend/pkg/logger"
)

var (
	watchParamPattern = regexp.MustCompile(`v=([^&]+)`)
	shortLinkPattern  = regexp.MustCompile(`youtu\.be/([^/?]+)`)
)

// YouTubeFetcher loads top-level comment threads via the Data API v3.
type YouTubeFetcher struct {
	apiKey      string
	maxComments int
	client      *resty.Client
	baseURL     string
}

type youTubeCommentThreadsResponse struct {
	Items []struct {
		Snippet struct {
			TopLevelComment struct {
				Snippet struct {
					TextDisplay string `json:"textDisplay"`
				} `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
}

func NewYouTubeFetcher(apiKey string, maxComments int) *YouTubeFetcher {
	if maxComments <= 0 {
		maxComments = 50
	}
	return &YouTubeFetcher{
		apiKey:      apiKey,
		maxComments: maxComments,
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "SentimentScope/1.0"),
		baseURL: "https://www.googleapis.com",
	}
}

// Fetch returns up to maxComments top-level comment texts. API failures
// degrade to an empty result by policy.
func (y *YouTubeFetcher) Fetch(ctx context.Context, videoURL string) ([]string, error) {
	videoID := ExtractVideoID(videoURL)
	if videoID == "" {
		logger.Warn("Could not extract YouTube video ID", zap.String("url", videoURL))
		return nil, nil
	}

	threadsURL := fmt.Sprintf("%s/youtube/v3/commentThreads?part=snippet&videoId=%s&maxResults=%d&key=%s",
		y.baseURL, videoID, y.maxComments, y.apiKey)

	resp, err := y.client.R().
		SetContext(ctx).
		Get(threadsURL)

	if err != nil {
		logger.Error("Failed to fetch YouTube comments", zap.String("video_id", videoID), zap.Error(err))
		return nil, nil
	}

	if resp.StatusCode() != 200 {
		logger.Error("YouTube API error",
			zap.String("video_id", videoID),
			zap.Int("status", resp.StatusCode()),
		)
		return nil, nil
	}

	var threadsResp youTubeCommentThreadsResponse
	if err := json.Unmarshal(resp.Body(), &threadsResp); err != nil {
		logger.Error("Failed to parse YouTube response", zap.Error(err))
		return nil, nil
	}

	comments := make([]string, 0, len(threadsResp.Items))
	for _, item := range threadsResp.Items {
		comments = append(comments, item.Snippet.TopLevelComment.Snippet.TextDisplay)
	}

	logger.Info("YouTube comments fetched",
		zap.String("video_id", videoID),
		zap.Int("count", len(comments)),
	)
	return comments, nil
}

// ExtractVideoID resolves the video ID from a v= query parameter or a
// youtu.be short link.
func ExtractVideoID(videoURL string) string {
	if match := watchParamPattern.FindStringSubmatch(videoURL); match != nil {
		return match[1]
	}
	if match := shortLinkPattern.FindStringSubmatch(videoURL); match != nil {
		return match[1]
	}
	return ""
}
