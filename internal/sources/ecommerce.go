package sources

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/sentimentscope/backend/pkg/logger"
)

// reviewSelectors maps a retailer's URL marker to the CSS selector for
// its review text nodes. The router only admits these two retailers.
var reviewSelectors = []struct {
	marker   string
	selector string
}{
	{"amazon.", `span[data-hook="review-body"]`},
	{"flipkart.", "div.t-ZTKy"},
}

// EcommerceFetcher scrapes product review text from retailer pages.
type EcommerceFetcher struct {
	userAgent  string
	maxReviews int
	client     *resty.Client
}

func NewEcommerceFetcher(userAgent string, maxReviews int, timeout time.Duration) *EcommerceFetcher {
	if maxReviews <= 0 {
		maxReviews = 50
	}
	if userAgent == "" {
		userAgent = "Mozilla/5.0"
	}
	return &EcommerceFetcher{
		userAgent:  userAgent,
		maxReviews: maxReviews,
		client:     resty.New().SetTimeout(timeout),
	}
}

// Fetch returns up to maxReviews review texts. Network and parse
// failures degrade to an empty result by policy.
func (e *EcommerceFetcher) Fetch(ctx context.Context, productURL string) ([]string, error) {
	selector := selectorFor(productURL)
	if selector == "" {
		logger.Warn("No review selector for URL", zap.String("url", productURL))
		return nil, nil
	}

	resp, err := e.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", e.userAgent).
		Get(productURL)

	if err != nil {
		logger.Error("Failed to fetch product page", zap.String("url", productURL), zap.Error(err))
		return nil, nil
	}

	if resp.StatusCode() != 200 {
		logger.Error("Product page returned error",
			zap.String("url", productURL),
			zap.Int("status", resp.StatusCode()),
		)
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		logger.Error("Failed to parse product page", zap.String("url", productURL), zap.Error(err))
		return nil, nil
	}

	var reviews []string
	doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= e.maxReviews {
			return false
		}
		text := strings.TrimSpace(s.Text())
		if text != "" {
			reviews = append(reviews, text)
		}
		return true
	})

	logger.Info("E-commerce reviews fetched",
		zap.String("url", productURL),
		zap.Int("count", len(reviews)),
	)
	return reviews, nil
}

func selectorFor(productURL string) string {
	for _, entry := range reviewSelectors {
		if strings.Contains(productURL, entry.marker) {
			return entry.selector
		}
	}
	return ""
}
