// Package sources holds the per-platform comment fetchers. Each fetcher
// turns one post/product URL into raw comment text for classification.
package sources

import (
	"context"
	"errors"
)

var (
	// ErrInvalidURL means the URL matched a platform but not that
	// platform's expected shape. Surfaced to the client as a 400.
	ErrInvalidURL = errors.New("invalid URL for platform")

	// ErrNoComments is returned by the Instagram fetcher when a post
	// has zero comments. Kept distinct from an empty success because
	// the two produce different client-visible behavior.
	ErrNoComments = errors.New("no comments found")
)

// Fetcher retrieves raw comment text for one platform.
//
// Transient network, auth, or parse failures on Twitter, YouTube, and
// e-commerce URLs degrade to an empty slice with a log line rather than
// an error: the analysis still completes with a zero-valued summary.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]string, error)
}
