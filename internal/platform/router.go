// Package platform maps a submitted URL to its platform tag and the
// fetcher bound to it.
package platform

import (
	"errors"
	"strings"

	"github.com/sentimentscope/backend/internal/sources"
)

var ErrUnsupportedPlatform = errors.New("unsupported platform")

const (
	Twitter   = "Twitter"
	Instagram = "Instagram"
	YouTube   = "YouTube"
	Ecommerce = "E-commerce"
)

type route struct {
	name    string
	match   func(url string) bool
	fetcher sources.Fetcher
}

// Router resolves URLs against its routes in registration order, so
// overlapping patterns cannot silently fall through to a later entry.
type Router struct {
	routes []route
}

type Fetchers struct {
	Twitter   sources.Fetcher
	Instagram sources.Fetcher
	YouTube   sources.Fetcher
	Ecommerce sources.Fetcher
}

func NewRouter(f Fetchers) *Router {
	return &Router{
		routes: []route{
			{Twitter, containsAny("twitter.com"), f.Twitter},
			{Instagram, containsAny("instagram.com"), f.Instagram},
			{YouTube, containsAny("youtube.com", "youtu.be"), f.YouTube},
			{Ecommerce, containsAny("amazon.", "flipkart."), f.Ecommerce},
		},
	}
}

// Resolve returns the platform tag and fetcher for a URL, or
// ErrUnsupportedPlatform when nothing matches.
func (r *Router) Resolve(url string) (string, sources.Fetcher, error) {
	for _, route := range r.routes {
		if route.match(url) {
			return route.name, route.fetcher, nil
		}
	}
	return "", nil, ErrUnsupportedPlatform
}

func containsAny(patterns ...string) func(string) bool {
	return func(url string) bool {
		for _, pattern := range patterns {
			if strings.Contains(url, pattern) {
				return true
			}
		}
		return false
	}
}
