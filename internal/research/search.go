// Package research gathers company background for resume optimization: web
// search, an LLM summary of the results, and a cache in front of both.
package research

import (
	"context"
)

// Search providers accepted in configuration.
const (
	ProviderDuckDuckGo = "duckduckgo"
	ProviderGoogle     = "google"
	ProviderNone       = "none"
)

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher runs a web search and returns at most limit results.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}
