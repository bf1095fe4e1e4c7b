package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// Google's Custom Search API returns at most 10 items per request.
const googleMaxResults = 10

// GoogleSearch queries a Programmable Search Engine.
type GoogleSearch struct {
	svc *customsearch.Service
	cx  string
}

func NewGoogleSearch(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*GoogleSearch, error) {
	if strings.TrimSpace(cx) == "" {
		return nil, errors.New("google search engine id (cx) is required")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}

	return &GoogleSearch{svc: svc, cx: cx}, nil
}

func (g *GoogleSearch) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 || limit > googleMaxResults {
		limit = googleMaxResults
	}

	resp, err := g.svc.Cse.List().Cx(g.cx).Q(query).Num(int64(limit)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, Result{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}

	return results, nil
}
