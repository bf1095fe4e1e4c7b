package research

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	duckDuckGoURL   = "https://html.duckduckgo.com/html/"
	userAgent       = "careerflow/1.0 (+https://github.com/bhanmrinal/cf-project)"
	contentEncoding = "gzip"
)

// DuckDuckGo scrapes the HTML endpoint of DuckDuckGo. It needs no API key.
type DuckDuckGo struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	BaseURL    string
}

func NewDuckDuckGo(logger *zap.Logger) *DuckDuckGo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuckDuckGo{
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
		BaseURL:   duckDuckGoURL,
	}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.BaseURL, nil)
	if err != nil {
		return nil, err
	}

	req = d.setHeaders(req)
	req.URL.RawQuery = url.Values{"q": {query}}.Encode()

	resp, err := d.request(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	var results []Result
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if limit > 0 && len(results) >= limit {
			return false
		}

		link := s.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		snippet := strings.TrimSpace(s.Find(".result__snippet").First().Text())
		if title == "" && snippet == "" {
			return true
		}

		href, _ := link.Attr("href")
		results = append(results, Result{
			Title:   title,
			URL:     resolveRedirect(href),
			Snippet: snippet,
		})
		return true
	})

	d.logger.Debug("duckduckgo search finished", zap.String("query", query), zap.Int("results", len(results)))

	return results, nil
}

func (d *DuckDuckGo) request(req *http.Request) (*http.Response, error) {
	d.logger.Debug("make request", zap.String("url", req.URL.String()))
	return d.HTTPClient.Do(req)
}

func (d *DuckDuckGo) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", d.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("Accept", "text/html")

	return req
}

// resolveRedirect unwraps DuckDuckGo's "/l/?uddg=<target>" links.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
