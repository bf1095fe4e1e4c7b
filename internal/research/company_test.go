package research

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	limits  []int
	results map[string][]Result
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, query string, limit int) ([]Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, query)
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	for prefix, res := range f.results {
		if strings.Contains(query, prefix) {
			return res, nil
		}
	}
	return nil, nil
}

type fakeGenerator struct {
	calls    int
	prompt   string
	response string
	err      error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.response, f.err
}

func (f *fakeGenerator) Model() string { return "fake" }

const summaryResponse = `CULTURE: Innovative and data-driven.
KEY_SKILLS: Python, Distributed Systems, Leadership
INDUSTRY: Technology
HIRING_NOTES: Structured interviews.`

func TestResearchSummarizesSearchResults(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]Result{
		"culture": {{Snippet: "one"}, {Snippet: "two"}, {Snippet: " "}, {Snippet: "three"}, {Snippet: "four"}},
		"hiring":  {{Snippet: "h1"}, {Snippet: "h2"}, {Snippet: "h3"}},
	}}
	gen := &fakeGenerator{response: summaryResponse}

	info := NewResearcher(searcher, nil, gen, nil).Research(context.Background(), "Google")

	if info.Degraded() {
		t.Fatalf("unexpected degraded info: %+v", info)
	}
	if info.Name != "Google" || info.Industry != "Technology" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.Culture != "Innovative and data-driven." {
		t.Fatalf("culture = %q", info.Culture)
	}
	if len(info.KeySkills) != 3 || info.KeySkills[1] != "Distributed Systems" {
		t.Fatalf("key skills = %v", info.KeySkills)
	}
	if info.HiringNotes != "Structured interviews." {
		t.Fatalf("hiring notes = %q", info.HiringNotes)
	}

	if len(searcher.queries) != 2 {
		t.Fatalf("expected 2 searches, got %v", searcher.queries)
	}
	if !strings.Contains(gen.prompt, "one two three") || strings.Contains(gen.prompt, "four") {
		t.Fatalf("culture snippets not limited to three: %s", gen.prompt)
	}
	if !strings.Contains(gen.prompt, "h1 h2") || strings.Contains(gen.prompt, "h3") {
		t.Fatalf("hiring snippets not limited to two: %s", gen.prompt)
	}
}

func TestResearchDegradesOnSearchFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("blocked")}
	gen := &fakeGenerator{response: summaryResponse}
	cache := NewMemoryCache(time.Hour)

	info := NewResearcher(searcher, cache, gen, nil).Research(context.Background(), "Acme")

	if !info.Degraded() {
		t.Fatalf("expected degraded info, got %+v", info)
	}
	if info.Industry != "Unknown" || info.Culture != "Information not available - using general best practices" {
		t.Fatalf("unexpected defaults: %+v", info)
	}
	if gen.calls != 0 {
		t.Fatalf("generator should not be called after search failure")
	}
	if _, ok, _ := cache.Get(context.Background(), CacheKey("Acme")); ok {
		t.Fatal("degraded info must not be cached")
	}
}

func TestResearchDegradesOnGeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota")}

	info := NewResearcher(nil, nil, gen, nil).Research(context.Background(), "Acme")

	if !info.Degraded() || !strings.Contains(info.Error, "quota") {
		t.Fatalf("expected degraded info carrying the error, got %+v", info)
	}
}

func TestResearchUsesCache(t *testing.T) {
	searcher := &fakeSearcher{}
	gen := &fakeGenerator{response: summaryResponse}
	cache := NewMemoryCache(time.Hour)
	r := NewResearcher(searcher, cache, gen, nil)

	first := r.Research(context.Background(), "Google")
	second := r.Research(context.Background(), "  GOOGLE ")

	if gen.calls != 1 {
		t.Fatalf("expected one generator call, got %d", gen.calls)
	}
	if second.Culture != first.Culture {
		t.Fatalf("cached info differs: %+v vs %+v", second, first)
	}
}

func TestMemoryCacheExpires(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	info := &CompanyInfo{Name: "Acme", KeySkills: []string{"go"}}
	if err := cache.Set(context.Background(), "acme", info); err != nil {
		t.Fatalf("set: %v", err)
	}
	info.KeySkills[0] = "mutated"

	got, ok, err := cache.Get(context.Background(), "acme")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.KeySkills[0] != "go" {
		t.Fatalf("cache shares memory with caller: %v", got.KeySkills)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := cache.Get(context.Background(), "acme"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestParseCompanyInfoMissingFields(t *testing.T) {
	info := ParseCompanyInfo("INDUSTRY: Retail", "Shop")

	if info.Industry != "Retail" || info.Culture != "" || len(info.KeySkills) != 0 {
		t.Fatalf("unexpected info: %+v", info)
	}
}
