package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// tavilySource queries the Tavily search API. It is first in the chain
// because it returns a synthesized answer, not just links.
type tavilySource struct {
	apiKey string
	client *http.Client
}

func newTavilySource(apiKey string, timeout time.Duration) *tavilySource {
	return &tavilySource{apiKey: apiKey, client: newHTTPClient(timeout)}
}

func (s *tavilySource) Name() string { return "tavily" }

type tavilyRequest struct {
	Query         string `json:"query"`
	Topic         string `json:"topic"`
	SearchDepth   string `json:"search_depth"`
	MaxResults    int    `json:"max_results"`
	TimeRange     string `json:"time_range,omitempty"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyHit struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type tavilyResponse struct {
	Answer  string      `json:"answer"`
	Results []tavilyHit `json:"results"`
}

var financeKeywords = regexp.MustCompile(`(?i)\b(?:stock|share|nasdaq|nifty|sensex|bitcoin|crypto|forex|exchange\s+rate|bond|dividend)\b`)

// topicFor picks Tavily's topic vertical from the query text.
func topicFor(q Query) string {
	switch {
	case financeKeywords.MatchString(q.Text):
		return "finance"
	case q.News:
		return "news"
	default:
		return "general"
	}
}

var dayFreshness = regexp.MustCompile(`(?i)\b(?:today|tonight|now|breaking|live|latest)\b`)
var weekFreshness = regexp.MustCompile(`(?i)\bthis\s+week\b|\brecent\b`)

var monthFreshness = regexp.MustCompile(`(?i)\bthis\s+month\b`)

// timeRangeFor maps freshness wording onto Tavily time_range values.
// The default is "day": queries that reach live search want current
// information even when they don't say so.
func timeRangeFor(text string) string {
	switch {
	case dayFreshness.MatchString(text):
		return "day"
	case weekFreshness.MatchString(text):
		return "week"
	case monthFreshness.MatchString(text):
		return "month"
	default:
		return "day"
	}
}

func (s *tavilySource) Search(ctx context.Context, q Query) (*Result, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("tavily API key not configured")
	}

	body, err := json.Marshal(tavilyRequest{
		Query:         q.Text,
		Topic:         topicFor(q),
		SearchDepth:   "basic",
		MaxResults:    q.MaxResults,
		TimeRange:     timeRangeFor(q.Text),
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.tavily.com/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read tavily response: %w", err)
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse tavily response: %w", err)
	}
	return s.compose(parsed), nil
}

// compose prefers the synthesized answer, then folds in high-scoring
// result snippets. When nothing clears the score bar it keeps the raw
// results anyway: a mediocre hit from the primary backend still beats
// handing the query down the chain.
func (s *tavilySource) compose(resp tavilyResponse) *Result {
	var picked []tavilyHit
	for _, r := range resp.Results {
		if r.Score > 0.7 && strings.TrimSpace(r.Content) != "" {
			picked = append(picked, r)
		}
	}
	if len(picked) == 0 {
		for _, r := range resp.Results {
			if strings.TrimSpace(r.Content) != "" {
				picked = append(picked, r)
			}
		}
	}

	var b strings.Builder
	var sources []string
	if strings.TrimSpace(resp.Answer) != "" {
		b.WriteString(strings.TrimSpace(resp.Answer))
	}
	for _, r := range picked {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s: %s", r.Title, strings.TrimSpace(r.Content))
		sources = append(sources, r.URL)
	}
	if len(sources) == 0 && b.Len() > 0 {
		sources = []string{"tavily"}
	}
	return &Result{Text: b.String(), Sources: sources}
}
