package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// wikipediaSource searches Wikipedia, then fetches article extracts
// for the top hits. Good for settled facts, useless for live data, so
// it sits near the bottom of the chain.
type wikipediaSource struct {
	client *http.Client
}

func newWikipediaSource(timeout time.Duration) *wikipediaSource {
	return &wikipediaSource{client: newHTTPClient(timeout)}
}

func (s *wikipediaSource) Name() string { return "wikipedia" }

const wikiAPI = "https://en.wikipedia.org/w/api.php"

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type wikiExtractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

func (s *wikipediaSource) Search(ctx context.Context, q Query) (*Result, error) {
	searchParams := map[string]string{
		"action":   "query",
		"list":     "search",
		"srsearch": q.Text,
		"srlimit":  "3",
		"format":   "json",
	}
	data, err := httpGet(ctx, s.client, wikiAPI+"?"+encodeQuery(searchParams), nil)
	if err != nil {
		return nil, err
	}
	var searchResp wikiSearchResponse
	if err := json.Unmarshal(data, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse wikipedia search: %w", err)
	}
	if len(searchResp.Query.Search) == 0 {
		return nil, fmt.Errorf("no wikipedia matches")
	}

	titles := make([]string, 0, len(searchResp.Query.Search))
	for _, hit := range searchResp.Query.Search {
		titles = append(titles, hit.Title)
	}

	extractParams := map[string]string{
		"action":      "query",
		"prop":        "extracts",
		"exintro":     "1",
		"explaintext": "1",
		"titles":      strings.Join(titles, "|"),
		"format":      "json",
	}
	data, err = httpGet(ctx, s.client, wikiAPI+"?"+encodeQuery(extractParams), nil)
	if err != nil {
		return nil, err
	}
	var extractResp wikiExtractResponse
	if err := json.Unmarshal(data, &extractResp); err != nil {
		return nil, fmt.Errorf("failed to parse wikipedia extracts: %w", err)
	}

	var b strings.Builder
	var sources []string
	for _, page := range extractResp.Query.Pages {
		if strings.TrimSpace(page.Extract) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s: %s", page.Title, strings.TrimSpace(page.Extract))
		sources = append(sources,
			"https://en.wikipedia.org/wiki/"+strings.ReplaceAll(page.Title, " ", "_"))
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("wikipedia extracts were empty")
	}
	return &Result{Text: b.String(), Sources: sources}, nil
}
