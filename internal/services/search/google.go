package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// googleSource queries a Google Programmable Search Engine. Fresh
// queries are restricted to the last day so stale pages don't outrank
// today's answer.
type googleSource struct {
	apiKey string
	cxID   string
	client *http.Client
}

func newGoogleSource(apiKey, cxID string, timeout time.Duration) *googleSource {
	return &googleSource{apiKey: apiKey, cxID: cxID, client: newHTTPClient(timeout)}
}

func (s *googleSource) Name() string { return "google" }

type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

func (s *googleSource) Search(ctx context.Context, q Query) (*Result, error) {
	if s.apiKey == "" || s.cxID == "" {
		return nil, fmt.Errorf("google search not configured")
	}

	params := map[string]string{
		"key": s.apiKey,
		"cx":  s.cxID,
		"q":   q.Text,
		"num": fmt.Sprint(minInt(q.MaxResults, 10)),
	}
	if q.Region != "" {
		params["gl"] = strings.ToLower(q.Region)
	}
	// Freshness first: this source is only consulted for queries that
	// made it past the intent gate, so stale pages are the main risk.
	switch timeRangeFor(q.Text) {
	case "week":
		params["dateRestrict"] = "w1"
	case "month":
		params["dateRestrict"] = "m1"
	default:
		params["dateRestrict"] = "d1"
	}

	data, err := httpGet(ctx, s.client,
		"https://www.googleapis.com/customsearch/v1?"+encodeQuery(params), nil)
	if err != nil {
		return nil, err
	}

	var parsed googleResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse google response: %w", err)
	}
	if len(parsed.Items) == 0 {
		return nil, fmt.Errorf("google returned no items")
	}

	var b strings.Builder
	var sources []string
	for i, item := range parsed.Items {
		if i >= q.MaxResults {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s: %s", item.Title, strings.TrimSpace(item.Snippet))
		sources = append(sources, item.Link)
	}
	return &Result{Text: b.String(), Sources: sources}, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
