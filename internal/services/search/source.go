package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Query carries one search request through the source chain.
type Query struct {
	// Text is the rewritten, expanded query string.
	Text string
	// Raw is the user's original message, used by sources that prefer
	// natural language input.
	Raw string
	// Region is a two-letter country code for regional boosting.
	Region string
	// News marks queries that should prefer news endpoints.
	News bool
	// MaxResults caps how many hits a source should fold in.
	MaxResults int
}

// Result is a source's answer: composed text plus attribution labels.
type Result struct {
	Text    string
	Sources []string
}

// Adequate reports whether the result carries enough substance to stop
// the fallback chain. Fifty characters filters out bare echoes and
// empty-but-not-nil payloads.
func (r *Result) Adequate() bool {
	return r != nil && len(r.Text) > 50
}

// Source is one search backend in the ordered fallback chain.
type Source interface {
	Name() string
	Search(ctx context.Context, q Query) (*Result, error)
}

// httpGet fetches a URL with the shared client conventions: context,
// browser-ish user agent, bounded body read.
func httpGet(ctx context.Context, client *http.Client, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) TelegramAssistantBot/1.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d from %s", resp.StatusCode, req.URL.Host)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 2<<20))
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func encodeQuery(params map[string]string) string {
	v := url.Values{}
	for k, val := range params {
		v.Set(k, val)
	}
	return v.Encode()
}
