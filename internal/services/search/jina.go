package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rising-ai-tgbot-go/pkg/markdown"
)

// jinaSource is the last resort: Jina's reader endpoint returns a
// plain-text rendering of a search results page.
type jinaSource struct {
	apiKey string
	client *http.Client
}

func newJinaSource(apiKey string, timeout time.Duration) *jinaSource {
	return &jinaSource{apiKey: apiKey, client: newHTTPClient(timeout)}
}

func (s *jinaSource) Name() string { return "jina" }

const jinaMaxChars = 4000

func (s *jinaSource) Search(ctx context.Context, q Query) (*Result, error) {
	headers := map[string]string{"Accept": "text/plain"}
	if s.apiKey != "" {
		headers["Authorization"] = "Bearer " + s.apiKey
	}

	data, err := httpGet(ctx, s.client,
		"https://s.jina.ai/"+url.QueryEscape(q.Text), headers)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("jina returned empty body")
	}
	text = markdown.TruncateUTF8(text, jinaMaxChars)
	return &Result{Text: text, Sources: []string{"s.jina.ai"}}, nil
}
