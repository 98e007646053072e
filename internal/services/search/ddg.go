package search

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// instantSource queries the DuckDuckGo Instant Answer API. When the
// instant answer is thin it is padded with regular text results before
// the adequacy check sees it.
type instantSource struct {
	client *http.Client
}

func newInstantSource(timeout time.Duration) *instantSource {
	return &instantSource{client: newHTTPClient(timeout)}
}

func (s *instantSource) Name() string { return "ddg-instant" }

type instantResponse struct {
	Answer        string `json:"Answer"`
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Definition    string `json:"Definition"`
	DefinitionURL string `json:"DefinitionURL"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

func (s *instantSource) Search(ctx context.Context, q Query) (*Result, error) {
	params := map[string]string{
		"q":             q.Text,
		"format":        "json",
		"no_html":       "1",
		"skip_disambig": "1",
	}
	data, err := httpGet(ctx, s.client,
		"https://api.duckduckgo.com/?"+encodeQuery(params), nil)
	if err != nil {
		return nil, err
	}

	var parsed instantResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse instant answer: %w", err)
	}

	var b strings.Builder
	var sources []string
	appendPart := func(text, src string) {
		if strings.TrimSpace(text) == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.TrimSpace(text))
		if src != "" {
			sources = append(sources, src)
		}
	}
	appendPart(parsed.Answer, "duckduckgo")
	appendPart(parsed.AbstractText, parsed.AbstractURL)
	appendPart(parsed.Definition, parsed.DefinitionURL)

	// A short instant answer alone rarely survives adequacy, so top it
	// up with ordinary text results.
	if b.Len() < 300 {
		if extra, extraSrc, err := ddgTextSearch(ctx, s.client, q, 3); err == nil {
			appendPart(extra, "")
			sources = append(sources, extraSrc...)
		}
	}

	if b.Len() == 0 {
		return nil, fmt.Errorf("no instant answer")
	}
	return &Result{Text: b.String(), Sources: sources}, nil
}

// ddgSource runs a plain DuckDuckGo text search, switching to the news
// vertical for news-flavored queries.
type ddgSource struct {
	client *http.Client
}

func newDDGSource(timeout time.Duration) *ddgSource {
	return &ddgSource{client: newHTTPClient(timeout)}
}

func (s *ddgSource) Name() string { return "ddg-text" }

func (s *ddgSource) Search(ctx context.Context, q Query) (*Result, error) {
	query := q
	if q.News {
		query.Text = q.Text + " news"
	}
	text, sources, err := ddgTextSearch(ctx, s.client, query, q.MaxResults)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("no text results")
	}
	return &Result{Text: text, Sources: sources}, nil
}

var (
	reDDGLink    = regexp.MustCompile(`<a[^>]+class="result__a"[^>]*href="([^"]+)"[^>]*>(.*?)</a>`)
	reDDGSnippet = regexp.MustCompile(`(?s)<a[^>]+class="result__snippet"[^>]*>(.*?)</a>`)
	reTags       = regexp.MustCompile(`<[^>]+>`)
)

// ddgTextSearch scrapes the HTML endpoint. DuckDuckGo has no official
// text-search API, the lite HTML page is stable enough to parse.
func ddgTextSearch(ctx context.Context, client *http.Client, q Query, limit int) (string, []string, error) {
	params := map[string]string{"q": q.Text}
	if q.Region != "" {
		params["kl"] = strings.ToLower(q.Region) + "-en"
	}
	data, err := httpGet(ctx, client,
		"https://html.duckduckgo.com/html/?"+encodeQuery(params), nil)
	if err != nil {
		return "", nil, err
	}
	page := string(data)

	links := reDDGLink.FindAllStringSubmatch(page, limit)
	snippets := reDDGSnippet.FindAllStringSubmatch(page, limit)

	var b strings.Builder
	var sources []string
	for i, link := range links {
		title := cleanHTMLText(link[2])
		snippet := ""
		if i < len(snippets) {
			snippet = cleanHTMLText(snippets[i][1])
		}
		if title == "" && snippet == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s: %s", title, snippet)
		sources = append(sources, html.UnescapeString(link[1]))
	}
	return b.String(), sources, nil
}

func cleanHTMLText(s string) string {
	return strings.TrimSpace(html.UnescapeString(reTags.ReplaceAllString(s, "")))
}
