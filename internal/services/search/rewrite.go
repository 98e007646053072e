package search

import (
	"regexp"
	"strings"

	"github.com/rising-ai-tgbot-go/pkg/markdown"
)

// Conversational lead-ins and fillers that add nothing to a search
// query. Applied repeatedly until none match.
var fillerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(?:please|pls|plz)[\s,]+`),
	regexp.MustCompile(`(?i)^\s*(?:hey|hi|hello)[\s,]+`),
	regexp.MustCompile(`(?i)^\s*(?:can|could|would|will)\s+you\s+(?:please\s+)?`),
	regexp.MustCompile(`(?i)^\s*(?:tell|show|give)\s+me\s+(?:about\s+)?`),
	regexp.MustCompile(`(?i)^\s*i\s+(?:want|need|would\s+like)\s+to\s+know\s+(?:about\s+)?`),
	regexp.MustCompile(`(?i)^\s*do\s+you\s+know\s+`),
	regexp.MustCompile(`(?i)^\s*i\s+was\s+wondering\s+(?:about\s+|if\s+)?`),
}

var trailingNoise = regexp.MustCompile(`(?i)[\s,]*(?:please|thanks|thank\s+you|thx)[!.?\s]*$`)

const maxQueryLen = 400

// RewriteForSearch strips conversational packaging so the remaining
// text is a keyword-dense search query.
func RewriteForSearch(message string) string {
	q := strings.TrimSpace(message)

	changed := true
	for changed {
		changed = false
		for _, p := range fillerPatterns {
			if next := p.ReplaceAllString(q, ""); next != q {
				q = next
				changed = true
			}
		}
	}
	q = trailingNoise.ReplaceAllString(q, "")
	q = strings.TrimSpace(strings.Trim(q, "?!. "))

	if q == "" {
		q = strings.TrimSpace(message)
	}
	return markdown.TruncateUTF8(q, maxQueryLen)
}

// Relative date words that need temporal context tokens so backends
// pick the right freshness window. Absolute calendar dates are never
// inserted, freshness is the backend's time-window parameter's job.
var relativeDateExpansions = []struct {
	pattern *regexp.Regexp
	token   string
}{
	{regexp.MustCompile(`(?i)\byesterday\b`), "recent past day"},
	{regexp.MustCompile(`(?i)\b(?:next|this\s+coming)\s+week\b`), "upcoming week"},
	{regexp.MustCompile(`(?i)\btomorrow\b`), "upcoming day"},
	{regexp.MustCompile(`(?i)\b(?:today|tonight|right\s+now)\b`), "latest"},
}

// Single words that are too bare to search well on their own.
var singleWordExpansions = map[string]string{
	"news":    "latest news headlines today",
	"weather": "current weather forecast",
	"time":    "current time",
	"bitcoin": "bitcoin price usd today",
	"gold":    "gold price today",
	"crypto":  "cryptocurrency prices today",
	"stocks":  "stock market today",
	"sports":  "sports news scores today",
	"events":  "events happening near me this week",
}

// ExpandQuery turns relative date words into temporal context tokens
// and fleshes out single-word queries.
func ExpandQuery(q string) string {
	lower := strings.ToLower(strings.TrimSpace(q))
	if expanded, ok := singleWordExpansions[lower]; ok {
		return expanded
	}
	for _, e := range relativeDateExpansions {
		if e.pattern.MatchString(q) && !strings.Contains(lower, e.token) {
			q = q + " " + e.token
			break
		}
	}
	return q
}

var newsKeywords = regexp.MustCompile(`(?i)\b(?:news|headline|breaking|announce|election|politic|stock|market|launch|release[ds]?)\b`)

// IsNewsQuery reports whether a query should prefer news endpoints.
func IsNewsQuery(q string) bool {
	return newsKeywords.MatchString(q)
}
