package generate

import (
	"regexp"
	"strings"
)

// Cleanup rules applied to every model reply, in order. Each strips a
// class of artifact models keep producing no matter what the prompt
// says.
var cleanupRules = []struct {
	pattern *regexp.Regexp
	replace string
}{
	// Filler openers.
	{regexp.MustCompile(`(?i)^(?:so|well|certainly|sure|of course|great question)[,!]\s+`), ""},
	// The model talking about itself instead of answering.
	{regexp.MustCompile(`(?i)^as an ai(?:\s+(?:language\s+)?model)?[^.]*\.\s*`), ""},
	{regexp.MustCompile(`(?i)\b(?:according to|based on) (?:the|my) search (?:results|data)[,:]?\s*`), ""},
	// Leaked instruction markers.
	{regexp.MustCompile(`(?im)^\s*(?:response requirements|live data)\s*:.*$`), ""},
	{regexp.MustCompile(`\[(?:Search query:[^\]]*|Answered with real-time search data)\]`), ""},
	// Runs of blank lines collapse to one.
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

// Clean normalizes a raw model reply for delivery.
func Clean(reply string) string {
	out := strings.TrimSpace(reply)
	for _, rule := range cleanupRules {
		out = rule.pattern.ReplaceAllString(out, rule.replace)
	}
	return strings.TrimSpace(out)
}
