package markdown

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/russross/blackfriday/v2"
)

// TruncateUTF8 cuts s at limit bytes without splitting a rune, so the
// result is always valid UTF-8 (the Telegram API rejects broken
// encodings outright).
func TruncateUTF8(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// ToTelegramHTML converts model-produced Markdown into the HTML subset
// Telegram accepts: b, i, code, pre, a, s, u. Everything else is
// flattened to plain text.
func ToTelegramHTML(md string) string {
	rendered := blackfriday.Run([]byte(md),
		blackfriday.WithExtensions(blackfriday.CommonExtensions))
	return sanitize(string(rendered))
}

var (
	reStrong    = regexp.MustCompile(`</?strong>`)
	reEm        = regexp.MustCompile(`</?em>`)
	reDel       = regexp.MustCompile(`</?del>`)
	reHeading   = regexp.MustCompile(`<h[1-6]>(.*?)</h[1-6]>`)
	reListItem  = regexp.MustCompile(`<li>`)
	rePre       = regexp.MustCompile(`(?s)<pre><code[^>]*>(.*?)</code></pre>`)
	reAnchor    = regexp.MustCompile(`<a href="([^"]*)"[^>]*>`)
	reParagraph = regexp.MustCompile(`</?p>`)
	reBlock     = regexp.MustCompile(`</?(ul|ol|blockquote|table|thead|tbody|tr|td|th|hr/?)>`)
	reOtherTags = regexp.MustCompile(`</?(?:span|div|img|br)[^>]*/?>`)
	reBlankRuns = regexp.MustCompile(`\n{3,}`)
)

func sanitize(html string) string {
	s := html
	s = reHeading.ReplaceAllString(s, "<b>$1</b>\n")
	s = reStrong.ReplaceAllStringFunc(s, func(t string) string {
		if strings.HasPrefix(t, "</") {
			return "</b>"
		}
		return "<b>"
	})
	s = reEm.ReplaceAllStringFunc(s, func(t string) string {
		if strings.HasPrefix(t, "</") {
			return "</i>"
		}
		return "<i>"
	})
	s = reDel.ReplaceAllStringFunc(s, func(t string) string {
		if strings.HasPrefix(t, "</") {
			return "</s>"
		}
		return "<s>"
	})
	s = rePre.ReplaceAllString(s, "<pre>$1</pre>")
	s = reAnchor.ReplaceAllString(s, `<a href="$1">`)
	s = reListItem.ReplaceAllString(s, "• ")
	s = strings.ReplaceAll(s, "</li>", "\n")
	s = reParagraph.ReplaceAllString(s, "\n")
	s = reBlock.ReplaceAllString(s, "")
	s = reOtherTags.ReplaceAllString(s, "")
	s = reBlankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// StripHTML removes all tags, used as the fallback when Telegram
// rejects the HTML variant of a message.
var reAnyTag = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

func StripHTML(s string) string {
	out := reAnyTag.ReplaceAllString(s, "")
	out = strings.ReplaceAll(out, "&lt;", "<")
	out = strings.ReplaceAll(out, "&gt;", ">")
	out = strings.ReplaceAll(out, "&amp;", "&")
	out = strings.ReplaceAll(out, "&quot;", `"`)
	return strings.TrimSpace(out)
}

// EscapeHTML escapes the characters Telegram treats as markup.
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
