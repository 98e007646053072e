package markdown

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestToTelegramHTMLBold(t *testing.T) {
	got := ToTelegramHTML("this is **important** text")
	if !strings.Contains(got, "<b>important</b>") {
		t.Fatalf("bold not converted: %q", got)
	}
}

func TestTruncateUTF8(t *testing.T) {
	s := "price is ₹500 today" // the rupee sign is three bytes
	for limit := 0; limit <= len(s); limit++ {
		got := TruncateUTF8(s, limit)
		if len(got) > limit {
			t.Fatalf("limit %d: result %d bytes", limit, len(got))
		}
		if !utf8.ValidString(got) {
			t.Fatalf("limit %d: invalid UTF-8 %q", limit, got)
		}
		if !strings.HasPrefix(s, got) {
			t.Fatalf("limit %d: %q is not a prefix of the input", limit, got)
		}
	}
	if got := TruncateUTF8(s, len(s)+10); got != s {
		t.Fatalf("generous limit modified the string: %q", got)
	}
}

func TestTruncateUTF8SplitsBeforeRune(t *testing.T) {
	s := "ab₹cd"
	// Byte 3 lands inside the rupee sign; the cut must back up to "ab".
	if got := TruncateUTF8(s, 3); got != "ab" {
		t.Fatalf("got %q, want %q", got, "ab")
	}
}
