package handlers

import (
	"strings"
	"testing"
)

func TestSplitMessageShortPassthrough(t *testing.T) {
	chunks := splitMessage("short", 100)
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
}

func TestSplitMessagePrefersParagraphBreaks(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n\n" + strings.Repeat("b", 60)
	chunks := splitMessage(text, 100)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if strings.Contains(chunks[0], "b") || strings.Contains(chunks[1], "a") {
		t.Fatalf("split did not happen at the paragraph break: %v", chunks)
	}
}

func TestSplitMessageFallsBackToLines(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n" + strings.Repeat("b", 60)
	chunks := splitMessage(text, 100)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
}

func TestSplitMessageHardCut(t *testing.T) {
	text := strings.Repeat("a", 250)
	chunks := splitMessage(text, 100)
	total := 0
	for _, c := range chunks {
		if len(c) > 100 {
			t.Fatalf("chunk exceeds limit: %d chars", len(c))
		}
		total += len(c)
	}
	if total != 250 {
		t.Fatalf("content lost in hard split: %d of 250 chars", total)
	}
}

func TestSplitMessageEveryChunkWithinLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 80; i++ {
		b.WriteString(strings.Repeat("word ", 30))
		b.WriteString("\n\n")
	}
	for _, c := range splitMessage(b.String(), 500) {
		if len(c) > 500 {
			t.Fatalf("chunk of %d chars exceeds limit", len(c))
		}
	}
}
