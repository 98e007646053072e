package shape

import (
	"strings"
	"testing"

	"github.com/rising-ai-tgbot-go/internal/models"
)

func TestBuildLengths(t *testing.T) {
	prefs := models.DefaultPreferences()
	cases := []struct {
		text   string
		intent models.Intent
		length string
		tokens int
	}{
		{"hello!", models.IntentGreeting, LengthCasual, 500},
		{"thanks", models.IntentSmallTalk, LengthCasual, 500},
		{"briefly, what is DNS", models.IntentInfoQuestion, LengthBrief, 200},
		{"tldr of the french revolution", models.IntentInfoQuestion, LengthBrief, 200},
		{"explain how garbage collection works", models.IntentInfoQuestion, LengthDetailed, 1500},
		{"compare postgres and mysql", models.IntentInfoQuestion, LengthDetailed, 1500},
		{"capital of France", models.IntentInfoQuestion, LengthNormal, 800},
	}
	for _, tc := range cases {
		p := Build(tc.text, tc.intent, prefs)
		if p.Length != tc.length || p.MaxTokens != tc.tokens {
			t.Errorf("Build(%q) = %s/%d, want %s/%d",
				tc.text, p.Length, p.MaxTokens, tc.length, tc.tokens)
		}
	}
}

// Twelve or more words promotes a plain question to detailed.
func TestBuildLongMessageGoesDetailed(t *testing.T) {
	text := "can you give me the history of the silk road trade routes now"
	p := Build(text, models.IntentInfoQuestion, models.DefaultPreferences())
	if p.Length != LengthDetailed {
		t.Fatalf("expected detailed for %d-word message, got %s", len(strings.Fields(text)), p.Length)
	}
}

// An explicit brevity request beats the detailed heuristics.
func TestBuildBriefBeatsDetail(t *testing.T) {
	p := Build("briefly explain how neural networks work", models.IntentInfoQuestion, models.DefaultPreferences())
	if p.Length != LengthBrief {
		t.Fatalf("expected brief to win, got %s", p.Length)
	}
}

// A URL forces the detailed link-analysis shape over everything else.
func TestBuildURLOverride(t *testing.T) {
	p := Build("https://example.com/post", models.IntentGeneralTask, models.DefaultPreferences())
	if p.Length != LengthDetailed {
		t.Fatalf("expected detailed for URL message, got %s", p.Length)
	}
	if !strings.Contains(p.Instruction, "URL") {
		t.Fatalf("link-analysis instruction missing: %q", p.Instruction)
	}
}

func TestBuildPreferenceLength(t *testing.T) {
	prefs := models.DefaultPreferences()
	prefs.ResponseLength = "short"
	p := Build("capital of France", models.IntentInfoQuestion, prefs)
	if p.Length != LengthBrief {
		t.Fatalf("short preference ignored, got %s", p.Length)
	}
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"how to make sourdough bread", "numbered_list"},
		{"top 5 sci-fi books", "ranking_list"},
		{"list of common http status codes", "bullet_list"},
		{"python vs go for web servers", "comparison"},
		{"what is entropy", "definition"},
		{"write a formal proposal for the project", "professional"},
		{"what do you think about remote work", "conversational"},
		{"tell me something surprising", "paragraph"},
	}
	for _, tc := range cases {
		if got := detectFormat(tc.text); got != tc.want {
			t.Errorf("detectFormat(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestDetectStyle(t *testing.T) {
	prefs := models.DefaultPreferences()
	cases := []struct {
		text string
		want string
	}{
		{"write an email to my landlord, keep it formal", "professional"},
		{"why is this algorithm O(n log n)", "technical"},
		{"eli5 black holes", "casual"},
		{"what should I cook tonight", "friendly"},
	}
	for _, tc := range cases {
		if got := detectStyle(tc.text, prefs); got != tc.want {
			t.Errorf("detectStyle(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

// Saved style preference applies only when the message itself gives no
// style signal.
func TestDetectStyleUsesPreference(t *testing.T) {
	prefs := models.DefaultPreferences()
	prefs.ResponseStyle = "technical"
	if got := detectStyle("what should I cook tonight", prefs); got != "technical" {
		t.Fatalf("preference ignored, got %q", got)
	}
	if got := detectStyle("eli5 black holes", prefs); got != "casual" {
		t.Fatalf("message signal should beat preference, got %q", got)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	prefs := models.DefaultPreferences()
	a := Build("explain dns resolution", models.IntentInfoQuestion, prefs)
	b := Build("explain dns resolution", models.IntentInfoQuestion, prefs)
	if a != b {
		t.Fatalf("same input produced different plans:\n%+v\n%+v", a, b)
	}
}

func TestInstructionIncludesEmojiRule(t *testing.T) {
	prefs := models.DefaultPreferences()
	prefs.IncludeEmojis = false
	p := Build("capital of France", models.IntentInfoQuestion, prefs)
	if !strings.Contains(p.Instruction, "Do not use emojis") {
		t.Fatalf("emoji preference missing from instruction: %q", p.Instruction)
	}
}
