package generate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rising-ai-tgbot-go/internal/models"
	"github.com/rising-ai-tgbot-go/internal/services/llm"
	"github.com/rising-ai-tgbot-go/internal/shape"
)

type captureClient struct {
	name     string
	reply    string
	err      error
	messages []models.Message
}

func (c *captureClient) Name() string { return c.name }

func (c *captureClient) Complete(_ context.Context, messages []models.Message, _ int, _ float64) (string, error) {
	c.messages = messages
	return c.reply, c.err
}

func testSession() *models.UserSession {
	return &models.UserSession{
		UserID:       1,
		SystemPrompt: "You are a helpful assistant.",
		History: []models.Message{
			{Role: models.RoleUser, Content: "earlier question"},
			{Role: models.RoleAssistant, Content: "earlier answer"},
		},
		Preferences: models.DefaultPreferences(),
	}
}

func testPlan() shape.Plan {
	return shape.Build("what happened today", models.IntentRealTimeData, models.DefaultPreferences())
}

func TestGenerateBuildsPrompt(t *testing.T) {
	client := &captureClient{name: "p1", reply: "the answer"}
	g := NewGenerator([]llm.Client{client}, 0.6)
	g.now = func() time.Time {
		return time.Date(2025, time.June, 1, 15, 30, 0, 0, time.UTC)
	}

	resp, err := g.Generate(context.Background(), Request{
		Session: testSession(),
		Message: "what happened today",
		Plan:    testPlan(),
		Search:  &models.SearchResult{Text: "live payload", Sources: []string{"x"}},
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if resp.Text != "the answer" {
		t.Fatalf("wrong reply: %q", resp.Text)
	}

	msgs := client.messages
	if msgs[0].Role != models.RoleSystem {
		t.Fatal("first message is not the system prompt")
	}
	if !strings.Contains(msgs[0].Content, "June 1, 2025") {
		t.Fatalf("system prompt not timestamped: %q", msgs[0].Content)
	}
	if msgs[1].Content != "earlier question" || msgs[2].Content != "earlier answer" {
		t.Fatal("history not carried into the prompt")
	}

	last := msgs[len(msgs)-1]
	if last.Role != models.RoleUser {
		t.Fatal("last message is not the user turn")
	}
	if !strings.Contains(last.Content, "live payload") {
		t.Fatal("search context missing from user turn")
	}
	// The shape instruction must come after both the search context
	// and the question.
	qIdx := strings.Index(last.Content, "what happened today")
	sIdx := strings.Index(last.Content, "Response requirements:")
	pIdx := strings.Index(last.Content, "live payload")
	if !(pIdx < qIdx && qIdx < sIdx) {
		t.Fatalf("prompt ordering wrong: payload=%d question=%d shape=%d", pIdx, qIdx, sIdx)
	}
}

func TestGenerateTruncatesSearchContext(t *testing.T) {
	client := &captureClient{name: "p1", reply: "ok"}
	g := NewGenerator([]llm.Client{client}, 0.6)

	huge := strings.Repeat("a", 10000)
	_, err := g.Generate(context.Background(), Request{
		Session: testSession(),
		Message: "q",
		Plan:    testPlan(),
		Search:  &models.SearchResult{Text: huge},
	})
	if err != nil {
		t.Fatal(err)
	}
	last := client.messages[len(client.messages)-1].Content
	if strings.Contains(last, strings.Repeat("a", searchContextLimit+1)) {
		t.Fatal("search context not truncated")
	}
	if !strings.Contains(last, strings.Repeat("a", searchContextLimit)) {
		t.Fatal("truncated search context missing entirely")
	}
}

func TestGenerateNoSearch(t *testing.T) {
	client := &captureClient{name: "p1", reply: "ok"}
	g := NewGenerator([]llm.Client{client}, 0.6)

	_, err := g.Generate(context.Background(), Request{
		Session: testSession(),
		Message: "q",
		Plan:    testPlan(),
	})
	if err != nil {
		t.Fatal(err)
	}
	last := client.messages[len(client.messages)-1].Content
	if strings.Contains(last, "Live data") {
		t.Fatal("search directive present without search result")
	}
}

func TestGenerateMoodHint(t *testing.T) {
	client := &captureClient{name: "p1", reply: "ok"}
	g := NewGenerator([]llm.Client{client}, 0.6)

	_, err := g.Generate(context.Background(), Request{
		Session: testSession(),
		Message: "this still doesn't work",
		Plan:    testPlan(),
		Mood:    "frustrated",
	})
	if err != nil {
		t.Fatal(err)
	}
	last := client.messages[len(client.messages)-1].Content
	if !strings.Contains(last, "frustrated") {
		t.Fatal("mood hint missing from prompt")
	}

	client2 := &captureClient{name: "p1", reply: "ok"}
	g2 := NewGenerator([]llm.Client{client2}, 0.6)
	if _, err := g2.Generate(context.Background(), Request{
		Session: testSession(),
		Message: "q",
		Plan:    testPlan(),
		Mood:    "neutral",
	}); err != nil {
		t.Fatal(err)
	}
	last2 := client2.messages[len(client2.messages)-1].Content
	if strings.Contains(last2, "match their energy") || strings.Contains(last2, "skip pleasantries") {
		t.Fatal("neutral mood added a hint")
	}
}

func TestGenerateAllProvidersFail(t *testing.T) {
	a := &captureClient{name: "alpha", err: errors.New("down")}
	b := &captureClient{name: "beta", err: errors.New("down")}
	g := NewGenerator([]llm.Client{a, b}, 0.6)

	_, err := g.Generate(context.Background(), Request{
		Session: testSession(),
		Message: "q",
		Plan:    testPlan(),
	})
	if err == nil {
		t.Fatal("expected failure when all providers are down")
	}
	if !strings.Contains(err.Error(), "alpha") || !strings.Contains(err.Error(), "beta") {
		t.Fatalf("failure should name both providers: %v", err)
	}
}

func TestClean(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"So, the answer is 42.", "the answer is 42."},
		{"Certainly! Here you go.", "Here you go."},
		{"As an AI language model, I cannot feel. The sky is blue.", "The sky is blue."},
		{"According to the search results, gold rose today.", "gold rose today."},
		{"line one\n\n\n\n\nline two", "line one\n\nline two"},
		{"fine as is", "fine as is"},
	}
	for _, tc := range cases {
		if got := Clean(tc.in); got != tc.want {
			t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanStripsHistoryMarkers(t *testing.T) {
	in := "Answer text. [Answered with real-time search data]"
	got := Clean(in)
	if strings.Contains(got, "real-time search data") {
		t.Fatalf("marker survived cleanup: %q", got)
	}
}
