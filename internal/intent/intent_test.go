package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/rising-ai-tgbot-go/internal/models"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want models.Intent
	}{
		{"what time is it?", models.IntentTimeQuery},
		{"what is the time", models.IntentTimeQuery},
		{"what's the time", models.IntentTimeQuery},
		{"time right now", models.IntentTimeQuery},
		{"time", models.IntentTimeQuery},
		{"tell me the time", models.IntentTimeQuery},
		{"what is the date today", models.IntentDateQuery},
		{"what day is it", models.IntentDateQuery},
		{"hello!", models.IntentGreeting},
		{"good morning", models.IntentGreeting},
		{"how are you?", models.IntentSmallTalk},
		{"thanks!", models.IntentSmallTalk},
		{"latest news on the election", models.IntentRealTimeData},
		{"bitcoin price today", models.IntentRealTimeData},
		{"weather in Mumbai", models.IntentRealTimeData},
		{"live cricket score", models.IntentRealTimeData},
		{"upcoming concerts in Delhi", models.IntentRealTimeData},
		{"what is photosynthesis", models.IntentInfoQuestion},
		{"explain quantum entanglement", models.IntentInfoQuestion},
		{"difference between TCP and UDP", models.IntentInfoQuestion},
		{"write a haiku about autumn", models.IntentGeneralTask},
		{"", models.IntentSmallTalk},
	}
	for _, tc := range cases {
		if got := Classify(tc.text); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

// A greeting followed by a real question must not classify as greeting:
// the anchored patterns only match standalone pleasantries.
func TestClassifyGreetingWithQuestion(t *testing.T) {
	got := Classify("hi, what is the capital of France?")
	if got == models.IntentGreeting {
		t.Fatalf("greeting prefix swallowed the question, got %v", got)
	}
}

func TestClassifyTimeBeatsQuestion(t *testing.T) {
	if got := Classify("what time is it in Tokyo?"); got != models.IntentTimeQuery {
		t.Fatalf("expected time_query, got %v", got)
	}
}

type stubCompleter struct {
	reply string
	err   error
	calls int
}

func (s *stubCompleter) Complete(_ context.Context, _ []models.Message, _ int, _ float64) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestClassifyWithAssistOverride(t *testing.T) {
	llm := &stubCompleter{reply: "REALTIME"}
	got := ClassifyWithAssist(context.Background(), llm, "anything about the fed decision")
	if got != models.IntentRealTimeData {
		t.Fatalf("expected real_time from assist, got %v", got)
	}
}

func TestClassifyWithAssistKnowledgeBucket(t *testing.T) {
	llm := &stubCompleter{reply: "KNOWLEDGE"}
	if got := ClassifyWithAssist(context.Background(), llm, "best way to structure a resume"); got != models.IntentGeneralTask {
		t.Fatalf("expected general_task for knowledge bucket, got %v", got)
	}
}

func TestClassifyWithAssistFallsBackOnError(t *testing.T) {
	llm := &stubCompleter{err: errors.New("backend down")}
	got := ClassifyWithAssist(context.Background(), llm, "explain recursion")
	if got != models.IntentInfoQuestion {
		t.Fatalf("expected regex fallback info_question, got %v", got)
	}
}

func TestClassifyWithAssistSkipsTinyMessages(t *testing.T) {
	llm := &stubCompleter{reply: "REALTIME"}
	if got := ClassifyWithAssist(context.Background(), llm, "k"); got != models.IntentGeneralTask {
		t.Fatalf("expected regex result for tiny message, got %v", got)
	}
	if llm.calls != 0 {
		t.Fatal("model consulted for a two-character message")
	}
}

func TestClassifyWithAssistSkipsLocalIntents(t *testing.T) {
	// Local intents must never hit the model, even if one is provided.
	llm := &stubCompleter{reply: "REALTIME"}
	if got := ClassifyWithAssist(context.Background(), llm, "what time is it"); got != models.IntentTimeQuery {
		t.Fatalf("time query consulted the model, got %v", got)
	}
}

func TestClassifyWithAssistUnknownReply(t *testing.T) {
	llm := &stubCompleter{reply: "BANANA"}
	if got := ClassifyWithAssist(context.Background(), llm, "explain recursion"); got != models.IntentInfoQuestion {
		t.Fatalf("unrecognized label should keep regex result, got %v", got)
	}
}

func TestDetectMood(t *testing.T) {
	cases := []struct {
		text string
		want Mood
	}{
		{"this is awesome!!", MoodHappy},
		{"ugh, it's not working again", MoodFrustrated},
		{"I need this fixed asap", MoodUrgent},
		{"I don't understand this error at all", MoodConfused},
		{"I'm curious how tides work", MoodCurious},
		{"summarize this article", MoodNeutral},
		// Negative signal wins over positive in the same message.
		{"awesome, but it's still broken!!", MoodFrustrated},
	}
	for _, tc := range cases {
		if got := DetectMood(tc.text); got != tc.want {
			t.Errorf("DetectMood(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}
