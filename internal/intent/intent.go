package intent

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rising-ai-tgbot-go/internal/models"
	"github.com/rising-ai-tgbot-go/pkg/logger"
)

// Classification order matters: more specific intents are checked first
// so "what time is it" never falls through to a generic question.
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bwhat\s+time\b`),
	regexp.MustCompile(`(?i)\bwhat(?:'?s|\s+is)\s+the\s+time\b`),
	regexp.MustCompile(`(?i)\bcurrent\s+time\b`),
	regexp.MustCompile(`(?i)\btime\s+(?:is\s+it|(?:right\s+)?now)\b`),
	regexp.MustCompile(`(?i)\btell\s+me\s+the\s+time\b`),
	regexp.MustCompile(`(?i)^\s*time\s*[!.?]*\s*$`),
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bwhat\s+(?:is\s+)?(?:the\s+)?(?:date|day)\b`),
	regexp.MustCompile(`(?i)\btoday'?s\s+date\b`),
	regexp.MustCompile(`(?i)\bcurrent\s+date\b`),
	regexp.MustCompile(`(?i)\bwhat\s+day\s+is\s+(?:it|today)\b`),
}

// Greeting and small-talk patterns are anchored so they only match
// messages that are ONLY a greeting, not questions that open with one.
var greetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(?:hi|hello|hey|hiya|yo|howdy)\s*[!.?]*\s*$`),
	regexp.MustCompile(`(?i)^\s*good\s+(?:morning|afternoon|evening|night)\s*[!.?]*\s*$`),
	regexp.MustCompile(`(?i)^\s*(?:namaste|greetings)\s*[!.?]*\s*$`),
}

var smallTalkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*how\s+are\s+you(?:\s+doing)?\s*[!.?]*\s*$`),
	regexp.MustCompile(`(?i)^\s*what'?s\s+up\s*[!.?]*\s*$`),
	regexp.MustCompile(`(?i)^\s*(?:thanks|thank\s+you|thx|ty)\s*[!.?]*\s*$`),
	regexp.MustCompile(`(?i)^\s*(?:ok|okay|cool|nice|great|awesome)\s*[!.?]*\s*$`),
	regexp.MustCompile(`(?i)^\s*(?:bye|goodbye|see\s+you|good\s+night)\s*[!.?]*\s*$`),
	regexp.MustCompile(`(?i)^\s*(?:lol|haha|hehe)\s*[!.?]*\s*$`),
}

var realTimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:latest|breaking|current|today'?s?|recent|live)\s+(?:news|updates?|headlines?)\b`),
	regexp.MustCompile(`(?i)\b(?:weather|temperature|forecast|rain|humidity)\b`),
	regexp.MustCompile(`(?i)\b(?:stock|share)\s+price\b`),
	regexp.MustCompile(`(?i)\b(?:price|rate)\s+of\s+(?:gold|silver|bitcoin|btc|eth|crypto|petrol|diesel|fuel)\b`),
	regexp.MustCompile(`(?i)\b(?:bitcoin|btc|ethereum|eth|crypto(?:currency)?)\s+(?:price|rate|value)\b`),
	regexp.MustCompile(`(?i)\b(?:exchange\s+rate|currency\s+rate|usd\s+to|inr\s+to)\b`),
	regexp.MustCompile(`(?i)\b(?:score|match|game)\s+(?:today|now|live|update)\b`),
	regexp.MustCompile(`(?i)\blive\s+(?:score|match|cricket|football)\b`),
	regexp.MustCompile(`(?i)\bwhat(?:'?s|\s+is)\s+happening\b`),
	regexp.MustCompile(`(?i)\b(?:right\s+now|at\s+the\s+moment|currently|as\s+of\s+(?:now|today))\b`),
	regexp.MustCompile(`(?i)\b(?:this\s+week|this\s+month|yesterday|tomorrow)\b`),
	regexp.MustCompile(`(?i)\bupcoming\s+(?:events?|concerts?|shows?|matches?|releases?)\b`),
	regexp.MustCompile(`(?i)\bevents?\s+(?:near|in|around|happening)\b`),
}

var infoQuestionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(?:who|what|when|where|why|how|which)\b`),
	regexp.MustCompile(`(?i)\b(?:explain|describe|define|tell\s+me\s+about)\b`),
	regexp.MustCompile(`(?i)\b(?:difference\s+between|compare)\b`),
	regexp.MustCompile(`(?i)\?\s*$`),
}

// Classify maps a message to an intent via the ordered regex cascade.
func Classify(text string) models.Intent {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.IntentSmallTalk
	}
	for _, p := range timePatterns {
		if p.MatchString(trimmed) {
			return models.IntentTimeQuery
		}
	}
	for _, p := range datePatterns {
		if p.MatchString(trimmed) {
			return models.IntentDateQuery
		}
	}
	for _, p := range greetingPatterns {
		if p.MatchString(trimmed) {
			return models.IntentGreeting
		}
	}
	for _, p := range smallTalkPatterns {
		if p.MatchString(trimmed) {
			return models.IntentSmallTalk
		}
	}
	for _, p := range realTimePatterns {
		if p.MatchString(trimmed) {
			return models.IntentRealTimeData
		}
	}
	for _, p := range infoQuestionPatterns {
		if p.MatchString(trimmed) {
			return models.IntentInfoQuestion
		}
	}
	return models.IntentGeneralTask
}

// Completer is the minimal LLM surface the classifier needs.
type Completer interface {
	Complete(ctx context.Context, messages []models.Message, maxTokens int, temperature float64) (string, error)
}

const classifyPrompt = `Classify the user message into exactly one category. Reply with only the category word.

Categories:
GREETING - message is only a greeting
SMALL_TALK - casual chat, thanks, acknowledgements
KNOWLEDGE - question answerable from general knowledge
REALTIME - needs current/live information (news, prices, weather, scores, events)

Examples:
"hey there" -> GREETING
"thanks a lot!" -> SMALL_TALK
"how does photosynthesis work" -> KNOWLEDGE
"bitcoin price today" -> REALTIME

Message: %q
Category:`

// ClassifyWithAssist refines ambiguous regex results with a short LLM
// call. On any failure or timeout the regex result stands.
func ClassifyWithAssist(ctx context.Context, llm Completer, text string) models.Intent {
	regexIntent := Classify(text)

	// Time and date queries are answered locally; greetings matched by
	// the anchored patterns are unambiguous. Only consult the model for
	// the intents that drive the search decision.
	switch regexIntent {
	case models.IntentTimeQuery, models.IntentDateQuery, models.IntentGreeting:
		return regexIntent
	}
	if llm == nil || len(strings.TrimSpace(text)) <= 2 {
		return regexIntent
	}

	cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	messages := []models.Message{
		{Role: models.RoleUser, Content: fmt.Sprintf(classifyPrompt, text)},
	}
	reply, err := llm.Complete(cctx, messages, 15, 0.1)
	if err != nil {
		logger.WithField("error", err.Error()).Debug("intent assist failed, using regex result")
		return regexIntent
	}

	switch strings.ToUpper(strings.TrimSpace(reply)) {
	case "GREETING":
		return models.IntentGreeting
	case "SMALL_TALK":
		return models.IntentSmallTalk
	case "KNOWLEDGE":
		return models.IntentGeneralTask
	case "REALTIME":
		return models.IntentRealTimeData
	}
	return regexIntent
}

// Mood is a coarse read of the user's emotional register, used to
// soften or energize the reply tone.
type Mood string

const (
	MoodNeutral    Mood = "neutral"
	MoodFrustrated Mood = "frustrated"
	MoodUrgent     Mood = "urgent"
	MoodConfused   Mood = "confused"
	MoodHappy      Mood = "happy"
	MoodCurious    Mood = "curious"
)

// Mood checks run in this order: negative signals win over positive
// ones when a message carries both.
var moodDetectors = []struct {
	mood     Mood
	patterns []*regexp.Regexp
}{
	{MoodFrustrated, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:not\s+working|doesn'?t\s+work|broken|annoying|frustrat|useless)\b`),
		regexp.MustCompile(`(?i)\b(?:wrong\s+answer|that'?s\s+wrong|still\s+wrong)\b`),
		regexp.MustCompile(`(?i)\b(?:ugh|argh|wtf)\b`),
	}},
	{MoodUrgent, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:urgent(?:ly)?|asap|right\s+away|immediately|emergency|deadline)\b`),
		regexp.MustCompile(`(?i)\bneed\s+(?:this|it|an?\s+answer)\s+(?:now|fast|quickly)\b`),
	}},
	{MoodConfused, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:confus(?:ed|ing)|don'?t\s+(?:understand|get\s+it)|makes\s+no\s+sense|lost\s+me)\b`),
		regexp.MustCompile(`(?i)\bwhat\s+do\s+you\s+mean\b`),
	}},
	{MoodHappy, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:awesome|amazing|love\s+it|fantastic|excellent|perfect)\b`),
		regexp.MustCompile(`!{2,}`),
		regexp.MustCompile(`(?i)\b(?:wow|yay|woohoo)\b`),
	}},
	{MoodCurious, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:curious|wonder(?:ing)?|interesting|fascinat)\b`),
		regexp.MustCompile(`(?i)\bwhat\s+if\b`),
	}},
}

// DetectMood inspects the message for emotional markers.
func DetectMood(text string) Mood {
	for _, d := range moodDetectors {
		for _, p := range d.patterns {
			if p.MatchString(text) {
				return d.mood
			}
		}
	}
	return MoodNeutral
}
