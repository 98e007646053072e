package shape

import (
	"regexp"
	"strings"

	"github.com/rising-ai-tgbot-go/internal/models"
)

// Plan is the response-shape decision for one message. Computing it has
// no side effects, the same input always yields the same plan.
type Plan struct {
	Length    string // casual, brief, detailed, normal
	MaxTokens int
	Format    string // numbered_list, ranking_list, bullet_list, comparison, definition, professional, conversational, paragraph
	Style     string // professional, technical, casual, friendly
	// Instruction is the complete shape directive appended to the
	// prompt after all content.
	Instruction string
}

const (
	LengthCasual   = "casual"
	LengthBrief    = "brief"
	LengthDetailed = "detailed"
	LengthNormal   = "normal"
)

var (
	reURL = regexp.MustCompile(`https?://\S+`)

	reBriefRequest = regexp.MustCompile(`(?i)\b(?:briefly|in\s+short|in\s+brief|one\s+line|tl;?dr|quick(?:ly)?\s+(?:answer|summary)|short\s+answer)\b`)

	detailKeywords = regexp.MustCompile(`(?i)\b(?:explain|detail(?:ed|s)?|elaborate|in\s+depth|comprehensive|thorough(?:ly)?|step\s+by\s+step|walk\s+me\s+through|deep\s+dive)\b`)
	complexShape   = regexp.MustCompile(`(?i)\b(?:compare|difference\s+between|pros\s+and\s+cons|advantages\s+and\s+disadvantages|how\s+does\s+.+\s+work|why\s+does|architecture|implement)\b`)
)

// Format detection is first-match-wins over ordered pattern groups,
// defaulting to paragraph.
var formatDetectors = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"numbered_list", regexp.MustCompile(`(?i)\b(?:steps?\s+to|how\s+to|guide|tutorial|instructions|procedure|process\s+(?:of|for))\b`)},
	{"ranking_list", regexp.MustCompile(`(?i)\b(?:top\s+\d+|best\s+\d+|rank(?:ing)?|greatest|most\s+popular)\b`)},
	{"bullet_list", regexp.MustCompile(`(?i)\b(?:list\s+(?:of|the|all)|\d+\s+(?:ways|tips|reasons|examples|things)|enumerate|key\s+points|summar(?:y|ize|ise)|overview)\b`)},
	{"comparison", regexp.MustCompile(`(?i)\b(?:compare|versus|\bvs\.?\b|difference\s+between|which\s+is\s+better|pros\s+and\s+cons)\b`)},
	{"definition", regexp.MustCompile(`(?i)\b(?:what\s+is|what\s+are|define|definition\s+of|meaning\s+of)\b`)},
	{"professional", regexp.MustCompile(`(?i)\b(?:formal(?:ly)?|professional(?:ly)?|business|official|report|proposal|cover\s+letter)\b`)},
	{"conversational", regexp.MustCompile(`(?i)\b(?:chat|talk\s+(?:to|with)\s+me|your\s+opinion|what\s+do\s+you\s+think|tell\s+me\s+a\s+(?:story|joke))\b`)},
}

var styleDetectors = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"professional", regexp.MustCompile(`(?i)\b(?:formal(?:ly)?|professional(?:ly)?|business|official|report|email\s+to)\b`)},
	{"technical", regexp.MustCompile(`(?i)\b(?:api|algorithm|kernel|protocol|database|compiler|latency|throughput|complexity|debug|stack\s+trace)\b`)},
	{"casual", regexp.MustCompile(`(?i)\b(?:casual(?:ly)?|chill|slang|funny|joke|meme|eli5|like\s+i'?m\s+(?:5|five))\b`)},
}

// Conversational intents get the casual shape regardless of wording.
func isConversational(it models.Intent) bool {
	return it == models.IntentGreeting || it == models.IntentSmallTalk
}

// Build computes the response plan from the message, its intent, and
// the user's saved preferences. Explicit in-message requests beat
// preferences, preferences beat the word-count heuristic. A URL in the
// message forces the detailed link-analysis shape.
func Build(text string, it models.Intent, prefs models.Preferences) Plan {
	hasURL := reURL.MatchString(text)
	p := Plan{
		Length:    LengthNormal,
		MaxTokens: 800,
		Format:    detectFormat(text),
		Style:     detectStyle(text, prefs),
	}

	words := len(strings.Fields(text))
	switch {
	case hasURL:
		p.Length = LengthDetailed
		p.MaxTokens = 1500
	case isConversational(it):
		p.Length = LengthCasual
		p.MaxTokens = 500
	case reBriefRequest.MatchString(text):
		p.Length = LengthBrief
		p.MaxTokens = 200
	case detailKeywords.MatchString(text) || complexShape.MatchString(text) || words >= 12:
		p.Length = LengthDetailed
		p.MaxTokens = 1500
	default:
		switch prefs.ResponseLength {
		case "short":
			p.Length = LengthBrief
			p.MaxTokens = 200
		case "detailed":
			p.Length = LengthDetailed
			p.MaxTokens = 1500
		}
	}

	p.Instruction = buildInstruction(p, prefs, hasURL)
	return p
}

func detectFormat(text string) string {
	for _, d := range formatDetectors {
		if d.pattern.MatchString(text) {
			return d.name
		}
	}
	return "paragraph"
}

func detectStyle(text string, prefs models.Preferences) string {
	for _, d := range styleDetectors {
		if d.pattern.MatchString(text) {
			return d.name
		}
	}
	switch prefs.ResponseStyle {
	case "professional", "technical", "casual":
		return prefs.ResponseStyle
	}
	return "friendly"
}

var lengthInstructions = map[string]string{
	LengthCasual:   "Reply conversationally in 2-4 short sentences. No headings or lists.",
	LengthBrief:    "Answer in roughly 50 words. Get straight to the point.",
	LengthDetailed: "Give a thorough answer of roughly 400-500 words with clear structure.",
	LengthNormal:   "Answer in roughly 200-300 words.",
}

var formatInstructions = map[string]string{
	"numbered_list":  "Format the answer as numbered steps.",
	"ranking_list":   "Format the core of the answer as a ranked, numbered list.",
	"bullet_list":    "Format the core of the answer as a bulleted list.",
	"comparison":     "Structure the answer as a comparison, covering each side fairly.",
	"definition":     "Open with a one-sentence definition, then expand.",
	"professional":   "Structure the answer like a polished document with clear sections.",
	"conversational": "Answer in flowing conversational prose, no lists.",
	"paragraph":      "Answer in well-organized paragraphs.",
}

var styleInstructions = map[string]string{
	"professional": "Use a formal, professional register.",
	"technical":    "Use precise technical vocabulary, assume a technical reader.",
	"casual":       "Keep the tone relaxed and casual.",
	"friendly":     "Keep the tone warm and friendly.",
}

func buildInstruction(p Plan, prefs models.Preferences, hasURL bool) string {
	var b strings.Builder
	b.WriteString("Response requirements: ")
	b.WriteString(lengthInstructions[p.Length])
	if hasURL {
		b.WriteString(" The message contains a URL. Analyze or summarize the linked content as requested.")
	}
	b.WriteString(" ")
	b.WriteString(formatInstructions[p.Format])
	b.WriteString(" ")
	b.WriteString(styleInstructions[p.Style])
	if !prefs.IncludeEmojis {
		b.WriteString(" Do not use emojis.")
	}
	switch prefs.ExpertiseLevel {
	case "expert":
		b.WriteString(" The reader is an expert, skip basics.")
	case "beginner":
		b.WriteString(" The reader is a beginner, avoid assumed knowledge.")
	}
	return b.String()
}
