package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rising-ai-tgbot-go/internal/models"
	"github.com/rising-ai-tgbot-go/internal/services/llm"
	"github.com/rising-ai-tgbot-go/internal/shape"
	"github.com/rising-ai-tgbot-go/pkg/markdown"
)

// Generator assembles the prompt and races it across providers.
type Generator struct {
	clients     []llm.Client
	temperature float64

	now func() time.Time
}

func NewGenerator(clients []llm.Client, temperature float64) *Generator {
	return &Generator{
		clients:     clients,
		temperature: temperature,
		now:         time.Now,
	}
}

// Request is one generation job.
type Request struct {
	Session *models.UserSession
	Message string
	Plan    shape.Plan
	// Search is nil when the message was answered without live data.
	Search *models.SearchResult
	// Mood adjusts tone; empty or "neutral" adds nothing.
	Mood string
}

var moodHints = map[string]string{
	"happy":      "The user is enthusiastic, match their energy.",
	"frustrated": "The user sounds frustrated, be direct and extra clear, skip pleasantries.",
	"urgent":     "The user is in a hurry, lead with the answer and keep it tight.",
	"confused":   "The user is confused, slow down and build up from the basics.",
	"curious":    "The user is curious, feel free to add one interesting related detail.",
}

// Response carries the cleaned reply and which provider produced it.
type Response struct {
	Text     string
	Provider string
	Elapsed  time.Duration
}

const searchContextLimit = 3000

// The model must treat fetched data as ground truth over its training
// set, and must not narrate where the data came from.
const searchDirective = `The following live data was fetched moments ago. Treat it as ground truth: when it conflicts with what you learned in training, the live data wins. Use it to answer naturally. Never say "according to search results", "based on the search data", or otherwise mention that a search happened.

Live data:
%s`

// Generate runs one completion race and cleans the winning reply.
func (g *Generator) Generate(ctx context.Context, req Request) (*Response, error) {
	messages := g.buildMessages(req)

	result, err := llm.Race(ctx, g.clients, messages, req.Plan.MaxTokens, g.temperature)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return &Response{
		Text:     Clean(result.Reply),
		Provider: result.Provider,
		Elapsed:  result.Elapsed,
	}, nil
}

// buildMessages lays out the prompt: timestamped system prompt, the
// bounded history, then the user turn with search context above the
// question and the shape instruction after everything else.
func (g *Generator) buildMessages(req Request) []models.Message {
	now := g.now()

	messages := make([]models.Message, 0, len(req.Session.History)+2)
	messages = append(messages, models.Message{
		Role:    models.RoleSystem,
		Content: g.systemPrompt(req.Session, now),
	})
	messages = append(messages, req.Session.History...)

	var b strings.Builder
	if req.Search != nil && strings.TrimSpace(req.Search.Text) != "" {
		payload := markdown.TruncateUTF8(req.Search.Text, searchContextLimit)
		fmt.Fprintf(&b, searchDirective, payload)
		b.WriteString("\n\n")
	}
	b.WriteString(req.Message)
	b.WriteString("\n\n")
	b.WriteString(req.Plan.Instruction)
	if hint, ok := moodHints[req.Mood]; ok {
		b.WriteString(" ")
		b.WriteString(hint)
	}

	messages = append(messages, models.Message{
		Role:    models.RoleUser,
		Content: b.String(),
	})
	return messages
}

// systemPrompt stamps the session's prompt with the current moment so
// the model never reasons from its training cutoff date.
func (g *Generator) systemPrompt(s *models.UserSession, now time.Time) string {
	var b strings.Builder
	b.WriteString(s.SystemPrompt)
	fmt.Fprintf(&b, "\n\nCurrent date and time: %s.", now.Format("Monday, January 2, 2006, 3:04 PM MST"))
	if s.Preferences.DisplayName != "" {
		fmt.Fprintf(&b, " The user prefers to be called %s.", s.Preferences.DisplayName)
	}
	return b.String()
}
