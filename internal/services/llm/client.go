package llm

import (
	"context"

	"github.com/rising-ai-tgbot-go/internal/models"
)

// Client is a chat-completion backend. Implementations must be safe
// for concurrent use.
type Client interface {
	// Name identifies the backend in logs and failure messages.
	Name() string
	// Complete runs one chat completion and returns the reply text.
	Complete(ctx context.Context, messages []models.Message, maxTokens int, temperature float64) (string, error)
}
