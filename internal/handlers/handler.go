package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rising-ai-tgbot-go/internal/config"
	"github.com/rising-ai-tgbot-go/internal/i18n"
	"github.com/rising-ai-tgbot-go/internal/middleware"
	"github.com/rising-ai-tgbot-go/internal/models"
	"github.com/rising-ai-tgbot-go/internal/services/cache"
	"github.com/rising-ai-tgbot-go/internal/services/generate"
	"github.com/rising-ai-tgbot-go/internal/services/session"
	"github.com/rising-ai-tgbot-go/pkg/logger"
	"github.com/rising-ai-tgbot-go/pkg/markdown"
)

// SearchResolver is the live-data lookup surface the handler needs.
type SearchResolver interface {
	ShouldSearch(message string, it models.Intent) bool
	Resolve(ctx context.Context, message string) *models.SearchResult
	SetEnabled(on bool)
	Enabled() bool
}

// IntentAssist is the short-completion backend used to refine
// ambiguous intent classifications.
type IntentAssist interface {
	Complete(ctx context.Context, messages []models.Message, maxTokens int, temperature float64) (string, error)
}

// Handler routes Telegram updates to commands and chat processing.
type Handler struct {
	bot       *tgbotapi.BotAPI
	cfg       *config.Config
	sessions  *session.Manager
	search    SearchResolver
	generator *generate.Generator
	respCache *cache.ResponseCache
	limiter   *middleware.RateLimiter
	loc       *i18n.Manager
	assist    IntentAssist
}

func New(
	bot *tgbotapi.BotAPI,
	cfg *config.Config,
	sessions *session.Manager,
	search SearchResolver,
	generator *generate.Generator,
	respCache *cache.ResponseCache,
	limiter *middleware.RateLimiter,
	loc *i18n.Manager,
	assist IntentAssist,
) *Handler {
	return &Handler{
		bot:       bot,
		cfg:       cfg,
		sessions:  sessions,
		search:    search,
		generator: generator,
		respCache: respCache,
		limiter:   limiter,
		loc:       loc,
		assist:    assist,
	}
}

// HandleUpdate is the single entry point for every Telegram update.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil:
		return
	case update.Message.IsCommand():
		h.handleCommand(ctx, update.Message)
	case update.Message.Text != "":
		h.handleMessage(ctx, update.Message)
	}
}

func (h *Handler) lang() string {
	return h.cfg.I18n.DefaultLanguage
}

// reply sends plain text to a chat, logging failures.
func (h *Handler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		logger.WithField("chat_id", chatID).Errorf("failed to send message: %v", err)
	}
}

// Telegram rejects messages above this length.
const telegramMessageLimit = 4096

// sendFormatted delivers a reply as Telegram HTML, falling back to
// plain text when Telegram rejects the markup, splitting when the text
// exceeds the message limit.
func (h *Handler) sendFormatted(chatID int64, text string) {
	h.sendHTML(chatID, markdown.ToTelegramHTML(text))
}

// sendHTML delivers text that is already Telegram HTML.
func (h *Handler) sendHTML(chatID int64, htmlText string) {
	for _, chunk := range splitMessage(htmlText, telegramMessageLimit) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := h.bot.Send(msg); err != nil {
			plain := tgbotapi.NewMessage(chatID, markdown.StripHTML(chunk))
			if _, err := h.bot.Send(plain); err != nil {
				logger.WithField("chat_id", chatID).Errorf("failed to send reply: %v", err)
			}
		}
	}
}

// editFormatted replaces the placeholder message with the final reply.
// Replies longer than one message edit the placeholder with the first
// chunk and send the rest as new messages.
func (h *Handler) editFormatted(chatID int64, messageID int, text string) {
	htmlText := markdown.ToTelegramHTML(text)
	chunks := splitMessage(htmlText, telegramMessageLimit)

	edit := tgbotapi.NewEditMessageText(chatID, messageID, chunks[0])
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	if _, err := h.bot.Send(edit); err != nil {
		plainEdit := tgbotapi.NewEditMessageText(chatID, messageID, markdown.StripHTML(chunks[0]))
		if _, err := h.bot.Send(plainEdit); err != nil {
			logger.WithField("chat_id", chatID).Errorf("failed to edit reply: %v", err)
		}
	}
	for _, chunk := range chunks[1:] {
		h.sendFormatted(chatID, chunk)
	}
}

// splitMessage breaks text on paragraph, then line, then hard
// boundaries so every chunk fits the limit.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	for len(text) > limit {
		cut := lastIndexBefore(text, "\n\n", limit)
		if cut <= 0 {
			cut = lastIndexBefore(text, "\n", limit)
		}
		if cut <= 0 {
			cut = lastIndexBefore(text, " ", limit)
		}
		if cut <= 0 {
			cut = len(markdown.TruncateUTF8(text, limit))
		}
		chunks = append(chunks, text[:cut])
		for len(text) > cut && (text[cut] == '\n' || text[cut] == ' ') {
			cut++
		}
		text = text[cut:]
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

func lastIndexBefore(s, sep string, limit int) int {
	if limit > len(s) {
		limit = len(s)
	}
	for i := limit - len(sep); i >= 0; i-- {
		if s[i:i+len(sep)] == sep {
			return i
		}
	}
	return -1
}
