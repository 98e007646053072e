package handlers

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rising-ai-tgbot-go/internal/i18n"
	"github.com/rising-ai-tgbot-go/internal/intent"
	"github.com/rising-ai-tgbot-go/internal/middleware"
	"github.com/rising-ai-tgbot-go/internal/models"
	"github.com/rising-ai-tgbot-go/internal/services/generate"
	"github.com/rising-ai-tgbot-go/internal/services/search"
	"github.com/rising-ai-tgbot-go/internal/services/session"
	"github.com/rising-ai-tgbot-go/internal/shape"
	"github.com/rising-ai-tgbot-go/pkg/logger"
)

const processingTimeout = 90 * time.Second

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := msg.Text

	if !h.limiter.Allow(userID) {
		middleware.RateLimited.Inc()
		h.reply(chatID, h.loc.T(h.lang(), i18n.MsgRateLimited, nil))
		return
	}

	sess, err := h.sessions.GetOrCreate(ctx, userID, msg.From.UserName)
	if err != nil {
		logger.WithField("user_id", userID).Errorf("session load failed: %v", err)
		h.reply(chatID, h.loc.T(h.lang(), i18n.MsgInternalError, nil))
		return
	}

	it := intent.ClassifyWithAssist(ctx, h.assist, text)
	middleware.MessagesTotal.WithLabelValues(string(it)).Inc()
	logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"intent":  string(it),
	}).Debug("message classified")

	// Clock questions are answered locally, no model involved.
	switch it {
	case models.IntentTimeQuery:
		h.answerDirect(ctx, chatID, userID, text, search.CurrentTimeReply(time.Now()))
		return
	case models.IntentDateQuery:
		h.answerDirect(ctx, chatID, userID, text, search.CurrentDateReply(time.Now()))
		return
	}

	if entry := h.respCache.Get(text, sess.ModelName); entry != nil {
		middleware.CacheHits.Inc()
		h.sendFormatted(chatID, entry.Answer)
		if err := h.sessions.AppendExchange(ctx, userID, text, entry.Answer, session.ExchangeMeta{}); err != nil {
			logger.WithField("user_id", userID).Errorf("failed to record exchange: %v", err)
		}
		return
	}

	// Acknowledge immediately, then do the slow work off the update
	// loop and edit the placeholder in place.
	placeholder := tgbotapi.NewMessage(chatID, h.loc.T(h.lang(), i18n.MsgProcessing, nil))
	placeholder.ReplyToMessageID = msg.MessageID
	sent, err := h.bot.Send(placeholder)
	if err != nil {
		logger.WithField("chat_id", chatID).Errorf("failed to send placeholder: %v", err)
		return
	}

	go h.process(sess, it, text, chatID, sent.MessageID)
}

// process runs search and generation for one message. Runs on its own
// goroutine with its own deadline, detached from the update context.
func (h *Handler) process(sess *models.UserSession, it models.Intent, text string, chatID int64, placeholderID int) {
	ctx, cancel := context.WithTimeout(context.Background(), processingTimeout)
	defer cancel()
	start := time.Now()

	var searchResult *models.SearchResult
	if h.search.ShouldSearch(text, it) {
		searchResult = h.search.Resolve(ctx, text)
		if searchResult == nil {
			middleware.SearchFailures.Inc()
		} else if len(searchResult.Sources) > 0 {
			middleware.SearchResolutions.WithLabelValues(searchResult.Sources[0]).Inc()
		}
	}

	plan := shape.Build(text, it, sess.Preferences)
	resp, err := h.generator.Generate(ctx, generate.Request{
		Session: sess,
		Message: text,
		Plan:    plan,
		Search:  searchResult,
		Mood:    string(intent.DetectMood(text)),
	})
	if err != nil {
		middleware.GenerationFailures.Inc()
		logger.WithField("user_id", sess.UserID).Errorf("generation failed: %v", err)
		h.editFormatted(chatID, placeholderID, h.loc.T(h.lang(), i18n.MsgProvidersFailed, nil))
		return
	}
	middleware.RaceWins.WithLabelValues(resp.Provider).Inc()
	middleware.ObserveGeneration(start)

	h.editFormatted(chatID, placeholderID, resp.Text)

	meta := session.ExchangeMeta{}
	if searchResult != nil {
		meta = session.ExchangeMeta{
			Searched:    true,
			SearchQuery: search.RewriteForSearch(text),
		}
	}
	if err := h.sessions.AppendExchange(ctx, sess.UserID, text, resp.Text, meta); err != nil {
		logger.WithField("user_id", sess.UserID).Errorf("failed to record exchange: %v", err)
	}
	if searchResult == nil {
		// Search-backed answers go stale, only cache model-only ones.
		h.respCache.Set(text, sess.ModelName, resp.Text)
	}
}

// answerDirect replies from the local clock and records the turn.
func (h *Handler) answerDirect(ctx context.Context, chatID, userID int64, question, answer string) {
	h.reply(chatID, answer)
	if err := h.sessions.AppendExchange(ctx, userID, question, answer, session.ExchangeMeta{}); err != nil {
		logger.WithField("user_id", userID).Errorf("failed to record exchange: %v", err)
	}
}
