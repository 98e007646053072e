package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rising-ai-tgbot-go/internal/i18n"
	"github.com/rising-ai-tgbot-go/internal/models"
	"github.com/rising-ai-tgbot-go/pkg/logger"
	"github.com/rising-ai-tgbot-go/pkg/markdown"
)

var validStyles = map[string]bool{
	"friendly": true, "professional": true, "casual": true,
	"technical": true, "concise": true,
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	sess, err := h.sessions.GetOrCreate(ctx, userID, msg.From.UserName)
	if err != nil {
		logger.WithField("user_id", userID).Errorf("session load failed: %v", err)
		h.reply(chatID, h.loc.T(h.lang(), i18n.MsgInternalError, nil))
		return
	}

	switch msg.Command() {
	case "start":
		name := msg.From.FirstName
		if sess.Preferences.DisplayName != "" {
			name = sess.Preferences.DisplayName
		}
		h.reply(chatID, h.loc.T(h.lang(), i18n.MsgWelcome, map[string]interface{}{"Name": name}))

	case "help":
		h.reply(chatID, h.loc.T(h.lang(), i18n.MsgHelp, nil))

	case "clear":
		if err := h.sessions.ClearHistory(ctx, userID); err != nil {
			logger.WithField("user_id", userID).Errorf("clear failed: %v", err)
			h.reply(chatID, h.loc.T(h.lang(), i18n.MsgInternalError, nil))
			return
		}
		h.reply(chatID, h.loc.T(h.lang(), i18n.MsgHistoryCleared, nil))

	case "stats":
		h.reply(chatID, fmt.Sprintf(
			"Messages: %d\nHistory turns: %d\nMember since: %s\nLast active: %s",
			sess.MessageCount,
			len(sess.History)/2,
			sess.CreatedAt.Format("Jan 2, 2006"),
			sess.LastActiveAt.Format("Jan 2, 2006 15:04")))

	case "history":
		h.sendHistory(chatID, sess)

	case "system":
		if args == "" {
			h.reply(chatID, "Current system prompt:\n"+sess.SystemPrompt)
			return
		}
		h.updateSession(ctx, chatID, userID, func(s *models.UserSession) {
			s.SystemPrompt = args
		}, h.loc.T(h.lang(), i18n.MsgSystemPromptSet, nil))

	case "model":
		if args == "" {
			model := sess.ModelName
			if model == "" {
				model = h.cfg.Providers.Default
			}
			h.reply(chatID, "Active model: "+model)
			return
		}
		if known := h.cfg.Providers.KnownModels(); len(known) > 0 && !containsString(known, args) {
			h.reply(chatID, "Unknown model "+args+". Available: "+strings.Join(known, ", "))
			return
		}
		h.updateSession(ctx, chatID, userID, func(s *models.UserSession) {
			s.ModelName = args
		}, h.loc.T(h.lang(), i18n.MsgModelSet, map[string]interface{}{"Model": args}))

	case "search":
		h.handleSearchToggle(ctx, chatID, userID, args)

	case "preferences":
		p := sess.Preferences
		h.reply(chatID, fmt.Sprintf(
			"Style: %s\nLength: %s\nEmojis: %v\nExpertise: %s",
			p.ResponseStyle, p.ResponseLength, p.IncludeEmojis, p.ExpertiseLevel))

	case "style":
		if !validStyles[args] {
			h.reply(chatID, "Usage: /style friendly|professional|casual|technical|concise")
			return
		}
		h.updateSession(ctx, chatID, userID, func(s *models.UserSession) {
			s.Preferences.ResponseStyle = args
		}, h.loc.T(h.lang(), i18n.MsgStyleSet, map[string]interface{}{"Style": args}))

	case "settings":
		h.sendSettingsKeyboard(chatID)

	case "about":
		h.reply(chatID, "I'm a conversational assistant that blends language models with live web search. Ask about anything, including things happening right now.")

	default:
		h.reply(chatID, h.loc.T(h.lang(), i18n.MsgUnknownCommand, nil))
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (h *Handler) updateSession(ctx context.Context, chatID, userID int64, fn func(*models.UserSession), confirmation string) {
	if err := h.sessions.Update(ctx, userID, fn); err != nil {
		logger.WithField("user_id", userID).Errorf("session update failed: %v", err)
		h.reply(chatID, h.loc.T(h.lang(), i18n.MsgInternalError, nil))
		return
	}
	h.reply(chatID, confirmation)
}

func (h *Handler) handleSearchToggle(ctx context.Context, chatID, userID int64, args string) {
	switch strings.ToLower(args) {
	case "on":
		h.search.SetEnabled(true)
		h.reply(chatID, h.loc.T(h.lang(), i18n.MsgSearchOn, nil))
	case "off":
		h.search.SetEnabled(false)
		h.reply(chatID, h.loc.T(h.lang(), i18n.MsgSearchOff, nil))
	default:
		state := "off"
		if h.search.Enabled() {
			state = "on"
		}
		h.reply(chatID, "Live search is "+state+". Usage: /search on|off")
	}
}

const historyPreviewTurns = 5

func (h *Handler) sendHistory(chatID int64, sess *models.UserSession) {
	if len(sess.History) == 0 {
		h.reply(chatID, h.loc.T(h.lang(), i18n.MsgHistoryEmpty, nil))
		return
	}
	start := len(sess.History) - 2*historyPreviewTurns
	if start < 0 {
		start = 0
	}
	var b strings.Builder
	for _, m := range sess.History[start:] {
		who := "You"
		if m.Role == models.RoleAssistant {
			who = "Me"
		}
		content := m.Content
		if len(content) > 200 {
			content = markdown.TruncateUTF8(content, 200) + "..."
		}
		fmt.Fprintf(&b, "<b>%s:</b> %s\n\n", who, markdown.EscapeHTML(content))
	}
	h.sendHTML(chatID, b.String())
}
