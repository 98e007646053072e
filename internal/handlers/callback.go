package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rising-ai-tgbot-go/internal/i18n"
	"github.com/rising-ai-tgbot-go/internal/models"
	"github.com/rising-ai-tgbot-go/pkg/logger"
)

// Callback data is "pref:<field>:<value>".
const prefPrefix = "pref:"

func (h *Handler) sendSettingsKeyboard(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Length: short", prefPrefix+"length:short"),
			tgbotapi.NewInlineKeyboardButtonData("medium", prefPrefix+"length:medium"),
			tgbotapi.NewInlineKeyboardButtonData("detailed", prefPrefix+"length:detailed"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Emojis: on", prefPrefix+"emojis:on"),
			tgbotapi.NewInlineKeyboardButtonData("off", prefPrefix+"emojis:off"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Level: beginner", prefPrefix+"level:beginner"),
			tgbotapi.NewInlineKeyboardButtonData("general", prefPrefix+"level:general"),
			tgbotapi.NewInlineKeyboardButtonData("expert", prefPrefix+"level:expert"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Reset to defaults", prefPrefix+"reset:all"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, "Settings (tap to change):")
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		logger.WithField("chat_id", chatID).Errorf("failed to send settings: %v", err)
	}
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	defer func() {
		// Always answer so the client stops its spinner.
		if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			logger.Errorf("failed to answer callback: %v", err)
		}
	}()

	if !strings.HasPrefix(cb.Data, prefPrefix) || cb.Message == nil {
		return
	}
	parts := strings.SplitN(strings.TrimPrefix(cb.Data, prefPrefix), ":", 2)
	if len(parts) != 2 {
		return
	}
	field, value := parts[0], parts[1]
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	err := h.sessions.Update(ctx, userID, func(s *models.UserSession) {
		switch field {
		case "length":
			s.Preferences.ResponseLength = value
		case "emojis":
			s.Preferences.IncludeEmojis = value == "on"
		case "level":
			s.Preferences.ExpertiseLevel = value
		case "reset":
			s.Preferences = models.DefaultPreferences()
		}
	})
	if err != nil {
		logger.WithField("user_id", userID).Errorf("preference update failed: %v", err)
		h.reply(chatID, h.loc.T(h.lang(), i18n.MsgInternalError, nil))
		return
	}

	if field == "reset" {
		h.reply(chatID, h.loc.T(h.lang(), i18n.MsgPreferencesReset, nil))
		return
	}
	h.reply(chatID, "Preference updated: "+field+" = "+value)
}
