package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/rising-ai-tgbot-go/pkg/logger"
)

//go:embed locales/*.json
var localeFS embed.FS

// Message IDs used across handlers.
const (
	MsgWelcome          = "welcome"
	MsgHelp             = "help"
	MsgHistoryCleared   = "history_cleared"
	MsgHistoryEmpty     = "history_empty"
	MsgProcessing       = "processing"
	MsgRateLimited      = "rate_limited"
	MsgInternalError    = "internal_error"
	MsgProvidersFailed  = "providers_failed"
	MsgSystemPromptSet  = "system_prompt_set"
	MsgModelSet         = "model_set"
	MsgSearchOn         = "search_on"
	MsgSearchOff        = "search_off"
	MsgPreferencesReset = "preferences_reset"
	MsgStyleSet         = "style_set"
	MsgUnknownCommand   = "unknown_command"
)

// Manager wraps a go-i18n bundle with per-language localizers.
type Manager struct {
	bundle     *goi18n.Bundle
	localizers map[string]*goi18n.Localizer
	defaultLng string
}

// NewManager loads the embedded locale files for the given languages.
func NewManager(defaultLang string, languages []string) (*Manager, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	m := &Manager{
		bundle:     bundle,
		localizers: make(map[string]*goi18n.Localizer),
		defaultLng: defaultLang,
	}

	for _, lang := range languages {
		path := fmt.Sprintf("locales/%s.json", lang)
		if _, err := bundle.LoadMessageFileFS(localeFS, path); err != nil {
			return nil, fmt.Errorf("failed to load locale %s: %w", lang, err)
		}
		m.localizers[lang] = goi18n.NewLocalizer(bundle, lang)
	}

	if _, ok := m.localizers[defaultLang]; !ok {
		return nil, fmt.Errorf("default language %q has no locale file", defaultLang)
	}
	return m, nil
}

// T translates a message ID for the given language, falling back to the
// default language and finally to the ID itself.
func (m *Manager) T(lang, messageID string, data map[string]interface{}) string {
	loc, ok := m.localizers[lang]
	if !ok {
		loc = m.localizers[m.defaultLng]
	}
	msg, err := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		logger.WithField("message_id", messageID).Warnf("i18n lookup failed: %v", err)
		return messageID
	}
	return msg
}
