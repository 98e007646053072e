package models

import (
	"time"
)

// Message represents one chat message in API wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Intent is the closed set of message purposes driving search and
// formatting decisions. Recomputed per message, never stored.
type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentSmallTalk    Intent = "small_talk"
	IntentTimeQuery    Intent = "time_query"
	IntentDateQuery    Intent = "date_query"
	IntentInfoQuestion Intent = "info_question"
	IntentRealTimeData Intent = "real_time"
	IntentGeneralTask  Intent = "general_task"
)

// Preferences holds per-user response personalization. Mutated only by
// explicit user command, read-only during generation.
type Preferences struct {
	ResponseStyle  string `json:"response_style"`  // friendly, professional, casual, technical, concise
	ResponseLength string `json:"response_length"` // short, medium, detailed
	IncludeEmojis  bool   `json:"include_emojis"`
	ExpertiseLevel string `json:"expertise_level"` // beginner, general, expert
	DisplayName    string `json:"display_name,omitempty"`
}

// DefaultPreferences returns the preference values assigned to a new user.
func DefaultPreferences() Preferences {
	return Preferences{
		ResponseStyle:  "friendly",
		ResponseLength: "medium",
		IncludeEmojis:  true,
		ExpertiseLevel: "general",
	}
}

// UserSession is the per-user mutable state: bounded conversation
// history plus metadata, persisted after every mutation.
type UserSession struct {
	UserID       int64       `json:"user_id"`
	Username     string      `json:"username,omitempty"`
	MessageCount int         `json:"message_count"`
	CreatedAt    time.Time   `json:"created_at"`
	LastActiveAt time.Time   `json:"last_active_at"`
	SystemPrompt string      `json:"system_prompt"`
	ModelName    string      `json:"model_name"`
	History      []Message   `json:"conversation_history"`
	Preferences  Preferences `json:"preferences"`
}

// SearchResult is transient search output: consumed once by the
// generator and discarded. Only a redacted marker survives into history.
type SearchResult struct {
	Text    string
	Sources []string
}

// CacheEntry is a cached question/answer pair.
type CacheEntry struct {
	Question  string
	Answer    string
	Model     string
	CreatedAt time.Time
}
