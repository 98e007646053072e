package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rising-ai-tgbot-go/internal/models"
	"github.com/rising-ai-tgbot-go/pkg/logger"
)

// Store is the persistence backend for user sessions. Get returns
// (nil, nil) for an unknown user.
type Store interface {
	Get(ctx context.Context, userID int64) (*models.UserSession, error)
	Save(ctx context.Context, session *models.UserSession) error
	Delete(ctx context.Context, userID int64) error
	Close() error
}

// Markers written into history in place of raw search payloads. The
// search text itself never enters a session.
const (
	searchQueryMarker  = "[Search query: %s]"
	searchAnswerMarker = "[Answered with real-time search data]"
)

// Manager owns all session mutation. Per-user locks serialize
// concurrent updates from the same user, different users never block
// each other.
type Manager struct {
	store         Store
	maxHistory    int
	defaultPrompt string
	knownModels   map[string]bool

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewManager(store Store, maxHistory int, defaultPrompt string, knownModels []string) *Manager {
	known := make(map[string]bool, len(knownModels))
	for _, m := range knownModels {
		known[m] = true
	}
	return &Manager{
		store:         store,
		maxHistory:    maxHistory,
		defaultPrompt: defaultPrompt,
		knownModels:   known,
		locks:         make(map[int64]*sync.Mutex),
	}
}

func (m *Manager) userLock(userID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[userID] = l
	}
	return l
}

// GetOrCreate loads a session, repairing any missing fields, or
// creates a fresh one.
func (m *Manager) GetOrCreate(ctx context.Context, userID int64, username string) (*models.UserSession, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if s == nil {
		s = &models.UserSession{
			UserID:       userID,
			Username:     username,
			CreatedAt:    time.Now(),
			LastActiveAt: time.Now(),
			SystemPrompt: m.defaultPrompt,
			Preferences:  models.DefaultPreferences(),
		}
		if err := m.store.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("failed to save new session: %w", err)
		}
		logger.WithField("user_id", userID).Info("created new session")
		return s, nil
	}
	m.repair(s, userID, username)
	return s, nil
}

// repair fills fields a corrupted or older-format session may lack,
// one field at a time so good data survives.
func (m *Manager) repair(s *models.UserSession, userID int64, username string) {
	if s.UserID == 0 {
		s.UserID = userID
	}
	if s.Username == "" {
		s.Username = username
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if s.LastActiveAt.IsZero() {
		s.LastActiveAt = time.Now()
	}
	if s.SystemPrompt == "" {
		s.SystemPrompt = m.defaultPrompt
	}
	if s.Preferences == (models.Preferences{}) {
		s.Preferences = models.DefaultPreferences()
	}
	if s.History == nil {
		s.History = []models.Message{}
	}
	// An unrecognized model identifier falls back to the configured
	// default (empty means default downstream).
	if s.ModelName != "" && len(m.knownModels) > 0 && !m.knownModels[s.ModelName] {
		logger.WithFields(map[string]interface{}{
			"user_id": userID,
			"model":   s.ModelName,
		}).Warn("resetting unknown model in session")
		s.ModelName = ""
	}
}

// ExchangeMeta describes how a reply was produced, for redacted
// history bookkeeping.
type ExchangeMeta struct {
	Searched    bool
	SearchQuery string
}

// AppendExchange records one user/assistant turn pair, prunes history
// and persists. Search payloads are replaced by markers.
func (m *Manager) AppendExchange(ctx context.Context, userID int64, userMsg, reply string, meta ExchangeMeta) error {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s, err := m.store.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if s == nil {
		return fmt.Errorf("no session for user %d", userID)
	}

	storedUser := userMsg
	storedReply := reply
	if meta.Searched {
		storedUser = userMsg + "\n" + fmt.Sprintf(searchQueryMarker, meta.SearchQuery)
		storedReply = reply + "\n" + searchAnswerMarker
	}
	s.History = append(s.History,
		models.Message{Role: models.RoleUser, Content: storedUser},
		models.Message{Role: models.RoleAssistant, Content: storedReply},
	)
	s.History = pruneHistory(s.History, m.maxHistory)
	s.MessageCount++
	s.LastActiveAt = time.Now()

	if err := m.store.Save(ctx, s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// pruneHistory keeps the most recent turns, never more than
// 2*maxHistory messages, and always an even count so the history
// starts on a user turn.
func pruneHistory(history []models.Message, maxHistory int) []models.Message {
	limit := 2 * maxHistory
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	if len(history)%2 != 0 {
		history = history[1:]
	}
	return history
}

// Update applies fn to the session under the user lock and persists.
func (m *Manager) Update(ctx context.Context, userID int64, fn func(*models.UserSession)) error {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s, err := m.store.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if s == nil {
		return fmt.Errorf("no session for user %d", userID)
	}
	fn(s)
	s.LastActiveAt = time.Now()
	if err := m.store.Save(ctx, s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// ClearHistory wipes the conversation but keeps identity, preferences
// and counters.
func (m *Manager) ClearHistory(ctx context.Context, userID int64) error {
	return m.Update(ctx, userID, func(s *models.UserSession) {
		s.History = []models.Message{}
	})
}
