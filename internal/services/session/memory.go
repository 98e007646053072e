package session

import (
	"context"
	"fmt"

	gocache "github.com/patrickmn/go-cache"

	"github.com/rising-ai-tgbot-go/internal/models"
)

// MemoryStore keeps sessions in process memory. Useful for local runs
// and tests, sessions vanish on restart.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, 0)}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (*models.UserSession, error) {
	v, ok := s.cache.Get(sessionKey(userID))
	if !ok {
		return nil, nil
	}
	stored := v.(models.UserSession)
	// Copy out so callers never mutate the stored value directly.
	clone := stored
	clone.History = append([]models.Message(nil), stored.History...)
	return &clone, nil
}

func (s *MemoryStore) Save(_ context.Context, session *models.UserSession) error {
	if session == nil {
		return fmt.Errorf("nil session")
	}
	clone := *session
	clone.History = append([]models.Message(nil), session.History...)
	s.cache.Set(sessionKey(session.UserID), clone, gocache.NoExpiration)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.cache.Delete(sessionKey(userID))
	return nil
}

func (s *MemoryStore) Close() error { return nil }
