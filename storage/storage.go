package storage

import (
	"errors"
	"sort"
	"sync"

	"github.com/NethermindEth/magi/core"
)

var ErrNotFound = errors.New("session not found")

// Store persists council sessions
type Store interface {
	SaveSession(s *core.Session) error
	GetSession(id string) (*core.Session, error)
	// ListSessions returns up to limit sessions, newest first. limit <= 0 means all.
	ListSessions(limit int) ([]*core.Session, error)
	Close() error
}

// MemoryStore keeps sessions in a map
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]core.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]core.Session)}
}

func (m *MemoryStore) SaveSession(s *core.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemoryStore) GetSession(id string) (*core.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) ListSessions(limit int) ([]*core.Session, error) {
	m.mu.RLock()
	all := make([]*core.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, &s)
	}
	m.mu.RUnlock()
	return newestFirst(all, limit), nil
}

func (m *MemoryStore) Close() error { return nil }

func newestFirst(sessions []*core.Session, limit int) []*core.Session {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions
}
