// Package session manages anonymous-session identifiers. A session scopes
// an unauthenticated caller's data for its own lifetime only; when it
// expires the data it stamped is unreachable for good.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownSession covers both "never issued" and "expired"; callers get
// a fresh session either way.
var ErrUnknownSession = errors.New("unknown or expired session")

type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store issues and validates anonymous sessions. Backed by Redis when one
// is configured, by an in-process map otherwise — mirroring the quiz
// store's durable/transient split.
type Store interface {
	Issue(ctx context.Context) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	// Refresh extends the session's lifetime by the store's TTL.
	Refresh(ctx context.Context, id string) (Session, error)
	Revoke(ctx context.Context, id string) error
}

const DefaultTTL = 30 * 24 * time.Hour

type memoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]Session
}

func NewMemoryStore(ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryStore{ttl: ttl, sessions: map[string]Session{}}
}

func (m *memoryStore) Issue(_ context.Context) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	s := Session{ID: uuid.NewString(), CreatedAt: now, ExpiresAt: now.Add(m.ttl)}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(id)
}

func (m *memoryStore) getLocked(id string) (Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrUnknownSession
	}
	if time.Now().After(s.ExpiresAt) {
		delete(m.sessions, id)
		return Session{}, ErrUnknownSession
	}
	return s, nil
}

func (m *memoryStore) Refresh(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.getLocked(id)
	if err != nil {
		return Session{}, err
	}
	s.ExpiresAt = time.Now().Add(m.ttl)
	m.sessions[id] = s
	return s, nil
}

func (m *memoryStore) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
