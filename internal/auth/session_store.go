package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"janus/internal/cache"
	"janus/internal/model"
)

const sessionKeyPrefix = "session:"

// memorySweepInterval bounds how often Save scans for expired sessions.
const memorySweepInterval = time.Minute

// SessionStore keeps per-visitor session state between requests.
// Get returns (nil, nil) for unknown or expired sessions.
type SessionStore interface {
	Save(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore stores sessions in Redis as JSON with a TTL matching
// the session expiry.
type RedisSessionStore struct {
	cache *cache.Client
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(cache *cache.Client) *RedisSessionStore {
	return &RedisSessionStore{cache: cache}
}

// Save writes the session, keeping its remaining lifetime as TTL.
func (s *RedisSessionStore) Save(ctx context.Context, session *model.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, session.ID)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.cache.Set(ctx, sessionKeyPrefix+session.ID, payload, ttl)
}

// Get loads a session from Redis.
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes a session from Redis.
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+id)
}

// MemorySessionStore keeps sessions in process memory. It suits a single
// instance without Redis.
type MemorySessionStore struct {
	mu        sync.Mutex
	sessions  map[string]model.Session
	now       func() time.Time
	lastSweep time.Time
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]model.Session),
		now:      time.Now,
	}
}

// Save stores a copy of the session. Expired sessions left behind by
// visitors who never came back are dropped at most once per sweep interval.
func (s *MemorySessionStore) Save(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= memorySweepInterval {
		for id, stored := range s.sessions {
			if stored.Expired(now) {
				delete(s.sessions, id)
			}
		}
		s.lastSweep = now
	}
	s.sessions[session.ID] = *session
	return nil
}

// Get returns a copy of the session, evicting it when expired.
func (s *MemorySessionStore) Get(_ context.Context, id string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	if session.Expired(s.now()) {
		delete(s.sessions, id)
		return nil, nil
	}
	return &session, nil
}

// Delete removes a session.
func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
