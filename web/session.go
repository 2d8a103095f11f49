package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is per-visitor state attached to a request. Persistence is the
// store's concern; this layer only reads and writes values.
type Session interface {
	ID() string
	Get(key string) interface{}
	Set(key string, value interface{})
	Delete(key string)
}

// SessionOptions configure how sessions bind to requests.
type SessionOptions struct {
	// CookieName is the session cookie. Defaults to "weftsess".
	CookieName string
	// TTL bounds session lifetime in the store. Zero means no expiry.
	TTL time.Duration
}

// DefaultSessionOptions returns the framework session defaults.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{CookieName: "weftsess", TTL: time.Hour}
}

// SessionStore opens sessions by ID, creating them on first sight.
type SessionStore interface {
	Open(id string) Session
	Remove(id string)
}

// memorySession is the in-memory Session implementation.
type memorySession struct {
	id     string
	mu     sync.RWMutex
	values map[string]interface{}
}

func (s *memorySession) ID() string { return s.id }

func (s *memorySession) Get(key string) interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

func (s *memorySession) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *memorySession) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// MemorySessionStore keeps sessions in process memory. Suitable for
// development and tests; production deployments supply their own
// SessionStore implementation.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	touched  map[string]time.Time
	ttl      time.Duration
}

// NewMemorySessionStore creates an empty in-memory store. A non-zero ttl
// makes Open discard sessions idle for longer than ttl.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*memorySession),
		touched:  make(map[string]time.Time),
		ttl:      ttl,
	}
}

// Open returns the session with the given ID, creating it when absent or
// expired. An empty ID creates a fresh session with a generated ID.
func (s *MemorySessionStore) Open(id string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			if s.ttl == 0 || time.Since(s.touched[id]) <= s.ttl {
				s.touched[id] = time.Now()
				return sess
			}
			delete(s.sessions, id)
			delete(s.touched, id)
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	sess := &memorySession{id: id, values: make(map[string]interface{})}
	s.sessions[id] = sess
	s.touched[id] = time.Now()
	return sess
}

// Remove drops a session from the store.
func (s *MemorySessionStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.touched, id)
}

// Count returns the number of live sessions.
func (s *MemorySessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
