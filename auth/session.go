// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Session is a logged-in browser. Sessions live only in memory and are
// lost on restart.
type Session struct {
	ID        string
	UserID    uint
	CreatedAt time.Time
}

// SessionStore keeps sessions in a TTL cache. Expiry is sliding: Touch
// pushes it back by the full TTL.
type SessionStore struct {
	cache *ttlcache.Cache[string, Session]
	ttl   time.Duration

	mu      sync.Mutex
	running bool
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, Session](ttl),
		ttlcache.WithDisableTouchOnHit[string, Session](),
	)
	return &SessionStore{cache: cache, ttl: ttl}
}

// Start runs the expiry janitor until Stop is called. Expired sessions are
// never returned by Get either way; the janitor only frees their memory.
func (s *SessionStore) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	go s.cache.Start()
}

// Stop halts the janitor. It is a no-op if Start was never called.
func (s *SessionStore) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.cache.Stop()
}

func (s *SessionStore) TTL() time.Duration { return s.ttl }

// Create starts a new session for userID
func (s *SessionStore) Create(userID uint) (Session, error) {
	id, err := GenerateID(32)
	if err != nil {
		return Session{}, err
	}
	sess := Session{ID: id, UserID: userID, CreatedAt: time.Now()}
	s.cache.Set(id, sess, ttlcache.DefaultTTL)
	return sess, nil
}

// Get returns the session, or ErrSessionNotFound if it is unknown or expired
func (s *SessionStore) Get(id string) (Session, error) {
	if id == "" {
		return Session{}, ErrSessionNotFound
	}
	item := s.cache.Get(id)
	if item == nil {
		return Session{}, ErrSessionNotFound
	}
	return item.Value(), nil
}

// Touch extends a session's expiry
func (s *SessionStore) Touch(id string) {
	s.cache.Touch(id)
}

func (s *SessionStore) Delete(id string) {
	s.cache.Delete(id)
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	return s.cache.Len()
}
