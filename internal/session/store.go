package session

import (
	"sync"
	"time"
)

// tokenStore holds live sessions by bearer token
type tokenStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newTokenStore() *tokenStore {
	return &tokenStore{sessions: make(map[string]*Session)}
}

func (s *tokenStore) put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
}

// get returns a copy so callers never race with updates
func (s *tokenStore) get(token string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

func (s *tokenStore) delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// sweep removes sessions that expired before now and returns how many
func (s *tokenStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for token, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, token)
			n++
		}
	}
	return n
}

func (s *tokenStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
