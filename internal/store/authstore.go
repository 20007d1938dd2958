package store

import (
	"sync"

	"newsdesk/internal/models"
	"newsdesk/internal/session"
)

// AuthStore is a read-only projection of the session provider's current
// identity. It subscribes once at construction; identity changes only ever
// arrive through the provider.
type AuthStore struct {
	mu            sync.RWMutex
	identity      *models.Identity
	authenticated bool
}

// NewAuthStore subscribes to the provider and mirrors every change.
func NewAuthStore(provider session.Provider) *AuthStore {
	s := &AuthStore{}
	provider.Subscribe(func(identity *models.Identity) {
		s.mu.Lock()
		s.identity = identity
		s.authenticated = identity != nil
		s.mu.Unlock()
	})
	return s
}

// Current returns the current identity, or nil when signed out.
func (s *AuthStore) Current() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	identity := *s.identity
	return &identity
}

// IsAuthenticated reports whether an identity is present.
func (s *AuthStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}
