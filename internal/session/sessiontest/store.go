// Package sessiontest provides an in-memory session store and a helper for logging a test session in.
package sessiontest

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/lemonhouse/storefront/internal/session"
)

// Store is a map-backed session.Store.
type Store struct {
	mu     sync.Mutex
	values map[string][]byte
}

var _ session.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{values: map[string][]byte{}}
}

func (s *Store) Save(_ context.Context, id string, user session.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[id] = payload
	return nil
}

func (s *Store) Load(_ context.Context, id string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[id]
	return v, ok, nil
}

func (s *Store) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, id)
	return nil
}

// Sessions builds a session service over a fresh Store.
func Sessions(t testing.TB) session.Service {
	t.Helper()
	svc, err := session.NewService(NewStore(), nil)
	if err != nil {
		t.Fatalf("new session service: %v", err)
	}
	return svc
}

// LoggedIn builds a session service with user logged in under sessionID.
func LoggedIn(t testing.TB, sessionID string, user session.User) session.Service {
	t.Helper()
	svc := Sessions(t)
	if _, err := svc.Login(context.Background(), sessionID, user); err != nil {
		t.Fatalf("login: %v", err)
	}
	return svc
}
