// Package session holds the current bearer token and derives the caller's
// identity from it.
//
// A Store is the single source of truth for the credential. It is written by
// login and logout flows and read by the HTTP client on every request.
package session

import (
	"context"
	"errors"
	"sync"
)

// TokenKey is the fixed storage key the token is persisted under.
const TokenKey = "token"

// ErrNoToken is returned by Store.Get when no token is persisted.
var ErrNoToken = errors.New("no session token")

// Store persists at most one session token.
type Store interface {
	// Set persists token, replacing any previous value. The token is not validated.
	Set(ctx context.Context, token string) error
	// Get returns the persisted token or ErrNoToken.
	Get(ctx context.Context) (string, error)
	// Clear removes the token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	set   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.set = token, true
	return nil
}

func (s *MemoryStore) Get(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return "", ErrNoToken
	}
	return s.token, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.set = "", false
	return nil
}

// Present reports whether store holds a token. Only presence is checked.
func Present(ctx context.Context, store Store) bool {
	t, err := store.Get(ctx)
	return err == nil && t != ""
}
