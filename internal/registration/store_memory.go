// Copyright (c) 2026 Nomik. All rights reserved.

package registration

import (
	"context"
	"sync"
	"time"
)

// MemorySessionStore implements [SessionStore] in process memory.
//
// It mirrors the Redis semantics that matter to callers: lazy TTL eviction
// on read, and an atomic claim under one lock. Used by tests and
// single-node development setups.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session)}
}

// Save writes the session under its token.
func (store *MemorySessionStore) Save(_ context.Context, token string, session *Session) error {
	if session.Expired(time.Now()) {
		return errSessionNotFound()
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	store.sessions[token] = session.Clone()
	return nil
}

// Get returns the session for a token, evicting it lazily if expired.
func (store *MemorySessionStore) Get(_ context.Context, token string) (*Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	session, exists := store.sessions[token]
	if !exists {
		return nil, errSessionNotFound()
	}
	if session.Expired(time.Now()) {
		delete(store.sessions, token)
		return nil, errSessionNotFound()
	}

	return session.Clone(), nil
}

// Claim atomically removes and returns the session for a token.
func (store *MemorySessionStore) Claim(_ context.Context, token string) (*Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	session, exists := store.sessions[token]
	if !exists {
		return nil, errSessionNotFound()
	}
	delete(store.sessions, token)

	if session.Expired(time.Now()) {
		return nil, errSessionNotFound()
	}

	return session.Clone(), nil
}

// Delete removes the session for a token. Idempotent.
func (store *MemorySessionStore) Delete(_ context.Context, token string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.sessions, token)
	return nil
}
