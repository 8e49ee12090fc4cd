// Copyright (c) 2026 Nomik. All rights reserved.

package accounts

import (
	"context"
	"sync"

	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/apperr"
)

// MemoryStore implements the credential [Store] in process memory.
//
// It mirrors the PostgreSQL semantics that matter to callers: Create is an
// atomic check-and-insert under one lock, so two concurrent commits with the
// same email see exactly one success and one conflict. Used by tests and
// single-node development setups.
type MemoryStore struct {
	mu      sync.Mutex
	byID    map[string]*Account
	byEmail map[string]*Account
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*Account),
		byEmail: make(map[string]*Account),
	}
}

// Create persists an account under the uniqueness constraints.
func (store *MemoryStore) Create(_ context.Context, account *Account) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, exists := store.byEmail[account.Email]; exists {
		return apperr.Conflict(duplicateEmailMessage)
	}

	if account.Federated != nil {
		for _, existing := range store.byID {
			if existing.Federated != nil &&
				existing.Federated.Provider == account.Federated.Provider &&
				existing.Federated.Subject == account.Federated.Subject {
				return apperr.Conflict(duplicateFederatedMessage)
			}
		}
	}

	clone := *account
	store.byID[account.ID] = &clone
	store.byEmail[account.Email] = &clone
	return nil
}

// FindByID returns the account with the given ID.
func (store *MemoryStore) FindByID(_ context.Context, id string) (*Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	account, exists := store.byID[id]
	if !exists {
		return nil, apperr.NotFound("Account")
	}
	clone := *account
	return &clone, nil
}

// FindByEmail returns the account with the given email.
func (store *MemoryStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	account, exists := store.byEmail[email]
	if !exists {
		return nil, apperr.NotFound("Account")
	}
	clone := *account
	return &clone, nil
}

// FindByFederated resolves a federated identity pair to its linked account.
func (store *MemoryStore) FindByFederated(_ context.Context, provider, subject string) (*Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, account := range store.byID {
		if account.Federated != nil &&
			account.Federated.Provider == provider &&
			account.Federated.Subject == subject {
			clone := *account
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Account")
}
