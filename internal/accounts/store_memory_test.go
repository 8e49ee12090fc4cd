// Copyright (c) 2026 Nomik. All rights reserved.

package accounts_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krish2956-mk/getnomik-tech-team/internal/accounts"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/apperr"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/sec"
	pkguuid "github.com/krish2956-mk/getnomik-tech-team/pkg/uuid"
)

func clientAccount(email string) *accounts.Account {
	return &accounts.Account{
		ID:           pkguuid.New(),
		Role:         sec.RoleClient,
		Email:        email,
		PasswordHash: "$2a$10$fakehashfakehashfakehashfakehash",
		CreatedAt:    time.Now(),
	}
}

/*
TestMemoryStore_EmailUniqueness verifies the check-and-insert conflict path.
*/
func TestMemoryStore_EmailUniqueness(t *testing.T) {
	store := accounts.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, clientAccount("asha@example.com")))

	err := store.Create(ctx, clientAccount("asha@example.com"))
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "CONFLICT"))
}

/*
TestMemoryStore_ConcurrentCreateSameEmail races many inserts of the same
email and requires exactly one winner.
*/
func TestMemoryStore_ConcurrentCreateSameEmail(t *testing.T) {
	store := accounts.NewMemoryStore()
	ctx := context.Background()

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.Create(ctx, clientAccount("asha@example.com"))
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.True(t, apperr.HasCode(err, "CONFLICT"))
		}
	}
	assert.Equal(t, 1, successes)
}

/*
TestMemoryStore_FederatedUniqueness verifies one account per identity pair.
*/
func TestMemoryStore_FederatedUniqueness(t *testing.T) {
	store := accounts.NewMemoryStore()
	ctx := context.Background()

	first := clientAccount("asha@example.com")
	first.PasswordHash = ""
	first.Federated = &accounts.FederatedRef{Provider: "google", Subject: "sub-1"}
	require.NoError(t, store.Create(ctx, first))

	second := clientAccount("other@example.com")
	second.PasswordHash = ""
	second.Federated = &accounts.FederatedRef{Provider: "google", Subject: "sub-1"}

	err := store.Create(ctx, second)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "CONFLICT"))

	found, err := store.FindByFederated(ctx, "google", "sub-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

/*
TestMemoryStore_FindMisses verifies NOT_FOUND on every lookup path.
*/
func TestMemoryStore_FindMisses(t *testing.T) {
	store := accounts.NewMemoryStore()
	ctx := context.Background()

	_, err := store.FindByID(ctx, "missing")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

	_, err = store.FindByEmail(ctx, "missing@example.com")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

	_, err = store.FindByFederated(ctx, "google", "missing")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}
