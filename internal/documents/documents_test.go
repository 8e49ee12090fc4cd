// Copyright (c) 2026 Nomik. All rights reserved.

package documents_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krish2956-mk/getnomik-tech-team/internal/documents"
)

/*
TestParseCategory verifies the category parser against the known set.
*/
func TestParseCategory(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		category documents.Category
		valid    bool
	}{
		{"identity", "identity-proof", documents.CategoryIdentityProof, true},
		{"address", "address-proof", documents.CategoryAddressProof, true},
		{"advocate", "advocate-verification", documents.CategoryAdvocateVerification, true},
		{"supplementary", "supplementary", documents.CategorySupplementary, true},
		{"unknown", "tax-return", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, ok := documents.ParseCategory(tt.raw)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.category, category)
		})
	}
}

/*
TestMemoryOrphanTracker verifies track, clear, and cutoff-based reclaim.
*/
func TestMemoryOrphanTracker(t *testing.T) {
	tracker := documents.NewMemoryOrphanTracker()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, tracker.Track(ctx, "blob-old", base.Add(-2*time.Hour)))
	require.NoError(t, tracker.Track(ctx, "blob-fresh", base))
	require.NoError(t, tracker.Track(ctx, "blob-adopted", base.Add(-2*time.Hour)))

	// Adoption removes the handle from reclamation.
	require.NoError(t, tracker.Clear(ctx, "blob-adopted"))

	reclaimed, err := tracker.Reclaim(ctx, base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"blob-old"}, reclaimed)

	// Reclaim is destructive: a second sweep finds nothing.
	reclaimed, err = tracker.Reclaim(ctx, base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, reclaimed)
}

/*
TestMemoryOrphanTracker_RetrackMovesDeadline verifies that re-tracking a
handle updates its attach time, keeping active sessions out of the sweep.
*/
func TestMemoryOrphanTracker_RetrackMovesDeadline(t *testing.T) {
	tracker := documents.NewMemoryOrphanTracker()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, tracker.Track(ctx, "blob-1", base.Add(-2*time.Hour)))
	require.NoError(t, tracker.Track(ctx, "blob-1", base))

	reclaimed, err := tracker.Reclaim(ctx, base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, reclaimed)
}

/*
TestMemoryOrphanTracker_ConcurrentReclaimIsExclusive verifies parallel
sweeps partition the stale set: every handle surfaces in exactly one
sweeper's batch, never two.
*/
func TestMemoryOrphanTracker_ConcurrentReclaimIsExclusive(t *testing.T) {
	tracker := documents.NewMemoryOrphanTracker()
	ctx := context.Background()
	attachedAt := time.Now().Add(-2 * time.Hour)

	const total = 200
	for index := 0; index < total; index++ {
		require.NoError(t, tracker.Track(ctx, "blob-"+strconv.Itoa(index), attachedAt))
	}

	const sweepers = 8
	var wg sync.WaitGroup
	batches := make(chan []string, sweepers)
	for index := 0; index < sweepers; index++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handles, err := tracker.Reclaim(ctx, time.Now())
			assert.NoError(t, err)
			batches <- handles
		}()
	}
	wg.Wait()
	close(batches)

	seen := make(map[string]int)
	for handles := range batches {
		for _, handle := range handles {
			seen[handle]++
		}
	}

	assert.Len(t, seen, total)
	for handle, count := range seen {
		assert.Equalf(t, 1, count, "handle %s reclaimed %d times", handle, count)
	}
}
