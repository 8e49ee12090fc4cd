// Copyright (c) 2026 Nomik. All rights reserved.

package documents

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger answers ownership checks from a fixed set and can simulate a
// database outage.
type fakeLedger struct {
	adopted map[string]bool
	err     error
}

func (ledger *fakeLedger) ListByAccount(context.Context, string) ([]Reference, error) {
	return nil, nil
}

func (ledger *fakeLedger) HandleAdopted(_ context.Context, handle string) (bool, error) {
	if ledger.err != nil {
		return false, ledger.err
	}
	return ledger.adopted[handle], nil
}

// recordingRemover collects removed handles behind a lock.
type recordingRemover struct {
	mu      sync.Mutex
	removed []string
}

func (remover *recordingRemover) remove(_ context.Context, handle string) error {
	remover.mu.Lock()
	defer remover.mu.Unlock()
	remover.removed = append(remover.removed, handle)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestReaperSweep_SkipsAdoptedHandles verifies that a handle owned by a
committed account is never deleted, even when a failed commit-time clear
left it in the orphan tracker. The sweep still pops it from the tracker,
completing the clear.
*/
func TestReaperSweep_SkipsAdoptedHandles(t *testing.T) {
	tracker := NewMemoryOrphanTracker()
	ctx := context.Background()
	stale := time.Now().Add(-2 * time.Hour)

	require.NoError(t, tracker.Track(ctx, "blob-orphan", stale))
	require.NoError(t, tracker.Track(ctx, "blob-live", stale))

	ledger := &fakeLedger{adopted: map[string]bool{"blob-live": true}}
	remover := &recordingRemover{}
	reaper := NewReaper(tracker, ledger, remover.remove, 30*time.Minute, discardLogger())

	reaper.sweep(ctx)

	assert.Equal(t, []string{"blob-orphan"}, remover.removed)

	// Both handles left the tracker: the orphan by deletion, the live one
	// because adoption finished its bookkeeping.
	remaining, err := tracker.Reclaim(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

/*
TestReaperSweep_KeepsHandleOnOwnershipCheckFailure verifies that when the
ledger cannot answer, the blob survives and the handle goes back into the
tracker for a later sweep.
*/
func TestReaperSweep_KeepsHandleOnOwnershipCheckFailure(t *testing.T) {
	tracker := NewMemoryOrphanTracker()
	ctx := context.Background()

	require.NoError(t, tracker.Track(ctx, "blob-unknown", time.Now().Add(-2*time.Hour)))

	ledger := &fakeLedger{err: errors.New("connection refused")}
	remover := &recordingRemover{}
	reaper := NewReaper(tracker, ledger, remover.remove, 30*time.Minute, discardLogger())

	reaper.sweep(ctx)

	assert.Empty(t, remover.removed)

	// Re-tracked: a later sweep sees the handle again once it goes stale.
	remaining, err := tracker.Reclaim(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"blob-unknown"}, remaining)
}
