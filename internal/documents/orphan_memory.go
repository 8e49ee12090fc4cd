// Copyright (c) 2026 Nomik. All rights reserved.

package documents

import (
	"context"
	"sync"
	"time"
)

// MemoryOrphanTracker implements [OrphanTracker] in process memory.
// Used by tests and single-node development setups.
type MemoryOrphanTracker struct {
	mu      sync.Mutex
	handles map[string]time.Time
}

// NewMemoryOrphanTracker creates an empty in-memory tracker.
func NewMemoryOrphanTracker() *MemoryOrphanTracker {
	return &MemoryOrphanTracker{handles: make(map[string]time.Time)}
}

// Track records a handle as attached at the given time.
func (tracker *MemoryOrphanTracker) Track(_ context.Context, handle string, attachedAt time.Time) error {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	tracker.handles[handle] = attachedAt
	return nil
}

// Clear removes handles adopted by a committed account.
func (tracker *MemoryOrphanTracker) Clear(_ context.Context, handles ...string) error {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	for _, handle := range handles {
		delete(tracker.handles, handle)
	}
	return nil
}

// Reclaim removes and returns handles attached before the cutoff.
func (tracker *MemoryOrphanTracker) Reclaim(_ context.Context, cutoff time.Time) ([]string, error) {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	var stale []string
	for handle, attachedAt := range tracker.handles {
		if attachedAt.Before(cutoff) {
			stale = append(stale, handle)
			delete(tracker.handles, handle)
		}
	}
	return stale, nil
}
