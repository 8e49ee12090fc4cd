// Copyright (c) 2026 Nomik. All rights reserved.

package documents

import (
	"context"
	"log/slog"
	"time"
)

// Remover deletes a blob from the external document store.
// The blob store itself is outside this system; only the handle crosses
// the boundary.
type Remover func(context context.Context, handle string) error

// Reaper periodically reclaims blob handles whose registration session has
// expired without committing. Session expiry itself is enforced lazily by
// the session store; the reaper only recovers wasted blob storage.
type Reaper struct {
	tracker  OrphanTracker
	ledger   Ledger
	remove   Remover
	interval time.Duration
	// grace is added on top of the session TTL so a session that is mid-commit
	// at expiry never has its documents deleted out from under it.
	grace      time.Duration
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewReaper constructs a [Reaper].
func NewReaper(tracker OrphanTracker, ledger Ledger, remove Remover, sessionTTL time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		tracker:    tracker,
		ledger:     ledger,
		remove:     remove,
		interval:   5 * time.Minute,
		grace:      10 * time.Minute,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
// Intended to be started as a background goroutine from main.
func (reaper *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(reaper.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			reaper.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// sweep reclaims one batch of stale handles.
func (reaper *Reaper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-(reaper.sessionTTL + reaper.grace))

	handles, err := reaper.tracker.Reclaim(ctx, cutoff)
	if err != nil {
		reaper.logger.Error("document_reaper_reclaim_failed", slog.Any("error", err))
		return
	}

	removed := 0
	for _, handle := range handles {
		// A handle can surface here even though its session committed, when
		// the commit-time tracking clear failed. The ledger is the source of
		// truth for ownership: an adopted handle's blob is live and must not
		// be deleted. Popping it from the tracker completes the clear.
		adopted, err := reaper.ledger.HandleAdopted(ctx, handle)
		if err != nil {
			// Unknown ownership: keep the blob and re-track the handle so a
			// later sweep decides once the ledger answers again.
			reaper.logger.Error("document_reaper_ownership_check_failed",
				slog.String("handle", handle),
				slog.Any("error", err),
			)
			_ = reaper.tracker.Track(ctx, handle, time.Now())
			continue
		}
		if adopted {
			reaper.logger.Info("document_reaper_skipped_adopted_handle",
				slog.String("handle", handle))
			continue
		}

		if err := reaper.remove(ctx, handle); err != nil {
			// Best effort: the handle is already out of the tracker, a failed
			// blob deletion is logged for manual cleanup.
			reaper.logger.Error("document_reaper_blob_delete_failed",
				slog.String("handle", handle),
				slog.Any("error", err),
			)
			continue
		}
		removed++
	}

	if len(handles) > 0 {
		reaper.logger.Info("document_reaper_swept",
			slog.Int("stale", len(handles)),
			slog.Int("removed", removed),
		)
	}
}
