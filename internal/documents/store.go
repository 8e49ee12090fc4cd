// Copyright (c) 2026 Nomik. All rights reserved.

package documents

import (
	"context"
	"time"
)

// # Committed Ledger Access

// Ledger defines read access to the document references of committed accounts.
//
// Writes happen exclusively inside the account-creation transaction owned by
// the credential store, so that an account and its document references are
// never partially persisted.
type Ledger interface {

	/*
		ListByAccount returns every document reference owned by an account.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - []Reference: Ledger entries, oldest first
		  - error: Database retrieval failures
	*/
	ListByAccount(context context.Context, accountID string) ([]Reference, error)

	/*
		HandleAdopted reports whether a blob handle belongs to a committed
		account. The reaper consults this before deleting a blob, so a
		handle whose orphan-tracking clear failed at commit is never
		reclaimed out from under a live account.

		Parameters:
		  - context: context.Context
		  - handle: string

		Returns:
		  - bool: True when a committed account owns the handle
		  - error: Database retrieval failures
	*/
	HandleAdopted(context context.Context, handle string) (bool, error)
}

// # Orphan Tracking

// OrphanTracker records blob handles attached to pending registration
// sessions. A handle is an orphan candidate from the moment it is attached;
// commit clears it, expiry leaves it for the [Reaper] to reclaim.
type OrphanTracker interface {

	/*
		Track records a handle as attached at the given time.

		Parameters:
		  - context: context.Context
		  - handle: string
		  - attachedAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	Track(context context.Context, handle string, attachedAt time.Time) error

	/*
		Clear removes handles that were adopted by a committed account.

		Parameters:
		  - context: context.Context
		  - handles: ...string

		Returns:
		  - error: Persistence failures
	*/
	Clear(context context.Context, handles ...string) error

	/*
		Reclaim removes and returns handles attached before the cutoff.
		Their sessions can no longer commit, so the blobs are garbage.

		Parameters:
		  - context: context.Context
		  - cutoff: time.Time

		Returns:
		  - []string: Reclaimed handles, ready for blob deletion
		  - error: Persistence failures
	*/
	Reclaim(context context.Context, cutoff time.Time) ([]string, error)
}
