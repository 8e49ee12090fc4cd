// Copyright (c) 2026 Nomik. All rights reserved.

package registration

import (
	"context"
)

// # Session Data Access

// SessionStore defines the data access contract for draft registration
// sessions, keyed by their opaque token.
//
// Implementations must honor two semantics the provisioning service relies
// on: storage-level TTL derived from the session's ExpiresAt (expiry is
// additionally checked lazily by the service), and an atomic [SessionStore.Claim]
// so two concurrent commits on one token can never both observe the session.
type SessionStore interface {

	/*
		Save writes the session under its token, replacing any previous
		value and refreshing the storage TTL from ExpiresAt.

		Parameters:
		  - context: context.Context
		  - token: string
		  - session: *Session

		Returns:
		  - error: apperr.StorageUnavailable on infrastructure faults
	*/
	Save(context context.Context, token string, session *Session) error

	/*
		Get returns the session for a token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *Session: Hydrated draft
		  - error: SESSION_NOT_FOUND when absent or evicted
	*/
	Get(context context.Context, token string) (*Session, error)

	/*
		Claim atomically removes and returns the session for a token.
		Exactly one of n concurrent claimers succeeds; the rest observe
		SESSION_NOT_FOUND. This is the commit critical section.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *Session: The claimed draft
		  - error: SESSION_NOT_FOUND when absent, already claimed, or evicted
	*/
	Claim(context context.Context, token string) (*Session, error)

	/*
		Delete removes the session for a token. Idempotent.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: apperr.StorageUnavailable on infrastructure faults
	*/
	Delete(context context.Context, token string) error
}
