// Copyright (c) 2026 Nomik. All rights reserved.

package accounts

import (
	"context"
)

// # Credential Store Contract

// Store defines the data access contract for committed accounts.
//
// Create is the only write path and is invoked solely by the provisioning
// commit. Implementations must make the email-uniqueness check atomic with
// the insert: a lost race surfaces as a CONFLICT error, never a duplicate.
type Store interface {

	/*
		Create persists a fully formed account, its profile payload, and its
		document references in one atomic operation.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: apperr.Conflict on duplicate email or federated identity,
		    apperr.StorageUnavailable on transient faults
	*/
	Create(context context.Context, account *Account) error

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Account: Hydrated entity (documents included)
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByEmail returns the account with the given email.
		Email is globally unique across all roles.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		FindByFederated resolves a federated identity reference to its
		linked account.

		Parameters:
		  - context: context.Context
		  - provider: string
		  - subject: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound when no account is linked
	*/
	FindByFederated(context context.Context, provider, subject string) (*Account, error)
}
