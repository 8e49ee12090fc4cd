// Copyright (c) 2026 Nomik. All rights reserved.

package accounts

import (
	"context"

	"github.com/krish2956-mk/getnomik-tech-team/internal/documents"
)

// # Account Service

// Service exposes read access to committed accounts for authenticated
// principals. All writes go through the provisioning commit; nothing here
// mutates state.
type Service struct {
	store  Store
	ledger documents.Ledger
}

// NewService constructs a new account [Service].
func NewService(store Store, ledger documents.Ledger) *Service {
	return &Service{store: store, ledger: ledger}
}

/*
GetSelf returns the authenticated principal's own account.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *Account: The full account including profile and document references
  - error: NOT_FOUND or storage errors
*/
func (service *Service) GetSelf(context context.Context, accountID string) (*Account, error) {
	return service.store.FindByID(context, accountID)
}

/*
ListDocuments returns the committed document ledger for an account.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - []documents.Reference: Ledger entries, oldest upload first
  - error: Storage errors
*/
func (service *Service) ListDocuments(context context.Context, accountID string) ([]documents.Reference, error) {
	return service.ledger.ListByAccount(context, accountID)
}
