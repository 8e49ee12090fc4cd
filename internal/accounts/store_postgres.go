// Copyright (c) 2026 Nomik. All rights reserved.

// PostgreSQL implementation of the credential store.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, SQLSTATE 23505) are mapped to
// domain-friendly [apperr.AppError] types via the dberr bridge to avoid
// leaking storage implementation details.

package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krish2956-mk/getnomik-tech-team/internal/documents"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/database/schema"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/dberr"
	pkguuid "github.com/krish2956-mk/getnomik-tech-team/pkg/uuid"
)

// duplicateEmailMessage is the client-safe conflict text. It deliberately
// does not reveal which role the existing account holds.
const duplicateEmailMessage = "An account with this email already exists"

const duplicateFederatedMessage = "This identity is already linked to an account"

// PostgresStore implements the [Store] interface using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL implementation of the credential [Store].
func NewStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
Create persists a fully formed account and its document references.

Description: Single transaction covering the account row and every document
row. The email uniqueness constraint is enforced by the database inside the
same transaction — the atomic check-and-insert that closes the concurrent
duplicate-commit race.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: apperr.Conflict, apperr.StorageUnavailable, or internal failures
*/
func (store *PostgresStore) Create(context context.Context, account *Account) error {
	insertAccount := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schema.Account.Table,
		schema.Account.ID, schema.Account.Role, schema.Account.Email,
		schema.Account.Password, schema.Account.FederatedProvider,
		schema.Account.FederatedSubject, schema.Account.Profile, schema.Account.CreatedAt,
	)

	insertDocument := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)`,
		schema.AccountDocument.Table,
		schema.AccountDocument.ID, schema.AccountDocument.AccountID,
		schema.AccountDocument.Category, schema.AccountDocument.Handle,
		schema.AccountDocument.UploadedAt,
	)

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	var federatedProvider, federatedSubject *string
	if account.Federated != nil {
		federatedProvider = &account.Federated.Provider
		federatedSubject = &account.Federated.Subject
	}

	transaction, err := store.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "Account", duplicateEmailMessage)
	}
	// Rollback is a no-op once the transaction has committed.
	defer func() { _ = transaction.Rollback(context) }()

	var passwordHash *string
	if account.PasswordHash != "" {
		passwordHash = &account.PasswordHash
	}

	if _, err := transaction.Exec(context, insertAccount,
		account.ID,
		account.Role,
		account.Email,
		passwordHash,
		federatedProvider,
		federatedSubject,
		account.Profile,
		account.CreatedAt,
	); err != nil {
		return wrapCreateError(err, federatedProvider != nil)
	}

	for index := range account.Documents {
		reference := &account.Documents[index]
		if reference.ID == "" {
			reference.ID = pkguuid.New()
		}
		reference.AccountID = account.ID

		if _, err := transaction.Exec(context, insertDocument,
			reference.ID,
			reference.AccountID,
			reference.Category,
			reference.Handle,
			reference.UploadedAt,
		); err != nil {
			return dberr.Wrap(err, "Document", duplicateEmailMessage)
		}
	}

	if err := transaction.Commit(context); err != nil {
		return wrapCreateError(err, federatedProvider != nil)
	}

	return nil
}

// wrapCreateError distinguishes the two unique constraints that an account
// insert can trip (email vs. federated identity).
func wrapCreateError(err error, hasFederated bool) error {
	if hasFederated {
		return dberr.Wrap(err, "Account", duplicateFederatedMessage)
	}
	return dberr.Wrap(err, "Account", duplicateEmailMessage)
}

/*
FindByID retrieves an account by its unique ID, documents included.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) FindByID(context context.Context, id string) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.Account.Columns(), ", "),
		schema.Account.Table, schema.Account.ID,
	)

	account, err := store.scanAccount(store.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, err
	}

	if err := store.attachDocuments(context, account); err != nil {
		return nil, err
	}

	return account, nil
}

/*
FindByEmail retrieves an account by its globally unique email address.

Parameters:
  - context: context.Context
  - email: string (already normalized to lower case by the service layer)

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) FindByEmail(context context.Context, email string) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.Account.Columns(), ", "),
		schema.Account.Table, schema.Account.Email,
	)

	return store.scanAccount(store.pool.QueryRow(context, query, email))
}

/*
FindByFederated resolves a federated identity pair to its linked account.

Parameters:
  - context: context.Context
  - provider: string
  - subject: string

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound when no account is linked
*/
func (store *PostgresStore) FindByFederated(context context.Context, provider, subject string) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		strings.Join(schema.Account.Columns(), ", "),
		schema.Account.Table, schema.Account.FederatedProvider, schema.Account.FederatedSubject,
	)

	return store.scanAccount(store.pool.QueryRow(context, query, provider, subject))
}

// scanAccount hydrates one account row, mapping storage errors to apperr.
func (store *PostgresStore) scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	var passwordHash, federatedProvider, federatedSubject *string

	err := row.Scan(
		&account.ID,
		&account.Role,
		&account.Email,
		&passwordHash,
		&federatedProvider,
		&federatedSubject,
		&account.Profile,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Account", duplicateEmailMessage)
	}

	if passwordHash != nil {
		account.PasswordHash = *passwordHash
	}
	if federatedProvider != nil && federatedSubject != nil {
		account.Federated = &FederatedRef{Provider: *federatedProvider, Subject: *federatedSubject}
	}

	return account, nil
}

// attachDocuments loads the committed document ledger entries for an account.
func (store *PostgresStore) attachDocuments(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		strings.Join(schema.AccountDocument.Columns(), ", "),
		schema.AccountDocument.Table, schema.AccountDocument.AccountID,
		schema.AccountDocument.UploadedAt,
	)

	rows, err := store.pool.Query(context, query, account.ID)
	if err != nil {
		return fmt.Errorf("postgres_account_store_documents_failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reference documents.Reference
		if err := rows.Scan(
			&reference.ID,
			&reference.AccountID,
			&reference.Category,
			&reference.Handle,
			&reference.UploadedAt,
		); err != nil {
			return fmt.Errorf("postgres_account_store_document_scan_failed: %w", err)
		}
		account.Documents = append(account.Documents, reference)
	}

	return rows.Err()
}
