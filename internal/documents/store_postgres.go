// Copyright (c) 2026 Nomik. All rights reserved.

package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/database/schema"
)

// PostgresLedger implements the [Ledger] interface using pgx.
type PostgresLedger struct {
	pool *pgxpool.Pool
}

// NewLedger creates a new PostgreSQL implementation of the [Ledger].
func NewLedger(pool *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

/*
ListByAccount returns every document reference owned by an account.

Description: Reads the committed ledger, oldest upload first.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - []Reference: Ledger entries
  - error: Database retrieval failures
*/
func (ledger *PostgresLedger) ListByAccount(context context.Context, accountID string) ([]Reference, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		strings.Join(schema.AccountDocument.Columns(), ", "),
		schema.AccountDocument.Table, schema.AccountDocument.AccountID,
		schema.AccountDocument.UploadedAt,
	)

	rows, err := ledger.pool.Query(context, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("postgres_document_ledger_list_failed: %w", err)
	}
	defer rows.Close()

	references := make([]Reference, 0, 4)
	for rows.Next() {
		var reference Reference
		if err := rows.Scan(
			&reference.ID,
			&reference.AccountID,
			&reference.Category,
			&reference.Handle,
			&reference.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_document_ledger_scan_failed: %w", err)
		}
		references = append(references, reference)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_document_ledger_rows_failed: %w", err)
	}

	return references, nil
}

/*
HandleAdopted reports whether a blob handle belongs to a committed account.

Parameters:
  - context: context.Context
  - handle: string

Returns:
  - bool: True when a committed account owns the handle
  - error: Database retrieval failures
*/
func (ledger *PostgresLedger) HandleAdopted(context context.Context, handle string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.AccountDocument.Table, schema.AccountDocument.Handle,
	)

	var adopted bool
	if err := ledger.pool.QueryRow(context, query, handle).Scan(&adopted); err != nil {
		return false, fmt.Errorf("postgres_document_ledger_adopted_failed: %w", err)
	}

	return adopted, nil
}
