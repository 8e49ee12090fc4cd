// Copyright (c) 2026 Nomik. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// # Classification
//
//   - pgx.ErrNoRows            → NOT_FOUND
//   - SQLSTATE 23505 (unique)  → CONFLICT
//   - context deadline/cancel  → STORAGE_UNAVAILABLE (retryable)
//   - connectivity faults      → STORAGE_UNAVAILABLE (retryable)
//   - anything else            → INTERNAL_ERROR
//
// Hiding SQLSTATE details behind [apperr.AppError] keeps storage
// implementation details out of client responses.
package dberr

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
//
// resource names the entity being acted on ("Account", "Document") and
// conflictMessage is the client-safe text for a unique-constraint violation.
func Wrap(err error, resource, conflictMessage string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// 2. Unique-constraint violations become client-facing conflicts.
	// This is the atomic check-and-insert path: the database enforces
	// uniqueness, the race loser sees SQLSTATE 23505.
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		switch pgError.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict(conflictMessage)
		case pgerrcode.QueryCanceled, pgerrcode.AdminShutdown, pgerrcode.CrashShutdown,
			pgerrcode.CannotConnectNow, pgerrcode.TooManyConnections:
			return apperr.StorageUnavailable(err)
		}
	}

	// 3. Bounded-timeout and cancellation faults are transient.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.StorageUnavailable(err)
	}

	// 4. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}
