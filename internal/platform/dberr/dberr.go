// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors. It understands both record store
// drivers (pgx and the MongoDB driver).
package dberr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taibuivan/readanddownload/internal/platform/apperr"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

var (
	// ErrNotFound is returned when a queried row or document doesn't exist.
	ErrNotFound = apperr.NotFound("Recurso no encontrado")

	// ErrDuplicate is returned when an insert or update hits a unique index.
	ErrDuplicate = apperr.Conflict("El registro ya existe")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	// 2. Unique constraint mapping
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == uniqueViolation {
		return ErrDuplicate.WithCause(err)
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate.WithCause(err)
	}

	cause := fmt.Errorf("%s: %w", action, err)

	// 3. Transport failures and deadlines
	if IsUnavailable(err) {
		return apperr.StoreUnavailable(cause)
	}

	// 4. Unknown query errors become Internal Server Errors
	return apperr.Internal(cause)
}

// IsUnavailable reports whether err means the store could not be reached in time.
func IsUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connectError *pgconn.ConnectError
	if errors.As(err, &connectError) || pgconn.Timeout(err) {
		return true
	}

	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
