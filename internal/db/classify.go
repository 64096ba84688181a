package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"storefront-api/internal/domain"
)

// TransientError tags a failure as safe to retry on a fresh connection.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// MarkTransient wraps err so IsTransient reports true.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
)

var transientCodes = map[string]struct{}{
	"26000": {}, // invalid_sql_statement_name: prepared statement does not exist
	"42P05": {}, // duplicate_prepared_statement
	"08000": {},
	"08001": {},
	"08003": {},
	"08004": {},
	"08006": {},
	"57P01": {}, // admin_shutdown
}

// IsTransient reports whether err is a connection-level failure that a
// fresh pool can recover from. Context errors and SQL errors outside the
// connection classes are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var tagged *TransientError
	if errors.As(err, &tagged) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := transientCodes[pgErr.Code]
		return ok
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	// Poolers in transaction mode report stale statements as plain text.
	return strings.Contains(strings.ToLower(err.Error()), "prepared statement")
}

// IsUniqueViolation reports a 23505 error.
func IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// IsForeignKeyViolation reports a 23503 error.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

// ConstraintName returns the violated constraint, if any.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// translate maps driver errors onto domain sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrNotFound
	case IsUniqueViolation(err):
		// Keep the driver error reachable for ConstraintName.
		return errors.Join(domain.ErrAlreadyExists, err)
	case hasCode(err, codeInvalidText):
		return errors.Join(domain.Invalid("malformed input value"), err)
	}
	return err
}
