package sqlstore

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrUniqueViolation marks writes rejected by a unique or primary key constraint
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrNotNullViolation marks writes rejected by a NOT NULL constraint
	ErrNotNullViolation = errors.New("not null constraint violation")
)

const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
)

// IsUniqueViolation reports whether err is a unique constraint violation from
// pgx, lib/pq or go-sqlite3
func IsUniqueViolation(err error) bool {
	if errors.Is(err, ErrUniqueViolation) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// IsNotNullViolation reports whether err is a NOT NULL violation from pgx,
// lib/pq or go-sqlite3
func IsNotNullViolation(err error) bool {
	if errors.Is(err, ErrNotNullViolation) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgNotNullViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgNotNullViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintNotNull
	}
	return false
}

// mapError tags constraint violations with a sentinel and adds context
func mapError(op, table string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case IsUniqueViolation(err):
		return fmt.Errorf("%s %s: %w: %w", op, table, ErrUniqueViolation, err)
	case IsNotNullViolation(err):
		return fmt.Errorf("%s %s: %w: %w", op, table, ErrNotNullViolation, err)
	}
	return fmt.Errorf("%s %s: %w", op, table, err)
}
