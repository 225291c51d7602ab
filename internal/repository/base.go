// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"atelier/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation reports whether err is a unique constraint violation and,
// if so, which constraint or column triggered it. Postgres reports SQLSTATE
// 23505 through pgconn; the sqlite test driver only gives us the message.
func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return pgErr.ConstraintName, true
		}
		return "", false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505") {
		return msg, true
	}
	return "", false
}

// translateUniqueError maps a duplicate-key violation to a field-specific
// user-facing message instead of a raw driver error.
func translateUniqueError(err error, fields map[string]string) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return models.NewInternalError(err)
	}
	lowered := strings.ToLower(constraint)
	for needle, message := range fields {
		if strings.Contains(lowered, needle) {
			return models.NewConflictError(message)
		}
	}
	return models.NewConflictError("Duplicate value for a unique field")
}
