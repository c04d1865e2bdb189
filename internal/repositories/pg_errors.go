package repositories

import (
	"errors"

	domainerrors "purse/internal/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the stores react to.
const (
	pgNumericOutOfRange = "22003"
	pgNotNullViolation  = "23502"
	pgUniqueViolation   = "23505"
	pgCheckViolation    = "23514"
)

// translatePgError maps constraint violations to domain errors. CHECK and
// NOT NULL violations become validation failures carrying the server message;
// a numeric overflow of a money column reads as "balance out of range" to
// match models.Account.Validate. Unique violations become ErrEmailTaken.
// Other errors pass through unchanged.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgCheckViolation, pgNotNullViolation:
		msg := pgErr.Message
		if pgErr.ConstraintName != "" {
			msg = pgErr.ConstraintName + " violated"
		}
		return &domainerrors.ValidationError{Messages: []string{msg}}
	case pgNumericOutOfRange:
		return &domainerrors.ValidationError{Messages: []string{"balance out of range"}}
	case pgUniqueViolation:
		return ErrEmailTaken
	}
	return err
}
