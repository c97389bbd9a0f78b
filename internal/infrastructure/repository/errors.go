package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sangkips/billbook-api/pkg/apperror"
)

const uniqueViolation = "23505"

// mapError turns a unique violation into a conflict and passes everything else through
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperror.ErrDuplicate.WithDetail("constraint", pgErr.ConstraintName)
	}
	return err
}

// IsUniqueViolation reports whether err came from a unique constraint
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
