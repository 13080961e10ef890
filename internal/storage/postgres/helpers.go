package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// invalidTextRepresentation covers malformed uuid literals passed as ids.
const invalidTextRepresentation = "22P02"

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
