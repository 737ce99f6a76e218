package customers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "customers_name_key"}
	require.ErrorIs(t, mapUniqueViolation(unique), ErrAlreadyExists)

	wrapped := fmt.Errorf("exec insert: %w", unique)
	require.ErrorIs(t, mapUniqueViolation(wrapped), ErrAlreadyExists)

	other := errors.New("connection reset")
	require.Equal(t, other, mapUniqueViolation(other))

	notUnique := &pgconn.PgError{Code: "23503"}
	require.NotErrorIs(t, mapUniqueViolation(notUnique), ErrAlreadyExists)
}
