package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/readify/readify/pkg/apperrors"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint breach
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// storeError classifies a driver failure. Context errors stay cancellations,
// everything else becomes an internal error with the generic message.
func storeError(op string, err error) error {
	return apperrors.FromStore(fmt.Errorf("%s: %w", op, err))
}
