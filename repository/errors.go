package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	"betpal/service"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes the repositories translate into domain errors.
const (
	pgCodeUniqueViolation      = "23505"
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
)

// translateError maps store-level failures onto the domain error taxonomy:
// unique violations become state conflicts, serialization failures and
// connection problems become retryable transient errors, everything else is
// wrapped as-is.
func translateError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeUniqueViolation:
			return service.NewStateConflictError("%s: already exists", msg)
		case pgCodeSerializationFailure, pgCodeDeadlockDetected:
			return service.NewTransientStoreError(err, "%s: store conflict", msg)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return service.NewTransientStoreError(err, "%s: store unavailable", msg)
	}

	return fmt.Errorf("%s: %w", msg, err)
}
