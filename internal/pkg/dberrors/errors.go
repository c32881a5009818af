package dberrors

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
)

// IsDuplicateKeyError reports a unique violation from either backend
func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return mongo.IsDuplicateKeyError(err)
}

// Translate maps driver errors onto application sentinels. Context errors
// pass through untouched so callers can tell cancellation apart.
func Translate(err error, op string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, apperrors.ErrResourceNotFound)
	case IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, apperrors.ErrResourceAlreadyExists)
	case pgconn.Timeout(err), mongo.IsNetworkError(err), mongo.IsTimeout(err):
		return fmt.Errorf("%s: %w: %v", op, apperrors.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
