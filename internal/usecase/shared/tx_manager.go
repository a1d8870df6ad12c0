package shared

import (
	"context"
)

// WithinResult runs fn in a unit-of-work transaction and returns its value
// only when the transaction committed.
func WithinResult[T any](ctx context.Context, uow UnitOfWork, fn func(ctx context.Context, tx Tx) (T, error)) (T, error) {
	var result T

	err := uow.Within(ctx, func(ctx context.Context, tx Tx) error {
		r, err := fn(ctx, tx)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
