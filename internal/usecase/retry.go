package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

// retrier repeats an operation while it fails with a retryable error.
type retrier struct {
	maxRetries uint64
	interval   time.Duration
}

func (that retrier) do(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = that.interval

	err := backoff.Retry(func() error {
		err := op()
		if err != nil && !apperror.IsRetryable(err) {
			return backoff.Permanent(err)
		}

		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, that.maxRetries), ctx))

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if !errors.Is(err, apperror.ErrStoreUnavailable) {
			return fmt.Errorf("%w: %w", apperror.ErrStoreUnavailable, err)
		}
	}

	return err
}
