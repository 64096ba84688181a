package db

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storefront-api/internal/logger"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 100 * time.Millisecond
)

// Executor runs database operations against a Source and retries the
// transient ones on a reconnected handle.
type Executor struct {
	src        Source
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

type Option func(*Executor)

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n int) Option {
	return func(e *Executor) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

// WithBackoff sets the base delay; retry n waits n*d.
func WithBackoff(d time.Duration) Option {
	return func(e *Executor) {
		if d >= 0 {
			e.backoff = d
		}
	}
}

func NewExecutor(src Source, log *zap.Logger, opts ...Option) *Executor {
	e := &Executor{
		src:        src,
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
		logger:     logger.OrNop(log),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run calls op with the current handle. Transient failures trigger a
// reconnect and another call with the new handle, up to the retry ceiling;
// every other failure is returned as is.
func Run[T any](ctx context.Context, e *Executor, op func(ctx context.Context, q Querier) (T, error)) (T, error) {
	var zero T
	q := e.src.Current()
	for attempt := 0; ; attempt++ {
		res, err := op(ctx, q)
		if err == nil {
			return res, nil
		}
		if !IsTransient(err) || attempt >= e.maxRetries {
			return zero, err
		}

		e.logger.Warn("db: transient error, reconnecting",
			zap.Int("attempt", attempt+1),
			zap.Int("maxRetries", e.maxRetries),
			zap.Error(err),
		)
		fresh, rerr := e.src.Reconnect(ctx, q)
		if rerr != nil {
			e.logger.Error("db: reconnect failed", zap.Error(rerr))
			return zero, err
		}
		q = fresh

		if err := sleep(ctx, e.backoff*time.Duration(attempt+1)); err != nil {
			return zero, err
		}
	}
}

// Do is Run for operations without a result.
func Do(ctx context.Context, e *Executor, op func(ctx context.Context, q Querier) error) error {
	_, err := Run(ctx, e, func(ctx context.Context, q Querier) (struct{}, error) {
		return struct{}{}, op(ctx, q)
	})
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
