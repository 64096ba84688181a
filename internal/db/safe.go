package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// FindMany runs a select and maps rows onto T by column name.
func FindMany[T any](ctx context.Context, e *Executor, sql string, args ...any) ([]T, error) {
	out, err := Run(ctx, e, func(ctx context.Context, q Querier) ([]T, error) {
		rows, err := q.Query(ctx, sql, args...)
		if err != nil {
			return nil, err
		}
		return pgx.CollectRows(rows, pgx.RowToStructByName[T])
	})
	if err != nil {
		return nil, translate(err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// FindUnique expects exactly one row; none yields domain.ErrNotFound.
func FindUnique[T any](ctx context.Context, e *Executor, sql string, args ...any) (*T, error) {
	return Run(ctx, e, func(ctx context.Context, q Querier) (*T, error) {
		return queryOne[T](ctx, q, sql, args...)
	})
}

// Count runs a single-value count query.
func Count(ctx context.Context, e *Executor, sql string, args ...any) (int64, error) {
	return Run(ctx, e, func(ctx context.Context, q Querier) (int64, error) {
		var n int64
		if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
			return 0, err
		}
		return n, nil
	})
}

// Create runs an INSERT ... RETURNING; a unique violation yields
// domain.ErrAlreadyExists.
func Create[T any](ctx context.Context, e *Executor, sql string, args ...any) (*T, error) {
	return Run(ctx, e, func(ctx context.Context, q Querier) (*T, error) {
		return queryOne[T](ctx, q, sql, args...)
	})
}

// One is queryOne for callers already inside a transaction.
func One[T any](ctx context.Context, q Querier, sql string, args ...any) (*T, error) {
	return queryOne[T](ctx, q, sql, args...)
}

// Many is FindMany for callers already inside a transaction.
func Many[T any](ctx context.Context, q Querier, sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, translate(err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func queryOne[T any](ctx context.Context, q Querier, sql string, args ...any) (*T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err)
	}
	v, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}
