package db

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront-api/internal/logger"
)

// Querier is the part of *pgxpool.Pool and pgx.Tx the repositories use.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Source hands out the live database handle and replaces it on demand.
type Source interface {
	Current() Querier
	Reconnect(ctx context.Context, stale Querier) (Querier, error)
}

// Connect opens a pgx connection pool and verifies connectivity with a ping.
func Connect(ctx context.Context, dsn string, maxConns int) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// Client owns the process pool. Reconnect builds a fresh pool and retires
// the stale one only after its borrowed connections are returned, so callers
// still holding the old handle finish their work on it.
type Client struct {
	dsn      string
	maxConns int
	logger   *zap.Logger

	mu   sync.RWMutex
	pool *pgxpool.Pool
}

// NewClient connects and returns a Client around the new pool.
func NewClient(ctx context.Context, dsn string, maxConns int, log *zap.Logger) (*Client, error) {
	pool, err := Connect(ctx, dsn, maxConns)
	if err != nil {
		return nil, err
	}
	return &Client{dsn: dsn, maxConns: maxConns, logger: logger.OrNop(log), pool: pool}, nil
}

// Pool returns the current pool.
func (c *Client) Pool() *pgxpool.Pool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pool
}

func (c *Client) Current() Querier {
	return c.Pool()
}

func (c *Client) Reconnect(ctx context.Context, stale Querier) (Querier, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if stale != Querier(c.pool) {
		// Someone else already replaced the pool.
		return c.pool, nil
	}

	fresh, err := Connect(ctx, c.dsn, c.maxConns)
	if err != nil {
		return nil, err
	}
	old := c.pool
	c.pool = fresh
	go old.Close()

	c.logger.Warn("db: pool replaced after transient error")
	return fresh, nil
}

// Ping checks the current pool.
func (c *Client) Ping(ctx context.Context) error {
	pool := c.Pool()
	if pool == nil {
		return errors.New("db not configured")
	}
	return pool.Ping(ctx)
}

// Close closes the current pool.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		c.pool.Close()
	}
}
