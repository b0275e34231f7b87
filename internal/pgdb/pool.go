// Package pgdb owns database access: a bounded connection pool and a
// transactional command executor layered on top of it.
package pgdb

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gdsingh/skybook/config"
	"github.com/gdsingh/skybook/internal/domain"
	"github.com/gdsingh/skybook/internal/retry"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool hands out verified database connections, bounded by the
// configured maximum. All shared mutable state lives in the underlying
// pgxpool, which serializes access to its idle set internally.
type Pool struct {
	db           *pgxpool.Pool
	acquireRetry retry.Strategy
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	pc, err := buildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	p := &Pool{
		db: db,
		acquireRetry: retry.Strategy{
			Attempts: cfg.Pool.AcquireRetries,
			Delay:    time.Duration(cfg.Pool.RetryDelaySeconds) * time.Second,
		},
	}

	if err := p.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initial health check: %w", err)
	}
	log.Printf("connection pool ready: %s@%s (max %d conns)", cfg.Name, cfg.Host, cfg.Pool.MaxConns)

	return p, nil
}

func buildPoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pc.MaxConns = int32(cfg.Pool.MaxConns)
	pc.MinConns = int32(cfg.Pool.MinConns)
	pc.ConnConfig.ConnectTimeout = time.Duration(cfg.Pool.ConnectTimeoutSeconds) * time.Second
	return pc, nil
}

// Acquire returns a checked-out connection, retrying transient failures
// with linear backoff. The caller must Release it exactly once; prefer
// WithConn, which guarantees that on every exit path.
func (p *Pool) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	var conn *pgxpool.Conn
	err := p.acquireRetry.Do(ctx, func() error {
		c, err := p.db.Acquire(ctx)
		if err != nil {
			log.Printf("connection acquire failed: %v", err)
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectionUnavailable, err)
	}
	return conn, nil
}

// WithConn runs fn with an acquired connection and releases it whether
// fn succeeds, fails, or panics.
func (p *Pool) WithConn(ctx context.Context, fn func(conn *pgxpool.Conn) error) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return fn(conn)
}

// HealthCheck issues a trivial round-trip query.
func (p *Pool) HealthCheck(ctx context.Context) error {
	return p.WithConn(ctx, func(conn *pgxpool.Conn) error {
		var one int
		if err := conn.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
			return fmt.Errorf("health check: %w", err)
		}
		if one != 1 {
			return fmt.Errorf("health check: unexpected result %d", one)
		}
		return nil
	})
}

// PoolStats is a snapshot of the pool's connection counters.
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
}

// Stats exposes the underlying pool counters.
func (p *Pool) Stats() PoolStats {
	s := p.db.Stat()
	return PoolStats{
		TotalConns:    s.TotalConns(),
		IdleConns:     s.IdleConns(),
		AcquiredConns: s.AcquiredConns(),
	}
}

func (p *Pool) Close() {
	p.db.Close()
}
