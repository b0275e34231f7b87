package pgdb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdsingh/skybook/internal/domain"
	"github.com/gdsingh/skybook/internal/retry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FetchMode int

const (
	FetchNone FetchMode = iota
	FetchOne
	FetchAll
)

// Statement is one parameterized SQL statement.
type Statement struct {
	SQL  string
	Args []any
}

// Result is the uniform shape of a single executed statement: row maps
// for reads, the affected count for writes.
type Result struct {
	Row          map[string]any
	Rows         []map[string]any
	RowsAffected int64
}

// Executor runs statements against pooled connections with explicit
// transaction boundaries. Transient database errors are retried up to
// the strategy's budget; constraint violations are not.
type Executor struct {
	pool      *Pool
	strategy  retry.Strategy
	batchSize int
}

func NewExecutor(pool *Pool, attempts int, delay time.Duration, batchSize int) *Executor {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Executor{
		pool:      pool,
		strategy:  retry.Strategy{Attempts: attempts, Delay: delay},
		batchSize: batchSize,
	}
}

// Execute runs one statement as the whole acquire-execute-release
// sequence, retried on transient failure.
func (e *Executor) Execute(ctx context.Context, stmt Statement, mode FetchMode) (*Result, error) {
	var res *Result
	err := e.strategy.Do(ctx, func() error {
		r, err := e.executeOnce(ctx, stmt, mode)
		if err != nil {
			return classify(err)
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return res, nil
}

func (e *Executor) executeOnce(ctx context.Context, stmt Statement, mode FetchMode) (*Result, error) {
	var res *Result
	err := e.pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		r, err := run(ctx, conn, stmt, mode)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	return res, err
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func run(ctx context.Context, q querier, stmt Statement, mode FetchMode) (*Result, error) {
	if mode == FetchNone && !isSelect(stmt.SQL) {
		tag, err := q.Exec(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return nil, err
		}
		return &Result{RowsAffected: tag.RowsAffected()}, nil
	}

	rows, err := q.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}

	res := &Result{RowsAffected: int64(len(collected))}
	switch mode {
	case FetchOne:
		if len(collected) > 0 {
			res.Row = collected[0]
		}
	case FetchAll:
		res.Rows = collected
	}
	return res, nil
}

// ExecuteTransaction runs the statements in order on one connection and
// commits only if all succeed; any failure rolls the sequence back with
// no partial effect visible to other transactions.
func (e *Executor) ExecuteTransaction(ctx context.Context, stmts []Statement) ([]Result, error) {
	results := make([]Result, 0, len(stmts))
	err := e.InTx(ctx, func(tx pgx.Tx) error {
		for _, stmt := range stmts {
			mode := FetchNone
			if isSelect(stmt.SQL) {
				mode = FetchAll
			}
			r, err := run(ctx, tx, stmt, mode)
			if err != nil {
				return err
			}
			results = append(results, *r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ExecuteBatch chunks paramRows into groups of batchSize, executes each
// chunk as one pipelined batch, and commits once at the end.
func (e *Executor) ExecuteBatch(ctx context.Context, sql string, paramRows [][]any, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = e.batchSize
	}

	var total int64
	err := e.InTx(ctx, func(tx pgx.Tx) error {
		for _, chunk := range chunkRows(paramRows, batchSize) {
			b := &pgx.Batch{}
			for _, args := range chunk {
				b.Queue(sql, args...)
			}
			br := tx.SendBatch(ctx, b)
			for range chunk {
				tag, err := br.Exec()
				if err != nil {
					_ = br.Close()
					return err
				}
				total += tag.RowsAffected()
			}
			if err := br.Close(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// InTx runs fn inside a transaction on one pooled connection. Rollback
// is deferred, so any error or panic inside fn leaves no partial writes.
func (e *Executor) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return e.pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
}

func isSelect(sql string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sql)), "SELECT")
}

func chunkRows(rows [][]any, size int) [][][]any {
	if size <= 0 || len(rows) == 0 {
		return nil
	}
	chunks := make([][][]any, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}

// classify decides whether an error is worth retrying. Constraint
// violations (class 23) propagate immediately as integrity violations;
// other SQL-level failures (bad syntax, bad data) are also permanent.
// Everything else is treated as connectivity and retried.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "23") {
			return retry.Permanent(fmt.Errorf("%w: %s", domain.ErrIntegrityViolation, pgErr.Message))
		}
		return retry.Permanent(err)
	}
	if errors.Is(err, domain.ErrConnectionUnavailable) {
		// the pool already spent its own retry budget
		return retry.Permanent(err)
	}
	return err
}

// IsUniqueViolation reports whether err is a unique-constraint conflict
// on the named constraint (or any unique conflict when name is empty).
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
