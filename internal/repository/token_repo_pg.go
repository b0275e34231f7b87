package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdsingh/skybook/internal/domain"
	"github.com/gdsingh/skybook/internal/pgdb"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokenRepository interface {
	Insert(ctx context.Context, token *domain.ResetToken) error
	GetByToken(ctx context.Context, token string) (*domain.ResetToken, error)
	CountSince(ctx context.Context, email string, since time.Time) (int, error)
	Consume(ctx context.Context, token string, usedAt time.Time) error
	DeleteStale(ctx context.Context) (int64, error)
}

type PGTokenRepository struct {
	pool *pgdb.Pool
	exec *pgdb.Executor
}

func NewTokenRepository(pool *pgdb.Pool, exec *pgdb.Executor) TokenRepository {
	return &PGTokenRepository{pool: pool, exec: exec}
}

func (r *PGTokenRepository) Insert(ctx context.Context, token *domain.ResetToken) error {
	return r.pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		err := conn.QueryRow(ctx, `
			INSERT INTO password_reset_tokens (user_id, email, reset_token, expires_at)
			VALUES ($1, $2, $3, $4)
			RETURNING token_id, created_at`, token.UserID, token.Email, token.Token, token.ExpiresAt).
			Scan(&token.ID, &token.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert reset token: %w", err)
		}
		return nil
	})
}

func (r *PGTokenRepository) GetByToken(ctx context.Context, token string) (*domain.ResetToken, error) {
	var t domain.ResetToken
	err := r.pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `
			SELECT token_id, user_id, email, reset_token, expires_at, is_used, used_at, created_at
			FROM password_reset_tokens WHERE reset_token = $1`, token).
			Scan(&t.ID, &t.UserID, &t.Email, &t.Token, &t.ExpiresAt, &t.IsUsed, &t.UsedAt, &t.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidResetToken
		}
		return nil, fmt.Errorf("get reset token: %w", err)
	}
	return &t, nil
}

// CountSince counts tokens issued for the email in the trailing window,
// which is how the rate limit is enforced.
func (r *PGTokenRepository) CountSince(ctx context.Context, email string, since time.Time) (int, error) {
	res, err := r.exec.Execute(ctx, pgdb.Statement{
		SQL:  `SELECT COUNT(*) AS request_count FROM password_reset_tokens WHERE email = $1 AND created_at > $2`,
		Args: []any{email, since},
	}, pgdb.FetchOne)
	if err != nil {
		return 0, err
	}
	if res.Row == nil {
		return 0, nil
	}
	count, _ := res.Row["request_count"].(int64)
	return int(count), nil
}

// Consume marks the token used. The update is conditional on
// is_used = FALSE, so of two racing consumers exactly one succeeds.
func (r *PGTokenRepository) Consume(ctx context.Context, token string, usedAt time.Time) error {
	return r.pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE password_reset_tokens SET is_used = TRUE, used_at = $1
			WHERE reset_token = $2 AND is_used = FALSE`, usedAt, token)
		if err != nil {
			return fmt.Errorf("consume reset token: %w", err)
		}
		if tag.RowsAffected() != 1 {
			return domain.ErrInvalidResetToken
		}
		return nil
	})
}

func (r *PGTokenRepository) DeleteStale(ctx context.Context) (int64, error) {
	res, err := r.exec.Execute(ctx, pgdb.Statement{
		SQL: `DELETE FROM password_reset_tokens WHERE expires_at < now() OR is_used = TRUE`,
	}, pgdb.FetchNone)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

var _ TokenRepository = (*PGTokenRepository)(nil)
