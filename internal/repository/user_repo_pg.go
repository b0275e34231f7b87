package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdsingh/skybook/internal/domain"
	"github.com/gdsingh/skybook/internal/pgdb"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	Create(ctx context.Context, name, email, phone, passwordHash string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID int64, email, passwordHash string) error
}

type PGUserRepository struct {
	pool *pgdb.Pool
}

func NewUserRepository(pool *pgdb.Pool) UserRepository {
	return &PGUserRepository{pool: pool}
}

func (r *PGUserRepository) Create(ctx context.Context, name, email, phone, passwordHash string) (*domain.User, error) {
	u := domain.User{Name: name, Email: email, Phone: phone, PasswordHash: passwordHash}
	err := r.pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `
			INSERT INTO users (name, email, phone, password_hash)
			VALUES ($1, $2, $3, $4)
			RETURNING user_id, created_at`, name, email, phone, passwordHash).
			Scan(&u.ID, &u.CreatedAt)
	})
	if err != nil {
		if pgdb.IsUniqueViolation(err, "") {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (r *PGUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `
			SELECT user_id, name, email, phone, password_hash, created_at
			FROM users WHERE email = $1`, email).
			Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmailNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *PGUserRepository) UpdatePassword(ctx context.Context, userID int64, email, passwordHash string) error {
	return r.pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE user_id = $2 AND email = $3`, passwordHash, userID, email)
		if err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrEmailNotFound
		}
		return nil
	})
}

var _ UserRepository = (*PGUserRepository)(nil)
