package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	txcontext "registrar/pkg/platform/tx"
)

// PostgresStore persists accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) runner(ctx context.Context) dbRunner {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Save(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, email, first_name, last_name, password_hash, is_staff, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			password_hash = EXCLUDED.password_hash,
			is_staff = EXCLUDED.is_staff,
			status = EXCLUDED.status,
			updated_at = NOW()
	`
	_, err := s.runner(ctx).ExecContext(ctx, query,
		uuid.UUID(u.ID), u.Email, u.FirstName, u.LastName, u.PasswordHash, u.IsStaff, string(u.Status))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("save user %s: %w", u.Email, sentinel.ErrConflict)
		}
		return fmt.Errorf("save user %s: %w", u.Email, err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*User, error) {
	query := `
		SELECT id, email, first_name, last_name, password_hash, is_staff, status, created_at, updated_at
		FROM users WHERE id = $1
	`
	return s.scan(s.runner(ctx).QueryRowContext(ctx, query, uuid.UUID(userID)))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, first_name, last_name, password_hash, is_staff, status, created_at, updated_at
		FROM users WHERE lower(email) = lower($1)
	`
	return s.scan(s.runner(ctx).QueryRowContext(ctx, query, email))
}

func (s *PostgresStore) scan(row *sql.Row) (*User, error) {
	var u User
	var userID uuid.UUID
	var status string
	err := row.Scan(&userID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.IsStaff, &status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = id.UserID(userID)
	u.Status = Status(status)
	return &u, nil
}
