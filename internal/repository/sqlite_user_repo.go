package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"binbuddy/internal/model"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

type sqliteUserRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteUserRepository creates a UserRepository on top of an SQLite database.
// Used for local development and integration tests.
func NewSQLiteUserRepository(db *sql.DB) UserRepository {
	return &sqliteUserRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *sqliteUserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	user.Email = NormalizeEmail(user.Email)
	now := r.now()

	query := `
		INSERT INTO users (id, username, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID.String(), user.Username, user.Email, user.PasswordHash, user.Role, now, now)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *sqliteUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE email = ?
	`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, NormalizeEmail(email)))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, err
}

func (r *sqliteUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, err
}

func (r *sqliteUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, passwordHash, id)
}

func (r *sqliteUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	return r.update(ctx, `UPDATE users SET role = ?, updated_at = ? WHERE id = ?`, role, id)
}

func (r *sqliteUserRepository) update(ctx context.Context, query, value string, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, query, value, r.now(), id.String())
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
