package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"binbuddy/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users \(id, username, email, password_hash, role\)`).
		WithArgs(pgxmock.AnyArg(), "alice", "a@x.com", "$2a$10$hash", model.RoleUser).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	user := &model.User{Username: "alice", Email: " A@X.com ", PasswordHash: "$2a$10$hash"}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, now, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "alice", "a@x.com", "hash", model.RoleUser).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &model.User{Username: "alice", Email: "a@x.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DBError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "alice", "a@x.com", "hash", model.RoleAdmin).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &model.User{Username: "alice", Email: "a@x.com", PasswordHash: "hash", Role: model.RoleAdmin})
	assert.ErrorContains(t, err, "failed to create user: db down")
	assert.NotErrorIs(t, err, ErrDuplicateKey)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT id, username, email, password_hash, role, created_at, updated_at FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(id.String(), "alice", "a@x.com", "hash", model.RoleUser, now, now))

	user, err := repo.FindByEmail(context.Background(), "A@x.COM")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("ghost@x.com").
		WillReturnError(pgx.ErrNoRows)

	user, err := repo.FindByEmail(context.Background(), "ghost@x.com")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_FindByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(id.String(), "alice", "a@x.com", "hash", model.RoleAdmin, now, now))

	user, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE users SET password_hash = \$1 WHERE id = \$2`).
		WithArgs("newhash", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users SET password_hash = \$1 WHERE id = \$2`).
		WithArgs("newhash", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.NoError(t, repo.UpdatePassword(context.Background(), id, "newhash"))
	assert.ErrorIs(t, repo.UpdatePassword(context.Background(), id, "newhash"), ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateRole(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE users SET role = \$1 WHERE id = \$2`).
		WithArgs(model.RoleAdmin, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users SET role = \$1 WHERE id = \$2`).
		WithArgs(model.RoleAdmin, id).
		WillReturnError(errors.New("db down"))

	assert.NoError(t, repo.UpdateRole(context.Background(), id, model.RoleAdmin))
	assert.ErrorContains(t, repo.UpdateRole(context.Background(), id, model.RoleAdmin), "failed to update role")
	assert.NoError(t, mock.ExpectationsWereMet())
}
