package postgresql

import (
	"context"
	"testing"
	"time"

	"vehicle_parking/internal/domain"
	"vehicle_parking/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgUserRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPgUserRepository(db)
	now := time.Now().UTC()

	t.Run("Create success", func(t *testing.T) {
		user := &domain.User{Username: "alice", Email: "alice@example.com", Password: "hash"}

		mock.ExpectQuery("INSERT INTO users").
			WithArgs(user.Username, user.Email, user.Password, false).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1, now, now))

		created, err := repo.Create(context.Background(), user)
		assert.NoError(t, err)
		assert.Equal(t, 1, created.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Create duplicate username", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

		_, err := repo.Create(context.Background(), &domain.User{Username: "alice", Email: "other@example.com"})
		assert.ErrorIs(t, err, repository.ErrDuplicateEntry)
	})

	t.Run("Create duplicate email", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		_, err := repo.Create(context.Background(), &domain.User{Username: "bob", Email: "alice@example.com"})
		assert.ErrorIs(t, err, repository.ErrDuplicateEntry)
	})

	t.Run("FindByUsername success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "is_admin", "created_at", "updated_at"}).
			AddRow(1, "alice", "alice@example.com", "hash", false, now, now)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("alice").
			WillReturnRows(rows)

		user, err := repo.FindByUsername(context.Background(), "alice")
		assert.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.False(t, user.IsAdmin)
	})

	t.Run("FindByUsername not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "is_admin", "created_at", "updated_at"}))

		_, err := repo.FindByUsername(context.Background(), "ghost")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("Delete not found", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users").
			WithArgs(42).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), 42)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("Count", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.Count(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}
