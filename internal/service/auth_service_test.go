package service

import (
	"context"
	"testing"
	"time"

	"vehicle_parking/internal/domain"
	"vehicle_parking/internal/repository/postgresql"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthServiceWithMock(t *testing.T) (*AuthService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	svc := NewAuthService(postgresql.NewPgUserRepository(db), "test-secret", time.Hour)
	return svc, mock, func() { db.Close() }
}

func TestAuthServiceRegister(t *testing.T) {
	now := time.Now().UTC()

	t.Run("success hashes the password", func(t *testing.T) {
		svc, mock, closeDB := newAuthServiceWithMock(t)
		defer closeDB()

		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userColumns))
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns))
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("alice", "alice@example.com", sqlmock.AnyArg(), false).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(2, now, now))

		user, err := svc.Register(context.Background(), domain.RegisterUserDTO{
			Username: "alice", Email: "alice@example.com", Password: "secret123",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, user.ID)
		assert.False(t, user.IsAdmin)
		assert.Empty(t, user.Password)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("username taken", func(t *testing.T) {
		svc, mock, closeDB := newAuthServiceWithMock(t)
		defer closeDB()

		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(2, "alice", "alice@example.com", "hash", false, now, now))

		_, err := svc.Register(context.Background(), domain.RegisterUserDTO{
			Username: "alice", Email: "other@example.com", Password: "secret123",
		})
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("email taken", func(t *testing.T) {
		svc, mock, closeDB := newAuthServiceWithMock(t)
		defer closeDB()

		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("bob").
			WillReturnRows(sqlmock.NewRows(userColumns))
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(2, "alice", "alice@example.com", "hash", false, now, now))

		_, err := svc.Register(context.Background(), domain.RegisterUserDTO{
			Username: "bob", Email: "alice@example.com", Password: "secret123",
		})
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuthServiceLogin(t *testing.T) {
	now := time.Now().UTC()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("success issues a verifiable token", func(t *testing.T) {
		svc, mock, closeDB := newAuthServiceWithMock(t)
		defer closeDB()

		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(2, "alice", "alice@example.com", string(hash), false, now, now))

		resp, err := svc.Login(context.Background(), domain.LoginUserDTO{Username: "alice", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.UserID)
		assert.False(t, resp.IsAdmin)

		claims, err := svc.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "2", claims["sub"])
		assert.Equal(t, "alice", claims["username"])
		assert.Equal(t, false, claims["is_admin"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, mock, closeDB := newAuthServiceWithMock(t)
		defer closeDB()

		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(2, "alice", "alice@example.com", string(hash), false, now, now))

		_, err := svc.Login(context.Background(), domain.LoginUserDTO{Username: "alice", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, mock, closeDB := newAuthServiceWithMock(t)
		defer closeDB()

		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := svc.Login(context.Background(), domain.LoginUserDTO{Username: "ghost", Password: "whatever"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuthServiceValidateToken(t *testing.T) {
	svc, _, closeDB := newAuthServiceWithMock(t)
	defer closeDB()

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other := NewAuthService(nil, "other-secret", time.Hour)
	_, err = other.ValidateToken("eyJhbGciOiJIUzI1NiJ9.e30.invalid")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthServiceEnsureAdmin(t *testing.T) {
	now := time.Now().UTC()

	t.Run("creates the seed account when missing", func(t *testing.T) {
		svc, mock, closeDB := newAuthServiceWithMock(t)
		defer closeDB()

		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("admin").
			WillReturnRows(sqlmock.NewRows(userColumns))
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("admin", "admin@parking.com", sqlmock.AnyArg(), true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1, now, now))

		err := svc.EnsureAdmin(context.Background(), "admin", "admin@parking.com", "admin123")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no-op when the account exists", func(t *testing.T) {
		svc, mock, closeDB := newAuthServiceWithMock(t)
		defer closeDB()

		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("admin").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "admin", "admin@parking.com", "hash", true, now, now))

		err := svc.EnsureAdmin(context.Background(), "admin", "admin@parking.com", "admin123")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
