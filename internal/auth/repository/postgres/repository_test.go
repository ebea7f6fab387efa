package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A3toros/tutorcat-auth/internal/auth/domain"
	repo "github.com/A3toros/tutorcat-auth/internal/auth/repository/postgres"
)

var userColumns = []string{"id", "email", "username", "password_hash", "role", "level", "last_login_at", "created_at", "updated_at"}

func userRow(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows(userColumns).
		AddRow(u.ID, u.Email, u.Username, u.PasswordHash, u.Role, u.Level, u.LastLoginAt, u.CreatedAt, u.UpdatedAt)
}

// TestGetByEmail covers the GetByEmail repository method.
func TestGetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()

	expectedUser := &domain.User{
		ID:        "user-123",
		Email:     "test@example.com",
		Username:  "tester",
		Role:      "user",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT u.id, u.email").
			WithArgs(expectedUser.Email).
			WillReturnRows(userRow(expectedUser))

		user, err := r.GetByEmail(ctx, expectedUser.Email)
		require.NoError(t, err)
		assert.Equal(t, expectedUser.ID, user.ID)
		assert.Equal(t, expectedUser.Email, user.Email)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT u.id, u.email").
			WithArgs(expectedUser.Email).
			WillReturnError(pgx.ErrNoRows)

		user, err := r.GetByEmail(ctx, expectedUser.Email)
		require.NoError(t, err) // Should return nil user, nil error
		assert.Nil(t, user)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("SELECT u.id, u.email").
			WithArgs(expectedUser.Email).
			WillReturnError(fmt.Errorf("db error"))

		_, err := r.GetByEmail(ctx, expectedUser.Email)
		assert.Error(t, err)
	})
}

func TestGetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()

	expectedUser := &domain.User{ID: "user-123", Email: "test@example.com", Username: "Tester"}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(`LOWER\(u.username\) = LOWER\(\$1\)`).
			WithArgs("tester").
			WillReturnRows(userRow(expectedUser))

		user, err := r.GetByUsername(ctx, "tester")
		require.NoError(t, err)
		assert.Equal(t, expectedUser.ID, user.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`LOWER\(u.username\) = LOWER\(\$1\)`).
			WithArgs("ghost").
			WillReturnError(pgx.ErrNoRows)

		user, err := r.GetByUsername(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestUpdateLastLogin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	at := time.Now()

	mock.ExpectExec("UPDATE users SET last_login_at").
		WithArgs("user-123", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, r.UpdateLastLogin(context.Background(), "user-123", at))
}

func TestRecordLoginAttempt(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)

	mock.ExpectExec("INSERT INTO login_attempts").
		WithArgs("test@example.com", "10.0.0.1", false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, r.RecordLoginAttempt(context.Background(), "test@example.com", "10.0.0.1", false))
}

func TestStoreSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	session := &domain.Session{
		ID:        "session-123",
		UserID:    "user-123",
		Token:     "token",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO sessions").
			WithArgs(session.ID, session.UserID, session.Token, session.CreatedAt, session.ExpiresAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, r.Store(context.Background(), session))
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO sessions").
			WithArgs(session.ID, session.UserID, session.Token, session.CreatedAt, session.ExpiresAt).
			WillReturnError(fmt.Errorf("db error"))

		assert.Error(t, r.Store(context.Background(), session))
	})
}

// TestTrimActiveByUserID covers the single ranked-delete sweep.
func TestTrimActiveByUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)

	mock.ExpectExec("DELETE FROM sessions").
		WithArgs("user-123", 3).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	assert.NoError(t, r.TrimActiveByUserID(context.Background(), "user-123", 3))
}

func TestDeleteByToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM sessions WHERE token").
			WithArgs("token").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		deleted, err := r.DeleteByToken(ctx, "token")
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("no match", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM sessions WHERE token").
			WithArgs("missing").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		deleted, err := r.DeleteByToken(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestOtpCrud(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()

	record := &domain.OtpRecord{
		Recipient:   "test@example.com",
		Purpose:     domain.OtpPurposeLogin,
		CodeHash:    "hash",
		Salt:        "salt",
		ExpiresAt:   time.Now().Add(10 * time.Minute),
		Attempts:    0,
		MaxAttempts: 5,
		Used:        false,
		CreatedAt:   time.Now(),
	}

	otpColumns := []string{"recipient", "purpose", "code_hash", "salt", "expires_at", "attempts", "max_attempts", "used", "created_at"}

	t.Run("get success", func(t *testing.T) {
		mock.ExpectQuery("SELECT recipient, purpose").
			WithArgs(record.Recipient, "login").
			WillReturnRows(pgxmock.NewRows(otpColumns).
				AddRow(record.Recipient, record.Purpose, record.CodeHash, record.Salt,
					record.ExpiresAt, record.Attempts, record.MaxAttempts, record.Used, record.CreatedAt))

		got, err := r.Get(ctx, record.Recipient, domain.OtpPurposeLogin)
		require.NoError(t, err)
		assert.Equal(t, record.CodeHash, got.CodeHash)
		assert.Equal(t, domain.OtpPurposeLogin, got.Purpose)
	})

	t.Run("get not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT recipient, purpose").
			WithArgs(record.Recipient, "login").
			WillReturnError(pgx.ErrNoRows)

		got, err := r.Get(ctx, record.Recipient, domain.OtpPurposeLogin)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("upsert", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO otps").
			WithArgs(record.Recipient, "login", record.CodeHash, record.Salt,
				record.ExpiresAt, record.Attempts, record.MaxAttempts, record.Used, record.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, r.Upsert(ctx, record))
	})

	t.Run("delete", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM otps").
			WithArgs(record.Recipient, "login").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, r.Delete(ctx, record.Recipient, domain.OtpPurposeLogin))
	})

	t.Run("increment attempts", func(t *testing.T) {
		mock.ExpectExec("UPDATE otps SET attempts").
			WithArgs(record.Recipient, "login").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, r.IncrementAttempts(ctx, record.Recipient, domain.OtpPurposeLogin))
	})

	t.Run("mark used", func(t *testing.T) {
		mock.ExpectExec("UPDATE otps SET used").
			WithArgs(record.Recipient, "login").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, r.MarkUsed(ctx, record.Recipient, domain.OtpPurposeLogin))
	})
}
