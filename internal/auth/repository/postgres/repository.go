package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/A3toros/tutorcat-auth/internal/auth/domain"
)

// PgxIface is the subset of pgxpool.Pool the repository uses; pgxmock
// satisfies it in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	db PgxIface
}

func NewPostgresRepository(db PgxIface) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `u.id, u.email, u.username, u.password_hash, u.role, u.level, u.last_login_at, u.created_at, u.updated_at`

func (r *PostgresRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&user.Role, &user.Level, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return &user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		WHERE u.email = $1
		LIMIT 1;
	`

	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		WHERE LOWER(u.username) = LOWER($1)
		LIMIT 1;
	`

	return r.scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET last_login_at = $2, updated_at = now()
		WHERE id = $1
	`, userID, at)

	return err
}

func (r *PostgresRepository) RecordLoginAttempt(ctx context.Context, identifier, ip string, success bool) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO login_attempts (id, identifier, ip_address, attempt_time, successful)
		VALUES (gen_random_uuid(), $1, $2, now(), $3)
	`, identifier, ip, success)

	return err
}

func (r *PostgresRepository) Store(ctx context.Context, session *domain.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (id, user_id, token, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, session.ID, session.UserID, session.Token, session.CreatedAt, session.ExpiresAt)

	return err
}

// TrimActiveByUserID deletes everything beyond the keep most recently
// created non-expired sessions in a single ranked DELETE. Expired rows
// are ignored entirely, they age out on their own.
func (r *PostgresRepository) TrimActiveByUserID(ctx context.Context, userID string, keep int) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM sessions
		WHERE user_id = $1
		  AND expires_at > now()
		  AND id NOT IN (
			SELECT id FROM sessions
			WHERE user_id = $1 AND expires_at > now()
			ORDER BY created_at DESC
			LIMIT $2
		  )
	`, userID, keep)

	return err
}

func (r *PostgresRepository) DeleteByToken(ctx context.Context, token string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) DeleteAllByUserID(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)

	return err
}

func (r *PostgresRepository) Get(ctx context.Context, recipient string, purpose domain.OtpPurpose) (*domain.OtpRecord, error) {
	query := `
		SELECT recipient, purpose, code_hash, salt, expires_at, attempts, max_attempts, used, created_at
		FROM otps
		WHERE recipient = $1 AND purpose = $2
		LIMIT 1;
	`
	row := r.db.QueryRow(ctx, query, recipient, string(purpose))

	var record domain.OtpRecord
	err := row.Scan(&record.Recipient, &record.Purpose, &record.CodeHash, &record.Salt,
		&record.ExpiresAt, &record.Attempts, &record.MaxAttempts, &record.Used, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get otp record: %w", err)
	}

	return &record, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, record *domain.OtpRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO otps (
			recipient, purpose, code_hash, salt, expires_at, attempts, max_attempts, used, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (recipient, purpose)
		DO UPDATE SET
			code_hash = EXCLUDED.code_hash,
			salt = EXCLUDED.salt,
			expires_at = EXCLUDED.expires_at,
			attempts = EXCLUDED.attempts,
			max_attempts = EXCLUDED.max_attempts,
			used = EXCLUDED.used,
			created_at = EXCLUDED.created_at
	`, record.Recipient, string(record.Purpose), record.CodeHash, record.Salt,
		record.ExpiresAt, record.Attempts, record.MaxAttempts, record.Used, record.CreatedAt)

	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, recipient string, purpose domain.OtpPurpose) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM otps WHERE recipient = $1 AND purpose = $2
	`, recipient, string(purpose))

	return err
}

func (r *PostgresRepository) IncrementAttempts(ctx context.Context, recipient string, purpose domain.OtpPurpose) error {
	_, err := r.db.Exec(ctx, `
		UPDATE otps SET attempts = attempts + 1
		WHERE recipient = $1 AND purpose = $2
	`, recipient, string(purpose))

	return err
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, recipient string, purpose domain.OtpPurpose) error {
	_, err := r.db.Exec(ctx, `
		UPDATE otps SET used = TRUE
		WHERE recipient = $1 AND purpose = $2
	`, recipient, string(purpose))

	return err
}
