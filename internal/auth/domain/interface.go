package domain

//go:generate mockgen -destination=../../mocks/mock_repositories.go -package=mocks github.com/A3toros/tutorcat-auth/internal/auth/domain UserRepository,SessionRepository,OtpRepository,Mailer,RateLimiter

import (
	"context"
	"time"
)

type UserRepository interface {
	// GetByEmail matches case-sensitively. A missing user is (nil, nil).
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByUsername matches case-insensitively. A missing user is (nil, nil).
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	RecordLoginAttempt(ctx context.Context, identifier, ip string, success bool) error
}

type SessionRepository interface {
	Store(ctx context.Context, session *Session) error
	// TrimActiveByUserID deletes every non-expired session for the user
	// except the keep most recently created ones.
	TrimActiveByUserID(ctx context.Context, userID string, keep int) error
	DeleteByToken(ctx context.Context, token string) (bool, error)
	DeleteAllByUserID(ctx context.Context, userID string) error
}

type OtpRepository interface {
	// Get returns the stored record for the pair, or (nil, nil).
	Get(ctx context.Context, recipient string, purpose OtpPurpose) (*OtpRecord, error)
	// Upsert replaces any existing record for (recipient, purpose).
	Upsert(ctx context.Context, record *OtpRecord) error
	Delete(ctx context.Context, recipient string, purpose OtpPurpose) error
	IncrementAttempts(ctx context.Context, recipient string, purpose OtpPurpose) error
	MarkUsed(ctx context.Context, recipient string, purpose OtpPurpose) error
}

type Mailer interface {
	SendOtp(ctx context.Context, recipient string, purpose OtpPurpose, code string) error
}

// RateLimitResult reports the outcome of a limiter check. RetryAfter is
// whole seconds and only meaningful when Allowed is false.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter int
}

type RateLimiter interface {
	// Check is read-only: it counts what Record has written and never
	// fails. On storage errors or an empty identity it reports the
	// attempt as allowed.
	Check(ctx context.Context, namespace, identity string, maxAttempts int, window time.Duration) RateLimitResult
	// Record is write-only bookkeeping and does not enforce the cap.
	Record(ctx context.Context, namespace, identity string, window time.Duration)
}
