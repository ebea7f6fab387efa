package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/A3toros/tutorcat-auth/internal/auth/domain"
	autherror "github.com/A3toros/tutorcat-auth/internal/errors"
	authconstant "github.com/A3toros/tutorcat-auth/pkg/constant"
)

// OtpService owns the one-time-passcode lifecycle. At most one active
// code exists per (recipient, purpose): issuing a new code deletes the
// previous one first.
type OtpService struct {
	otps   domain.OtpRepository
	users  domain.UserRepository
	mailer domain.Mailer
}

func NewOtpService(otps domain.OtpRepository, users domain.UserRepository, mailer domain.Mailer) *OtpService {
	return &OtpService{
		otps:   otps,
		users:  users,
		mailer: mailer,
	}
}

// Send issues a fresh code for the pair and emails it to the recipient.
// Signup requires the address to be unclaimed; login and password reset
// require an existing account.
func (s *OtpService) Send(ctx context.Context, recipient string, purpose domain.OtpPurpose) error {
	if !purpose.Valid() {
		return autherror.ErrInvalidPurpose
	}

	user, err := s.users.GetByEmail(ctx, recipient)
	if err != nil {
		return err
	}

	if purpose == domain.OtpPurposeSignup {
		if user != nil {
			return autherror.ErrUserAlreadyExists
		}
	} else if user == nil {
		return autherror.ErrUserNotFound
	}

	// Supersede any outstanding code for this pair.
	if err := s.otps.Delete(ctx, recipient, purpose); err != nil {
		return err
	}

	code, err := generateOtpCode()
	if err != nil {
		return err
	}

	salt, err := generateSalt()
	if err != nil {
		return err
	}

	record := &domain.OtpRecord{
		Recipient:   recipient,
		Purpose:     purpose,
		CodeHash:    hashOtpCode(code, salt),
		Salt:        salt,
		ExpiresAt:   time.Now().Add(purpose.Expiry()),
		Attempts:    0,
		MaxAttempts: authconstant.OtpMaxAttempts,
		Used:        false,
		CreatedAt:   time.Now(),
	}
	if err := s.otps.Upsert(ctx, record); err != nil {
		return err
	}

	return s.mailer.SendOtp(ctx, recipient, purpose, code)
}

// Verify checks a submitted code against the stored record. On success
// it returns the matching user (nil for signup, where no account exists
// yet).
func (s *OtpService) Verify(ctx context.Context, recipient string, purpose domain.OtpPurpose, code string) (*domain.User, error) {
	if !purpose.Valid() {
		return nil, autherror.ErrInvalidPurpose
	}

	record, err := s.otps.Get(ctx, recipient, purpose)
	if err != nil {
		return nil, err
	}
	if record == nil || record.Used {
		return nil, autherror.ErrOtpNotFound
	}

	if time.Now().After(record.ExpiresAt) {
		// Expired records are garbage, clean up in passing.
		if err := s.otps.Delete(ctx, recipient, purpose); err != nil {
			return nil, err
		}
		return nil, autherror.ErrOtpNotFound
	}

	if record.Attempts >= record.MaxAttempts {
		if err := s.otps.Delete(ctx, recipient, purpose); err != nil {
			return nil, err
		}
		return nil, autherror.ErrOtpMaxAttempts
	}

	if !hmac.Equal([]byte(record.CodeHash), []byte(hashOtpCode(code, record.Salt))) {
		if err := s.otps.IncrementAttempts(ctx, recipient, purpose); err != nil {
			return nil, err
		}
		return nil, autherror.ErrOtpInvalid
	}

	if err := s.otps.MarkUsed(ctx, recipient, purpose); err != nil {
		return nil, err
	}

	if purpose == domain.OtpPurposeSignup {
		return nil, nil
	}

	return s.users.GetByEmail(ctx, recipient)
}

// generateOtpCode draws a uniform 6-digit code, leading zeros kept.
func generateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func generateSalt() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashOtpCode keys an HMAC-SHA256 with the per-record salt. Codes are
// never stored in plaintext.
func hashOtpCode(code, salt string) string {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))
}
