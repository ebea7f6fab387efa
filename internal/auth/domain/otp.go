package domain

import "time"

type OtpPurpose string

const (
	OtpPurposeLogin         OtpPurpose = "login"
	OtpPurposeSignup        OtpPurpose = "signup"
	OtpPurposePasswordReset OtpPurpose = "password_reset"
)

func (p OtpPurpose) Valid() bool {
	switch p {
	case OtpPurposeLogin, OtpPurposeSignup, OtpPurposePasswordReset:
		return true
	}
	return false
}

// Expiry returns how long a freshly issued code for this purpose stays
// verifiable. Signup codes are shorter-lived because the address was
// submitted moments earlier in the same flow.
func (p OtpPurpose) Expiry() time.Duration {
	if p == OtpPurposeSignup {
		return 5 * time.Minute
	}
	return 10 * time.Minute
}

// OtpRecord is the stored form of an issued code. The plaintext code is
// never persisted; CodeHash is an HMAC-SHA256 of the code keyed by Salt.
type OtpRecord struct {
	Recipient   string
	Purpose     OtpPurpose
	CodeHash    string
	Salt        string
	ExpiresAt   time.Time
	Attempts    int
	MaxAttempts int
	Used        bool
	CreatedAt   time.Time
}
