package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/A3toros/tutorcat-auth/internal/auth/service TokenGenerator

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	autherror "github.com/A3toros/tutorcat-auth/internal/errors"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeSession = "session"
	TokenTypeAdmin   = "admin"
)

type TokenGenerator interface {
	GenerateAccessToken(userID, email, role string) (string, error)
	GenerateSessionToken(userID string) (string, time.Time, error)
	GenerateAdminToken(email string) (string, error)
	GetAccessTokenExpiry() time.Duration
	GetSessionTokenExpiry() time.Duration
	GetAdminTokenExpiry() time.Duration
	VerifyToken(tokenString, wantType string) (*JWTCustomClaims, error)
}

// TokenService signs every token with a single server-held HS256 secret.
// Tokens are discriminated by the type claim: a session token presented
// where an access token is expected fails verification.
type TokenService struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	SessionTokenExpiry time.Duration
	AdminTokenExpiry   time.Duration
}

type JWTCustomClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"type"`
}

func NewTokenService(secret string, accessMinutes, sessionMinutes, adminMinutes int) *TokenService {
	return &TokenService{
		Secret:             secret,
		AccessTokenExpiry:  time.Duration(accessMinutes) * time.Minute,
		SessionTokenExpiry: time.Duration(sessionMinutes) * time.Minute,
		AdminTokenExpiry:   time.Duration(adminMinutes) * time.Minute,
	}
}

func (ts *TokenService) sign(claims JWTCustomClaims) (string, error) {
	if ts.Secret == "" {
		return "", fmt.Errorf("signing secret is not configured")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(ts.Secret))
}

func (ts *TokenService) GenerateAccessToken(userID, email, role string) (string, error) {
	now := time.Now()

	return ts.sign(JWTCustomClaims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
}

func (ts *TokenService) GenerateSessionToken(userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ts.SessionTokenExpiry)

	token, err := ts.sign(JWTCustomClaims{
		UserID:    userID,
		TokenType: TokenTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

func (ts *TokenService) GenerateAdminToken(email string) (string, error) {
	now := time.Now()

	return ts.sign(JWTCustomClaims{
		Email:     email,
		Role:      "admin",
		TokenType: TokenTypeAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.AdminTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
}

func (ts *TokenService) GetAccessTokenExpiry() time.Duration {
	return ts.AccessTokenExpiry
}

func (ts *TokenService) GetSessionTokenExpiry() time.Duration {
	return ts.SessionTokenExpiry
}

func (ts *TokenService) GetAdminTokenExpiry() time.Duration {
	return ts.AdminTokenExpiry
}

// VerifyToken parses and validates a token string, checking both the
// signature and the type claim.
func (ts *TokenService) VerifyToken(tokenString, wantType string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ts.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, autherror.ErrInvalidToken
	}

	if claims.TokenType != wantType {
		return nil, autherror.ErrInvalidToken
	}

	return claims, nil
}
