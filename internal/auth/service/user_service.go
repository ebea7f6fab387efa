package service

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/A3toros/tutorcat-auth/config"
	"github.com/A3toros/tutorcat-auth/internal/auth/domain"
	"github.com/A3toros/tutorcat-auth/internal/auth/dto"
	autherror "github.com/A3toros/tutorcat-auth/internal/errors"
	authconstant "github.com/A3toros/tutorcat-auth/pkg/constant"
)

const backgroundTimeout = 5 * time.Second

type UserService struct {
	users        domain.UserRepository
	sessions     domain.SessionRepository
	tokenService TokenGenerator
	limiter      domain.RateLimiter
	cfg          *config.Config
	background   sync.WaitGroup
}

func NewUserService(users domain.UserRepository, sessions domain.SessionRepository,
	tokenService TokenGenerator, limiter domain.RateLimiter, cfg *config.Config) *UserService {
	return &UserService{
		users:        users,
		sessions:     sessions,
		tokenService: tokenService,
		limiter:      limiter,
		cfg:          cfg,
	}
}

func (s *UserService) loginWindow() time.Duration {
	return time.Duration(s.cfg.LoginWindowMin) * time.Minute
}

// Login runs the full password-login protocol: the failed-attempts
// gate, input bounds, user lookup, bcrypt comparison, token issuance
// and session persistence. The gate runs before any bcrypt work so
// hashing cost cannot be farmed by a throttled client.
func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error) {
	identifier := input.Identifier()

	// The gate runs before input validation too: a client flooding
	// malformed requests is throttled like any other.
	gate := s.limiter.Check(ctx, authconstant.NamespaceFailedLogin, input.ClientIP,
		s.cfg.LoginMaxAttempts, s.loginWindow())
	if !gate.Allowed {
		return nil, &autherror.RateLimitError{
			Limit:      s.cfg.LoginMaxAttempts,
			Remaining:  gate.Remaining,
			ResetAt:    gate.ResetAt,
			RetryAfter: gate.RetryAfter,
		}
	}

	if identifier == "" || input.Password == "" {
		return nil, autherror.ErrMissingCredentials
	}
	if len(identifier) > authconstant.MaxCredentialLength || len(input.Password) > authconstant.MaxCredentialLength {
		return nil, autherror.ErrInputTooLong
	}

	user, err := s.lookupUser(ctx, identifier)
	if err != nil {
		return nil, err
	}

	// Unknown user and wrong password take the same path so the two
	// are indistinguishable to the caller.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		s.recordFailedLogin(identifier, input.ClientIP)
		return nil, autherror.ErrInvalidCredentials
	}

	resp, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	window := s.loginWindow()
	s.scheduleBackground("record successful login", func(ctx context.Context) error {
		// The general login namespace tracks every attempt; only the
		// failed-login namespace stays failure-only.
		s.limiter.Record(ctx, authconstant.NamespaceLogin, input.ClientIP, window)
		return s.users.RecordLoginAttempt(ctx, identifier, input.ClientIP, true)
	})

	return resp, nil
}

func (s *UserService) lookupUser(ctx context.Context, identifier string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	return s.users.GetByUsername(ctx, strings.ToLower(identifier))
}

// issueSession mints the token bundle, persists the session row and
// launches the non-blocking bookkeeping shared by password and OTP
// login.
func (s *UserService) issueSession(ctx context.Context, user *domain.User) (*dto.LoginResponse, error) {
	accessToken, err := s.tokenService.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	sessionToken, expiresAt, err := s.tokenService.GenerateSessionToken(user.ID)
	if err != nil {
		return nil, err
	}

	var adminToken string
	if user.IsAdmin() {
		adminToken, err = s.tokenService.GenerateAdminToken(user.Email)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     sessionToken,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Store(ctx, session); err != nil {
		return nil, err
	}

	userID := user.ID
	s.scheduleBackground("session rotation sweep", func(ctx context.Context) error {
		return s.sessions.TrimActiveByUserID(ctx, userID, s.cfg.MaxActiveSessions)
	})
	s.scheduleBackground("last login update", func(ctx context.Context) error {
		return s.users.UpdateLastLogin(ctx, userID, now)
	})

	return &dto.LoginResponse{
		User:         dto.NewUserOutput(user),
		AccessToken:  accessToken,
		SessionToken: sessionToken,
		AdminToken:   adminToken,
	}, nil
}

// recordFailedLogin feeds the failed-attempts gate and the audit trail.
// Neither write is awaited and neither can fail the login response.
func (s *UserService) recordFailedLogin(identifier, ip string) {
	window := s.loginWindow()
	s.scheduleBackground("failed attempt counter", func(ctx context.Context) error {
		s.limiter.Record(ctx, authconstant.NamespaceFailedLogin, ip, window)
		s.limiter.Record(ctx, authconstant.NamespaceLogin, ip, window)
		return nil
	})
	s.scheduleBackground("failed attempt audit", func(ctx context.Context) error {
		return s.users.RecordLoginAttempt(ctx, identifier, ip, false)
	})
}

// CompleteOtpLogin issues the same token bundle as a password login for
// a user who just proved control of their address with a login-purpose
// code.
func (s *UserService) CompleteOtpLogin(ctx context.Context, user *domain.User) (*dto.LoginResponse, error) {
	resp, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	email := user.Email
	s.scheduleBackground("record successful login", func(ctx context.Context) error {
		return s.users.RecordLoginAttempt(ctx, email, "", true)
	})

	return resp, nil
}

// Logout deletes the session row matching the presented session token.
func (s *UserService) Logout(ctx context.Context, sessionToken string) error {
	deleted, err := s.sessions.DeleteByToken(ctx, sessionToken)
	if err != nil {
		return err
	}
	if !deleted {
		return autherror.ErrSessionNotFound
	}

	return nil
}

// ForceLogout revokes every session of the given user. Admin action.
func (s *UserService) ForceLogout(ctx context.Context, userID string) error {
	return s.sessions.DeleteAllByUserID(ctx, userID)
}

// WaitBackground blocks until every launched background task has
// finished. Called on shutdown; tests use it to observe fire-and-forget
// writes.
func (s *UserService) WaitBackground() {
	s.background.Wait()
}

// scheduleBackground launches fn detached from the request with its own
// deadline. Failures are logged, never surfaced to the caller.
func (s *UserService) scheduleBackground(name string, fn func(context.Context) error) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("warn: background task %q panicked: %v", name, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			log.Printf("warn: background task %q failed: %v", name, err)
		}
	}()
}
