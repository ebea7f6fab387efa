package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/A3toros/tutorcat-auth/config"
	"github.com/A3toros/tutorcat-auth/internal/auth/domain"
	"github.com/A3toros/tutorcat-auth/internal/auth/dto"
	"github.com/A3toros/tutorcat-auth/internal/auth/service"
	autherror "github.com/A3toros/tutorcat-auth/internal/errors"
)

const requestTimeout = 3 * time.Second

type AuthHandler struct {
	userService  *service.UserService
	otpService   *service.OtpService
	tokenService service.TokenGenerator
	cfg          *config.Config
}

func NewAuthHandler(userService *service.UserService, otpService *service.OtpService,
	tokenService service.TokenGenerator, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		otpService:   otpService,
		tokenService: tokenService,
		cfg:          cfg,
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	input.ClientIP = clientIP(c)

	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	resp, err := h.userService.Login(ctx, input)
	if err != nil {
		return h.loginError(c, err)
	}

	h.setAuthCookies(c, resp)

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) loginError(c *fiber.Ctx, err error) error {
	var rateErr *autherror.RateLimitError
	if errors.As(err, &rateErr) {
		c.Set("X-RateLimit-Limit", strconv.Itoa(rateErr.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(rateErr.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(rateErr.ResetAt.Unix(), 10))
		c.Set("Retry-After", strconv.Itoa(rateErr.RetryAfter))

		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":       autherror.ErrTooManyLoginAttempts.Error(),
			"message":     fmt.Sprintf("Too many failed attempts. Try again in %d seconds.", rateErr.RetryAfter),
			"retry_after": rateErr.RetryAfter,
			"reset_at":    rateErr.ResetAt.Unix(),
		})
	}

	switch {
	case errors.Is(err, autherror.ErrMissingCredentials), errors.Is(err, autherror.ErrInputTooLong):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrInvalidCredentials):
		// Unknown user and wrong password produce this exact body.
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": autherror.ErrInvalidCredentials.Error(),
		})
	default:
		log.Printf("error: login failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}

func (h *AuthHandler) SendOtp(c *fiber.Ctx) error {
	var input dto.SendOtpInput
	if err := c.BodyParser(&input); err != nil || input.Recipient == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	err := h.otpService.Send(ctx, input.Recipient, domain.OtpPurpose(input.Purpose))
	if err != nil {
		switch {
		case errors.Is(err, autherror.ErrInvalidPurpose),
			errors.Is(err, autherror.ErrUserAlreadyExists),
			errors.Is(err, autherror.ErrUserNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			log.Printf("error: send otp failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "verification code sent",
	})
}

func (h *AuthHandler) VerifyOtp(c *fiber.Ctx) error {
	var input dto.VerifyOtpInput
	if err := c.BodyParser(&input); err != nil || input.Recipient == "" || input.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	purpose := domain.OtpPurpose(input.Purpose)

	user, err := h.otpService.Verify(ctx, input.Recipient, purpose, input.Code)
	if err != nil {
		switch {
		case errors.Is(err, autherror.ErrInvalidPurpose), errors.Is(err, autherror.ErrOtpNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, autherror.ErrOtpInvalid), errors.Is(err, autherror.ErrOtpMaxAttempts):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		default:
			log.Printf("error: verify otp failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
	}

	// A login-purpose code is a full credential: respond like a
	// password login, cookies and all.
	if purpose == domain.OtpPurposeLogin && user != nil {
		resp, err := h.userService.CompleteOtpLogin(ctx, user)
		if err != nil {
			log.Printf("error: otp login failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}

		h.setAuthCookies(c, resp)

		return c.Status(fiber.StatusOK).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "code verified",
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input dto.LogoutInput
	if err := c.BodyParser(&input); err != nil || input.SessionToken == "" {
		// Fall back to the cookie the login flow set.
		input.SessionToken = c.Cookies("session_token")
	}

	if input.SessionToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	if err := h.userService.Logout(ctx, input.SessionToken); err != nil {
		if errors.Is(err, autherror.ErrSessionNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		log.Printf("error: logout failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	h.clearAuthCookies(c)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "logged out"})
}

func (h *AuthHandler) ForceLogout(c *fiber.Ctx) error {
	userID := c.Params("id")

	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	if err := h.userService.ForceLogout(ctx, userID); err != nil {
		log.Printf("error: force logout failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "sessions revoked"})
}

// RequireAdmin guards admin-only routes. It accepts the admin token
// from the cookie the login flow set; the token type check keeps
// access and session tokens from passing here.
func (h *AuthHandler) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("admin_token")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing admin token"})
		}

		claims, err := h.tokenService.VerifyToken(token, service.TokenTypeAdmin)
		if err != nil || claims.Role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}

		return c.Next()
	}
}
