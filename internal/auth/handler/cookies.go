package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/A3toros/tutorcat-auth/internal/auth/dto"
)

// setAuthCookies emits every issued token as an HttpOnly cookie.
// Secure, SameSite=Strict and the Domain attribute apply only in
// production; development gets Lax with no Domain so localhost works.
func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, resp *dto.LoginResponse) {
	h.setCookie(c, "access_token", resp.AccessToken, h.tokenService.GetAccessTokenExpiry())
	h.setCookie(c, "session_token", resp.SessionToken, h.tokenService.GetSessionTokenExpiry())

	if resp.AdminToken != "" {
		h.setCookie(c, "admin_token", resp.AdminToken, h.tokenService.GetAdminTokenExpiry())
	}
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	cookie := &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
	}

	if h.cfg.IsProduction() {
		cookie.Secure = true
		cookie.SameSite = fiber.CookieSameSiteStrictMode
		if h.cfg.CookieDomain != "" {
			cookie.Domain = h.cfg.CookieDomain
		}
	} else {
		cookie.SameSite = fiber.CookieSameSiteLaxMode
	}

	c.Cookie(cookie)
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{"access_token", "session_token", "admin_token"} {
		h.setCookie(c, name, "", -time.Hour)
	}
}
