package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// clientIP resolves the identity the limiter keys on: the first hop of
// X-Forwarded-For, then X-Real-IP, then the transport remote address.
// An empty result means the limiter fails open rather than throttling
// every unidentifiable client together.
func clientIP(c *fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
		return ip
	}

	return c.IP()
}
