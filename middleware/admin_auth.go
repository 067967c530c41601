package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"candletime/api-gateway/internal/adminauth"
	"candletime/api-gateway/utils"
)

// Locals keys populated by AdminAuth for downstream handlers.
const (
	LocalsAdminEmail  = "admin_email"
	LocalsAdminUserID = "admin_user_id"
)

// AdminAuth verifies the Supabase access token on admin routes and matches
// the caller's email against the allow-list. This check is independent of
// the client-facing adminauth gate on purpose: the UI result cannot be
// trusted, so the API re-validates from the raw bearer token.
func AdminAuth(jwtSecret string, allowlist []string) fiber.Handler {
	allowed := make(map[string]bool, len(allowlist))
	for _, email := range allowlist {
		allowed[strings.ToLower(strings.TrimSpace(email))] = true
	}

	return func(c *fiber.Ctx) error {
		if jwtSecret == "" {
			return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Admin API is not configured")
		}

		token := adminauth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return utils.RespondWithError(c, fiber.StatusUnauthorized, adminauth.ReasonNotAuthenticated)
		}

		claims := jwt.MapClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !parsed.Valid {
			return utils.RespondWithError(c, fiber.StatusUnauthorized, adminauth.ReasonNotAuthenticated)
		}

		email, _ := claims["email"].(string)
		if email == "" || !allowed[strings.ToLower(strings.TrimSpace(email))] {
			return utils.RespondWithError(c, fiber.StatusForbidden, adminauth.ReasonAccessDenied)
		}

		c.Locals(LocalsAdminEmail, strings.ToLower(strings.TrimSpace(email)))
		if sub, ok := claims["sub"].(string); ok {
			c.Locals(LocalsAdminUserID, sub)
		}
		return c.Next()
	}
}
