package handlers

import (
	"github.com/gofiber/fiber/v2"

	"candletime/api-gateway/internal/adminauth"
)

// CheckAdminAccess godoc
// @Summary Check whether the caller is an administrator
// @Description Resolves the bearer token against the auth provider (bounded by a 3s timeout) and matches the email against the allow-list. Always returns 200 with a structured result; denial reasons are "Not authenticated", "Access denied" or "Timeout".
// @Tags admin
// @Produce json
// @Success 200 {object} adminauth.CheckResult
// @Router /admin/access [get]
func (h *ApplicationHandler) CheckAdminAccess(c *fiber.Ctx) error {
	token := adminauth.BearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return c.Status(fiber.StatusOK).JSON(adminauth.CheckResult{
			IsAdmin: false,
			User:    nil,
			Error:   adminauth.ReasonNotAuthenticated,
		})
	}

	gate := adminauth.NewGate(h.AdminAllowList, h.ProviderFactory(token), adminauth.DefaultTimeout)
	result := gate.CheckAccess(c.UserContext())
	if !result.IsAdmin {
		h.Logger.Warnf("Admin access denied: %s", result.Error)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
