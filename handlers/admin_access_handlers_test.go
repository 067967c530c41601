package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candletime/api-gateway/internal/adminauth"
)

type fixedProvider struct {
	user *adminauth.User
	err  error
}

func (p fixedProvider) GetUser(ctx context.Context) (*adminauth.User, error) {
	return p.user, p.err
}

func accessApp(h *ApplicationHandler) *fiber.App {
	app := fiber.New()
	app.Get("/api/v1/admin/access", h.CheckAdminAccess)
	return app
}

func checkAccess(t *testing.T, app *fiber.App, token string) adminauth.CheckResult {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/v1/admin/access", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "access check always answers 200")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var result adminauth.CheckResult
	require.NoError(t, json.Unmarshal(raw, &result))
	return result
}

func TestCheckAdminAccess_NoToken(t *testing.T) {
	h := testHandler()
	h.AdminAllowList = "admin@example.com"
	h.ProviderFactory = func(token string) adminauth.IdentityProvider {
		t.Fatal("provider must not be built without a token")
		return nil
	}

	result := checkAccess(t, accessApp(h), "")
	assert.False(t, result.IsAdmin)
	assert.Equal(t, adminauth.ReasonNotAuthenticated, result.Error)
}

func TestCheckAdminAccess_Admin(t *testing.T) {
	h := testHandler()
	h.AdminAllowList = " Admin@Example.com "
	h.ProviderFactory = func(token string) adminauth.IdentityProvider {
		return fixedProvider{user: &adminauth.User{ID: "u1", Email: "admin@example.com"}}
	}

	result := checkAccess(t, accessApp(h), "some-token")
	assert.True(t, result.IsAdmin)
	require.NotNil(t, result.User)
	assert.Equal(t, "admin@example.com", result.User.Email)
	assert.Empty(t, result.Error)
}

func TestCheckAdminAccess_Denied(t *testing.T) {
	h := testHandler()
	h.AdminAllowList = "admin@example.com"
	h.ProviderFactory = func(token string) adminauth.IdentityProvider {
		return fixedProvider{user: &adminauth.User{ID: "u2", Email: "visitor@example.com"}}
	}

	result := checkAccess(t, accessApp(h), "some-token")
	assert.False(t, result.IsAdmin)
	assert.Nil(t, result.User)
	assert.Equal(t, adminauth.ReasonAccessDenied, result.Error)
}
