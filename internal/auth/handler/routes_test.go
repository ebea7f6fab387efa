package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A3toros/tutorcat-auth/internal/auth/service"
)

// TestRegisterRoutes verifies that all public routes are mounted.
func TestRegisterRoutes(t *testing.T) {
	f := newFixture(t)

	testCases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/auth/login"},
		{http.MethodPost, "/auth/send-otp"},
		{http.MethodPost, "/auth/verify-otp"},
		{http.MethodDelete, "/auth/session"},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s_%s_exists", tc.method, tc.path), func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			resp, err := f.app.Test(req, -1)
			require.NoError(t, err)

			// A 404 would mean the route is missing; the handlers
			// themselves return other codes for an empty body.
			assert.NotEqual(t, http.StatusNotFound, resp.StatusCode)
		})
	}
}

func TestRequireAdminMiddleware(t *testing.T) {
	f := newFixture(t)
	tokenService := service.NewTokenService("test-secret-key-123", 1440, 10080, 480)

	adminRoute := "/auth/user/user-123/sessions"

	t.Run("fails without admin cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, adminRoute, nil)

		resp, err := f.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("fails with a non-admin token in the admin cookie", func(t *testing.T) {
		// A valid session token is still the wrong type here.
		sessionToken, _, err := tokenService.GenerateSessionToken("user-123")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodDelete, adminRoute, nil)
		req.AddCookie(&http.Cookie{Name: "admin_token", Value: sessionToken})

		resp, err := f.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("fails with a garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, adminRoute, nil)
		req.AddCookie(&http.Cookie{Name: "admin_token", Value: "not-a-jwt"})

		resp, err := f.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("succeeds with a real admin token", func(t *testing.T) {
		adminToken, err := tokenService.GenerateAdminToken("admin@example.com")
		require.NoError(t, err)

		f.sessions.EXPECT().DeleteAllByUserID(gomock.Any(), "user-123").Return(nil)

		req := httptest.NewRequest(http.MethodDelete, adminRoute, nil)
		req.AddCookie(&http.Cookie{Name: "admin_token", Value: adminToken})

		resp, err := f.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
