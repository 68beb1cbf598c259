// handler/auth_middleware_test.go
package handler

import (
	"context"
	"multibank-api/model"
	"multibank-api/service"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func protectedProbe(t *testing.T) (http.Handler, *bool) {
	t.Helper()
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return next, &called
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("missing authorization header", func(t *testing.T) {
		next, called := protectedProbe(t)
		req, _ := http.NewRequest("GET", "/api/accounts", nil)
		rr := httptest.NewRecorder()

		AuthMiddleware(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, *called)
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		next, called := protectedProbe(t)
		req, _ := http.NewRequest("GET", "/api/accounts", nil)
		req.Header.Set("Authorization", "Token abc")
		rr := httptest.NewRecorder()

		AuthMiddleware(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, *called)
	})

	t.Run("invalid token", func(t *testing.T) {
		next, called := protectedProbe(t)
		req, _ := http.NewRequest("GET", "/api/accounts", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rr := httptest.NewRecorder()

		AuthMiddleware(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, *called)
	})

	t.Run("valid token populates the request context", func(t *testing.T) {
		token, err := service.GenerateJWT(&model.User{ID: 42, Email: "user@example.com", Role: model.RoleUser})
		assert.NoError(t, err)

		var gotUserID int
		var gotRole string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID, _ = r.Context().Value(UserIDKey).(int)
			gotRole, _ = r.Context().Value(UserRoleKey).(string)
			w.WriteHeader(http.StatusOK)
		})

		req, _ := http.NewRequest("GET", "/api/accounts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()

		AuthMiddleware(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 42, gotUserID)
		assert.Equal(t, "user", gotRole)
	})
}

func TestAdminMiddleware(t *testing.T) {
	t.Run("non-admin role is forbidden", func(t *testing.T) {
		next, called := protectedProbe(t)
		req, _ := http.NewRequest("GET", "/api/admin/accounts", nil)
		ctx := context.WithValue(req.Context(), UserRoleKey, "user")
		rr := httptest.NewRecorder()

		AdminMiddleware(next).ServeHTTP(rr, req.WithContext(ctx))

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.False(t, *called)
	})

	t.Run("missing role is forbidden", func(t *testing.T) {
		next, called := protectedProbe(t)
		req, _ := http.NewRequest("GET", "/api/admin/accounts", nil)
		rr := httptest.NewRecorder()

		AdminMiddleware(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.False(t, *called)
	})

	t.Run("admin role passes through", func(t *testing.T) {
		next, called := protectedProbe(t)
		req, _ := http.NewRequest("GET", "/api/admin/accounts", nil)
		ctx := context.WithValue(req.Context(), UserRoleKey, "admin")
		rr := httptest.NewRecorder()

		AdminMiddleware(next).ServeHTTP(rr, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, *called)
	})
}
