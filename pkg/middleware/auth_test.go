package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtutil "github.com/planmaster/planmaster/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func protectedHandler(t *testing.T, wantUserID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserFromContext(r.Context())
		require.NotNil(t, claims)
		assert.Equal(t, wantUserID, claims.UserID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	handler := AuthMiddleware(testSecret)(protectedHandler(t, ""))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/goals", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "access denied")
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	handler := AuthMiddleware(testSecret)(protectedHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/goals", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	token, err := jwtutil.GenerateToken("user-1", "dana@example.com", "user", testSecret, -time.Minute)
	require.NoError(t, err)

	handler := AuthMiddleware(testSecret)(protectedHandler(t, ""))
	req := httptest.NewRequest(http.MethodGet, "/goals", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	token, err := jwtutil.GenerateToken("user-1", "dana@example.com", "user", testSecret, time.Hour)
	require.NoError(t, err)

	handler := AuthMiddleware(testSecret)(protectedHandler(t, "user-1"))
	req := httptest.NewRequest(http.MethodGet, "/goals", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	token, err := jwtutil.GenerateToken("user-1", "dana@example.com", "user", testSecret, time.Hour)
	require.NoError(t, err)

	handler := AuthMiddleware(testSecret)(RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
