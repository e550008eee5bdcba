package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"vehicle_parking/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID int, username string, isAdmin bool, secret string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":      strconv.Itoa(userID),
		"exp":      time.Now().Add(time.Hour).Unix(),
		"iat":      time.Now().Unix(),
		"username": username,
		"is_admin": isAdmin,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newTestRouter(adminOnly bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(service.NewAuthService(nil, testSecret, time.Hour))

	r := gin.New()
	handlers := []gin.HandlerFunc{m.Authenticate()}
	if adminOnly {
		handlers = append(handlers, m.RequireAdmin())
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetInt(UserIDKey),
			"username": c.GetString(UsernameKey),
		})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestAuthenticate(t *testing.T) {
	r := newTestRouter(false)

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthorizationHeaderKey, "Token abc")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthorizationHeaderKey, "Bearer "+signToken(t, 2, "alice", false, "other-secret"))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token exposes identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthorizationHeaderKey, "Bearer "+signToken(t, 2, "alice", false, testSecret))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id": 2, "username": "alice"}`, w.Body.String())
	})
}

func TestRequireAdmin(t *testing.T) {
	r := newTestRouter(true)

	t.Run("regular user is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthorizationHeaderKey, "Bearer "+signToken(t, 2, "alice", false, testSecret))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthorizationHeaderKey, "Bearer "+signToken(t, 1, "admin", true, testSecret))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
