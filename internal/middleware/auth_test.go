package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/budget_engine/internal/middleware"
	"github.com/SscSPs/budget_engine/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	authSecret = "auth-secret-that-is-long-enough"
	authIssuer = "budget-engine"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", middleware.AuthMiddleware(authSecret, authIssuer), func(c *gin.Context) {
		userID, _ := middleware.GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userID": userID})
	})
	return r
}

func callWithToken(t *testing.T, r http.Handler, authorization string) (int, map[string]string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "/me", nil)
	require.NoError(t, err)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestAuthMiddleware_AcceptsIssuedToken(t *testing.T) {
	token, err := utils.GenerateJWT("user-7", authSecret, time.Hour, authIssuer)
	require.NoError(t, err)

	code, body := callWithToken(t, newAuthRouter(), "Bearer "+token)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user-7", body["userID"])
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	foreign, err := utils.GenerateJWT("user-7", authSecret, time.Hour, "another-issuer")
	require.NoError(t, err)
	expired, err := utils.GenerateJWT("user-7", authSecret, -time.Minute, authIssuer)
	require.NoError(t, err)
	anonymous, err := utils.GenerateJWT("", authSecret, time.Hour, authIssuer)
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		wantError     string
	}{
		{"missing header", "", "Authorization header required"},
		{"not bearer", "Basic abc", "Authorization header format must be Bearer {token}"},
		{"garbage", "Bearer not-a-token", "Invalid token"},
		{"foreign issuer", "Bearer " + foreign, "Invalid token"},
		{"expired", "Bearer " + expired, "Token has expired"},
		{"no subject", "Bearer " + anonymous, "Invalid token claims"},
	}

	r := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := callWithToken(t, r, tt.authorization)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}
