package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"filmmate/config"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "filmmate", ExpireTime: time.Hour})
}

func TestIssueAndParse(t *testing.T) {
	svc := newTestService()
	token, err := svc.IssueToken(42, "alice")
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "alice", claims.Username)

	_, err = svc.IssueToken(0, "nobody")
	assert.Error(t, err)
}

func TestValidateRejectsForeignToken(t *testing.T) {
	other := NewJWTService(config.JWTConfig{Secret: "other", Issuer: "filmmate", ExpireTime: time.Hour})
	token, err := other.IssueToken(1, "bob")
	require.NoError(t, err)

	_, err = newTestService().ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = newTestService().ParseToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func signRaw(t *testing.T, claims jwtv5.Claims) string {
	t.Helper()
	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestParseRejectsNonUserTokens(t *testing.T) {
	svc := newTestService()
	future := jwtv5.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		claims jwtv5.Claims
	}{
		{"non numeric subject", jwtv5.MapClaims{"iss": "filmmate", "sub": "alice", "exp": future.Unix()}},
		{"zero subject", jwtv5.MapClaims{"iss": "filmmate", "sub": "0", "exp": future.Unix()}},
		{"missing expiry", jwtv5.MapClaims{"iss": "filmmate", "sub": "7"}},
		{"wrong issuer", jwtv5.MapClaims{"iss": "im-server", "sub": "7", "exp": future.Unix()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ParseToken(signRaw(t, tt.claims))
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	none, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.MapClaims{"iss": "filmmate", "sub": "7", "exp": future.Unix()}).
		SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ParseToken(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseExpiredToken(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "filmmate", ExpireTime: -time.Minute})
	token, err := svc.IssueToken(5, "erin")
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService()
	r := gin.New()
	r.GET("/me", svc.AuthMiddleware(), func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id, "name": GetUsername(c)})
	})

	// 短token不应导致panic
	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer x"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Contains(t, w.Body.String(), `"code":401`, header)
	}

	token, _ := svc.IssueToken(7, "carol")
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"id":7,"name":"carol"}`, w.Body.String())
}

func TestOptionalAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService()
	r := gin.New()
	r.GET("/movie", svc.OptionalAuth(), func(c *gin.Context) {
		_, ok := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/movie", nil))
	assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/movie", nil)
	req.Header.Set("Authorization", "Bearer broken")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())

	token, _ := svc.IssueToken(3, "dave")
	req = httptest.NewRequest(http.MethodGet, "/movie", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"authenticated":true}`, w.Body.String())
}
