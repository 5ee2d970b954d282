package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)

	token, err := m.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)

	claims, err := m.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := m.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseAndValidate(token)
	assert.Error(t, err)

	other := NewJWTManager("other-secret", time.Minute)
	foreign, err := other.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)
	_, err = m.ParseAndValidate(foreign)
	assert.Error(t, err)
}

func newWhoAmIRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/whoami", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": GetUserID(c)})
	})
	return r
}

func doWhoAmI(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	r := newWhoAmIRouter(AuthRequired(m))

	assert.Equal(t, http.StatusUnauthorized, doWhoAmI(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doWhoAmI(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, doWhoAmI(r, "Bearer not-a-jwt").Code)

	token, _ := m.GenerateAccessToken("user-1", "a@b.com")
	w := doWhoAmI(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestOptionalAuth(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	r := newWhoAmIRouter(OptionalAuth(m))

	w := doWhoAmI(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":""}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, doWhoAmI(r, "Bearer garbage").Code)

	token, _ := m.GenerateAccessToken("user-2", "c@d.com")
	w = doWhoAmI(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"user-2"}`, w.Body.String())
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptPasswordHasherWithCost(4)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "correct horse"))
	assert.Error(t, h.Compare(hash, "wrong"))
}
