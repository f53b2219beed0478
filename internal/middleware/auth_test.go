package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-go/pkg/token"
)

func newAuthedEngine(m *token.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", AuthMiddleware(m), func(c *gin.Context) {
		c.String(http.StatusOK, OwnerID(c))
	})
	return r
}

func get(r http.Handler, target, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthDisabled(t *testing.T) {
	w := get(newAuthedEngine(nil), "/whoami", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestAuthAcceptsHeaderAndQueryToken(t *testing.T) {
	m := token.NewJWTManager("secret", 1)
	tok, err := m.GenerateToken("guest-1", token.RoleGuest)
	require.NoError(t, err)
	r := newAuthedEngine(m)

	w := get(r, "/whoami", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "guest-1", w.Body.String())

	w = get(r, "/whoami?token="+tok, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "guest-1", w.Body.String())
}

func TestAuthRejects(t *testing.T) {
	m := token.NewJWTManager("secret", 1)
	other, err := token.NewJWTManager("other", 1).GenerateToken("x", token.RoleGuest)
	require.NoError(t, err)
	r := newAuthedEngine(m)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/whoami", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/whoami", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/whoami", "Bearer "+other).Code)
}
