package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mindcare-go/internal/model"
	"mindcare-go/pkg/token"
)

type stubUsers map[string]*model.User

func (s stubUsers) GetProfile(username string) (*model.User, error) {
	if u, ok := s[username]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func newRouter(jwt *token.JWTManager, users stubUsers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	api := r.Group("/", AuthMiddleware(jwt, users))
	api.GET("/me", func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.String(http.StatusOK, u.Username)
	})
	api.GET("/admin", AdminAuthMiddleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwt := token.NewJWTManager("k", 1, 1)
	users := stubUsers{
		"eve":  {ID: 1, Username: "eve", Role: "USER"},
		"root": {ID: 2, Username: "root", Role: "ADMIN"},
	}
	r := newRouter(jwt, users)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Bearer garbage").Code)

	eve, err := jwt.GenerateToken(token.Identity{UserID: 1, Username: "eve", Role: "USER"})
	require.NoError(t, err)
	w := do(r, "/me", "Bearer "+eve)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "eve", w.Body.String())
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "Bearer "+eve).Code)

	root, err := jwt.GenerateToken(token.Identity{UserID: 2, Username: "root", Role: "ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", "Bearer "+root).Code)

	ghost, err := jwt.GenerateToken(token.Identity{UserID: 9, Username: "ghost"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Bearer "+ghost).Code)
}
