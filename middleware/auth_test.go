package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"storefront/models"
	"storefront/services"
)

type fakeAuthenticator map[string]services.Actor

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (services.Actor, error) {
	actor, ok := f[token]
	if !ok {
		return services.Actor{}, errors.New("unknown token")
	}
	return actor, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := fakeAuthenticator{
		"customer": {UserID: 1, Role: models.RoleCustomer},
		"admin":    {UserID: 2, Role: models.RoleAdmin},
	}

	router := gin.New()
	router.Use(AuthMiddleware(auth))
	router.GET("/whoami", func(c *gin.Context) {
		actor := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"userID": actor.UserID, "role": actor.Role, "token": c.GetString(TokenKey)})
	})
	router.GET("/user", CheckLoginMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.GET("/admin", CheckLoginMiddleware(), CheckAdminPermissionMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func request(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareSetsActor(t *testing.T) {
	router := newTestRouter()

	w := request(router, "/whoami", "admin")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userID":2,"role":"ADMIN","token":"admin"}`, w.Body.String())

	//無效的Token視為未登入
	w = request(router, "/whoami", "forged")
	assert.JSONEq(t, `{"userID":0,"role":"","token":""}`, w.Body.String())
}

func TestLoginAndAdminChecks(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		path  string
		token string
		want  int
	}{
		{"/user", "", http.StatusUnauthorized},
		{"/user", "forged", http.StatusUnauthorized},
		{"/user", "customer", http.StatusNoContent},
		{"/admin", "", http.StatusUnauthorized},
		{"/admin", "customer", http.StatusForbidden},
		{"/admin", "admin", http.StatusNoContent},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, request(router, c.path, c.token).Code, "%s with %q", c.path, c.token)
	}
}
