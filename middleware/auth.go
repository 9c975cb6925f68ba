package middleware

import (
	"context"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/models"
	"storefront/services"
)

// Context中存放驗證結果的key
const (
	TokenKey  = "Token"
	UserIDKey = "UserID"
	RoleKey   = "Role"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (services.Actor, error)
}

// 驗證Bearer Token，成功時將使用者資訊存入Context，失敗時視為未登入
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		if token == "" {
			c.Next()
			return
		}

		//如Token不合法或已登出則不設定使用者資訊
		actor, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Printf("無法驗證Token: %v\n", err)
			c.Next()
			return
		}

		c.Set(TokenKey, token)
		c.Set(UserIDKey, actor.UserID)
		c.Set(RoleKey, actor.Role)
		c.Next()
	}
}

// 由Context取得目前的使用者，未登入時回傳空的Actor
func ActorFrom(c *gin.Context) services.Actor {
	var actor services.Actor
	if userID, ok := c.Get(UserIDKey); ok {
		actor.UserID, _ = userID.(uint)
	}
	if role, ok := c.Get(RoleKey); ok {
		actor.Role, _ = role.(models.Role)
	}
	return actor
}
