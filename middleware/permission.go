package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 檢查是否有admin權限，沒有則中止請求
func CheckAdminPermissionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{
				"message": "沒有權限",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
