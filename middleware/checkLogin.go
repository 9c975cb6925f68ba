package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 檢查是否有登入，沒有則中止請求
func CheckLoginMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).Authenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "尚未登入",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
