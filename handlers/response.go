package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/services"
	"storefront/storage"
)

// 依錯誤種類回傳對應的HTTP狀態碼
func respondError(c *gin.Context, message string, err error) {
	var stockErr *services.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"message":     message,
			"error":       err.Error(),
			"productID":   stockErr.ProductID,
			"productName": stockErr.ProductName,
			"available":   stockErr.Available,
			"requested":   stockErr.Requested,
		})
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, storage.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, gin.H{"message": message, "error": err.Error()})
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"message": message, "error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": message, "error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": message, "error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": message, "error": err.Error()})
	default:
		log.Printf("%s: %v\n", message, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": message, "error": err.Error()})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"message": "綁定請求資料錯誤",
		"error":   err.Error(),
	})
}

// 讀取路徑上的ID參數，不合法時回傳400
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "不合法的" + name,
		})
		return 0, false
	}
	return uint(id), true
}

// 讀取分頁參數page與pageSize，未提供時使用預設值
func pageFromQuery(c *gin.Context) services.Page {
	number, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("pageSize"))
	return services.Page{Number: number, Size: size}
}

func pageInfo(page services.Page, total int64) gin.H {
	return gin.H{
		"page":       page.Number,
		"pageSize":   page.Size,
		"totalCount": total,
	}
}
