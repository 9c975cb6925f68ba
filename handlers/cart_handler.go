package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/middleware"
	"storefront/models"
	"storefront/services"
)

func cartResponse(message string, cart *models.Cart) gin.H {
	return gin.H{
		"message":    message,
		"cart":       cart,
		"totalItems": cart.TotalItems(),
		"totalPrice": cart.TotalPrice(),
	}
}

// 查詢購物車商品
func GetCartHandler(c *gin.Context, carts *services.CartService) {
	cart, err := carts.GetOrCreateCart(c.Request.Context(), middleware.ActorFrom(c).UserID)
	if err != nil {
		respondError(c, "查詢購物車失敗", err)
		return
	}

	c.JSON(http.StatusOK, cartResponse("查詢購物車成功", cart))
}

type addToCartRequest struct {
	ProductID uint `json:"productID" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// 新增商品至購物車
func AddToCartHandler(c *gin.Context, carts *services.CartService) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := carts.AddItem(c.Request.Context(), middleware.ActorFrom(c).UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, "新增商品至購物車失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "新增商品至購物車成功",
		"item":    item,
	})
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// 更新購物車商品數量，數量小於等於0則刪除該商品
func UpdateCartItemQuantityHandler(c *gin.Context, carts *services.CartService) {
	itemID, ok := paramID(c, "itemID")
	if !ok {
		return
	}
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := carts.UpdateItem(c.Request.Context(), middleware.ActorFrom(c).UserID, itemID, *req.Quantity)
	if err != nil {
		respondError(c, "更新購物車商品數量失敗", err)
		return
	}
	if item == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "已從購物車刪除商品",
			"removed": true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "更新購物車商品數量成功",
		"item":    item,
	})
}

// 刪除購物車商品
func DeleteCartItemHandler(c *gin.Context, carts *services.CartService) {
	itemID, ok := paramID(c, "itemID")
	if !ok {
		return
	}

	if err := carts.RemoveItem(c.Request.Context(), middleware.ActorFrom(c).UserID, itemID); err != nil {
		respondError(c, "刪除購物車商品失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "刪除購物車商品成功",
	})
}

// 清除購物車商品
func ClearCartHandler(c *gin.Context, carts *services.CartService) {
	if err := carts.Clear(c.Request.Context(), middleware.ActorFrom(c).UserID); err != nil {
		respondError(c, "清除購物車失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "清除購物車成功",
	})
}
