package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/middleware"
	"storefront/models"
	"storefront/services"
	"storefront/storage"
)

// 結帳前預覽金額
func CheckoutPreviewHandler(c *gin.Context, checkout *services.CheckoutService) {
	preview, err := checkout.Preview(c.Request.Context(), middleware.ActorFrom(c).UserID)
	if err != nil {
		respondError(c, "無法預覽結帳金額", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "預覽結帳金額成功",
		"cart":    preview.Cart,
		"totals":  preview.Totals,
	})
}

type sendOrderRequest struct {
	FullName      string               `json:"fullName" binding:"required,max=100"`
	Phone         string               `json:"phone" binding:"required,max=20"`
	Email         string               `json:"email" binding:"omitempty,email"`
	Address       string               `json:"address" binding:"required"`
	City          string               `json:"city" binding:"required,max=100"`
	PostalCode    string               `json:"postalCode" binding:"required,max=10"`
	Notes         string               `json:"notes"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"omitempty,payment_method"`
}

// 送出訂單並清空購物車
func SendOrderHandler(c *gin.Context, checkout *services.CheckoutService) {
	var req sendOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := checkout.Checkout(c.Request.Context(), middleware.ActorFrom(c).UserID, services.CheckoutInput{
		FullName:      req.FullName,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondError(c, "訂單建立失敗", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "訂單建立成功",
		"orderNumber": order.OrderNumber,
		"order":       order,
	})
}

// 查詢訂單列表
func GetOrderListHandler(c *gin.Context, orders *services.OrderService) {
	list, err := orders.ListForUser(c.Request.Context(), middleware.ActorFrom(c).UserID, pageFromQuery(c))
	if err != nil {
		respondError(c, "查詢訂單列表失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "查詢訂單列表成功",
		"orders":     list.Orders,
		"pagination": pageInfo(list.Page, list.TotalCount),
	})
}

// 查詢訂單詳細資訊，管理員可查詢所有訂單
func GetOrderDataHandler(c *gin.Context, orders *services.OrderService) {
	orderID, ok := paramID(c, "orderID")
	if !ok {
		return
	}

	order, err := orders.Get(c.Request.Context(), middleware.ActorFrom(c), orderID)
	if err != nil {
		respondError(c, "查詢訂單資料失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "查詢訂單資料成功",
		"order":       order,
		"statusLabel": order.Status.Label(),
	})
}

// 上傳付款證明圖片
func UploadReceiptHandler(c *gin.Context, orders *services.OrderService, store *storage.Local) {
	orderID, ok := paramID(c, "orderID")
	if !ok {
		return
	}
	actor := middleware.ActorFrom(c)

	//先確認訂單存在且屬於使用者，避免留下無用的檔案
	if _, err := orders.Get(c.Request.Context(), actor, orderID); err != nil {
		respondError(c, "上傳付款證明失敗", err)
		return
	}

	file, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "請提供付款證明檔案",
			"error":   err.Error(),
		})
		return
	}
	ref, err := store.SaveImage(file, storage.Receipts)
	if err != nil {
		respondError(c, "上傳付款證明失敗", err)
		return
	}

	order, err := orders.AttachReceipt(c.Request.Context(), actor, orderID, ref)
	if err != nil {
		respondError(c, "上傳付款證明失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "上傳付款證明成功",
		"receipt": order.PaymentReceipt,
	})
}
