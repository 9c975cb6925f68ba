package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/middleware"
	"storefront/models"
	"storefront/services"
	"storefront/storage"
)

// 管理員儀表板，資料過期時仍回傳最後一次成功的資料並附上錯誤
func GetAdminDashboardHandler(c *gin.Context, dashboard *services.DashboardService) {
	stats, err := dashboard.AdminDashboard(c.Request.Context(), middleware.ActorFrom(c))
	if errors.Is(err, services.ErrStaleDashboard) && stats != nil {
		log.Printf("儀表板資料過期: %v\n", err)
		c.JSON(http.StatusOK, gin.H{
			"message": "儀表板資料可能已過期",
			"error":   err.Error(),
			"stats":   stats,
		})
		return
	}
	if err != nil {
		respondError(c, "查詢儀表板失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "查詢儀表板成功",
		"stats":   stats,
	})
}

// 上傳商品圖片
func UploadImageHandler(c *gin.Context, store *storage.Local) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "請提供圖片檔案",
			"error":   err.Error(),
		})
		return
	}

	imageURL, err := store.SaveImage(file, storage.ProductImages)
	if err != nil {
		respondError(c, "上傳圖片失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "上傳圖片成功",
		"imageURL": imageURL,
	})
}

// 查詢商品列表，包含下架商品
func GetAdminProductListHandler(c *gin.Context, catalog *services.CatalogService) {
	list, err := catalog.ListProducts(c.Request.Context(), middleware.ActorFrom(c), services.ProductFilter{
		CategorySlug:    c.Query("category"),
		Query:           c.Query("q"),
		IncludeInactive: true,
		Page:            pageFromQuery(c),
	})
	if err != nil {
		respondError(c, "查詢商品列表失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "查詢商品列表成功",
		"products":   list.Products,
		"pagination": pageInfo(list.Page, list.TotalCount),
	})
}

// 查詢商品完整資料
func GetProductAllDataHandler(c *gin.Context, catalog *services.CatalogService) {
	productID, ok := paramID(c, "productID")
	if !ok {
		return
	}

	product, err := catalog.GetProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, "查詢商品資料失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "查詢商品資料成功",
		"product": product,
	})
}

type createProductRequest struct {
	CategoryID  uint            `json:"categoryID" binding:"required"`
	Name        string          `json:"name" binding:"required,max=200"`
	Slug        string          `json:"slug" binding:"omitempty,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" binding:"min=0"`
	ImageURL    string          `json:"imageURL"`
	IsActive    *bool           `json:"isActive"`
}

// 新增商品
func CreateProductHandler(c *gin.Context, catalog *services.CatalogService) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	//未指定是否上架時預設上架
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product, err := catalog.CreateProduct(c.Request.Context(), middleware.ActorFrom(c), services.ProductInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		IsActive:    isActive,
	})
	if err != nil {
		respondError(c, "新增商品失敗", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "新增商品成功",
		"product": product,
	})
}

type updateProductRequest struct {
	CategoryID  *uint            `json:"categoryID"`
	Name        *string          `json:"name" binding:"omitempty,max=200"`
	Slug        *string          `json:"slug" binding:"omitempty,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	ImageURL    *string          `json:"imageURL"`
	IsActive    *bool            `json:"isActive"`
}

// 修改商品，只更新有提供的欄位
func UpdateProductHandler(c *gin.Context, catalog *services.CatalogService) {
	productID, ok := paramID(c, "productID")
	if !ok {
		return
	}
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := catalog.UpdateProduct(c.Request.Context(), middleware.ActorFrom(c), productID, services.ProductPatch{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondError(c, "修改商品失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "修改商品成功",
		"product": product,
	})
}

// 刪除商品
func DeleteProductHandler(c *gin.Context, catalog *services.CatalogService) {
	productID, ok := paramID(c, "productID")
	if !ok {
		return
	}

	if err := catalog.DeleteProduct(c.Request.Context(), middleware.ActorFrom(c), productID); err != nil {
		respondError(c, "刪除商品失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "刪除商品成功",
	})
}

type createCategoryRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	Slug      string `json:"slug" binding:"omitempty,max=100"`
	IconClass string `json:"iconClass" binding:"omitempty,max=50"`
}

// 新增商品分類
func CreateCategoryHandler(c *gin.Context, catalog *services.CatalogService) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := catalog.CreateCategory(c.Request.Context(), middleware.ActorFrom(c), services.CategoryInput{
		Name:      req.Name,
		Slug:      req.Slug,
		IconClass: req.IconClass,
	})
	if err != nil {
		respondError(c, "新增商品分類失敗", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "新增商品分類成功",
		"category": category,
	})
}

// 刪除商品分類，分類中仍有商品時無法刪除
func DeleteCategoryHandler(c *gin.Context, catalog *services.CatalogService) {
	categoryID, ok := paramID(c, "categoryID")
	if !ok {
		return
	}

	if err := catalog.DeleteCategory(c.Request.Context(), middleware.ActorFrom(c), categoryID); err != nil {
		respondError(c, "刪除商品分類失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "刪除商品分類成功",
	})
}

// 查詢所有訂單，可使用status與q篩選
func GetAdminOrderListHandler(c *gin.Context, orders *services.OrderService) {
	list, err := orders.AdminList(c.Request.Context(), middleware.ActorFrom(c), services.AdminOrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Query:  c.Query("q"),
		Page:   pageFromQuery(c),
	})
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

type updateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,order_status"`
}

// 更新訂單狀態
func UpdateOrderStatusHandler(c *gin.Context, orders *services.OrderService) {
	orderID, ok := paramID(c, "orderID")
	if !ok {
		return
	}
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := orders.UpdateStatus(c.Request.Context(), middleware.ActorFrom(c), orderID, req.Status)
	if err != nil {
		respondError(c, "更新訂單狀態失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "更新訂單狀態成功",
		"order":   order,
	})
}

// 批次操作名稱對應的目標狀態
var bulkActions = map[string]models.OrderStatus{
	"mark-paid":      models.OrderStatusPaid,
	"mark-shipped":   models.OrderStatusShipped,
	"mark-completed": models.OrderStatusCompleted,
	"mark-cancelled": models.OrderStatusCancelled,
}

type bulkOrderStatusRequest struct {
	OrderIDs []uint `json:"orderIDs" binding:"required,min=1"`
	Action   string `json:"action" binding:"required"`
}

// 批次更新訂單狀態，不合法的轉換會略過
func BulkUpdateOrderStatusHandler(c *gin.Context, orders *services.OrderService) {
	var req bulkOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	status, ok := bulkActions[req.Action]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "不支援的批次操作",
			"action":  req.Action,
		})
		return
	}

	result, err := orders.BulkUpdateStatus(c.Request.Context(), middleware.ActorFrom(c), req.OrderIDs, status)
	if err != nil {
		respondError(c, "批次更新訂單狀態失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "批次更新訂單狀態完成",
		"status":   result.Status,
		"updated":  result.Updated,
		"skipped":  result.Skipped,
		"notFound": result.NotFound,
	})
}
