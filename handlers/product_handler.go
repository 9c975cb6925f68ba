package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/middleware"
	"storefront/services"
)

// 首頁資料：精選商品、最新商品與分類
func GetHomeHandler(c *gin.Context, catalog *services.CatalogService) {
	home, err := catalog.Home(c.Request.Context())
	if err != nil {
		respondError(c, "查詢首頁資料失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "查詢首頁資料成功",
		"featured":    home.Featured,
		"newArrivals": home.NewArrivals,
		"categories":  home.Categories,
	})
}

// 查詢商品分類列表
func GetCategoryListHandler(c *gin.Context, catalog *services.CatalogService) {
	categories, err := catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, "查詢商品分類失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "查詢商品分類成功",
		"categories": categories,
	})
}

// 查詢商品分類與該分類的商品
func GetCategoryDataHandler(c *gin.Context, catalog *services.CatalogService) {
	category, err := catalog.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, "查詢商品分類失敗", err)
		return
	}

	list, err := catalog.ListProducts(c.Request.Context(), middleware.ActorFrom(c), services.ProductFilter{
		CategorySlug: category.Slug,
		Query:        c.Query("q"),
		Page:         pageFromQuery(c),
	})
	if err != nil {
		respondError(c, "查詢商品列表失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "查詢商品分類成功",
		"category":   category,
		"products":   list.Products,
		"pagination": pageInfo(list.Page, list.TotalCount),
	})
}

// 查詢商品列表，可使用category與q篩選
func GetProductListHandler(c *gin.Context, catalog *services.CatalogService) {
	list, err := catalog.ListProducts(c.Request.Context(), middleware.ActorFrom(c), services.ProductFilter{
		CategorySlug: c.Query("category"),
		Query:        c.Query("q"),
		Page:         pageFromQuery(c),
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

// 查詢商品詳細資料與相關商品
func GetProductDataHandler(c *gin.Context, catalog *services.CatalogService) {
	product, err := catalog.GetProductBySlug(c.Request.Context(), middleware.ActorFrom(c), c.Param("slug"))
	if err != nil {
		respondError(c, "查詢商品資料失敗", err)
		return
	}

	related, err := catalog.RelatedProducts(c.Request.Context(), product)
	if err != nil {
		respondError(c, "查詢相關商品失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "查詢商品資料成功",
		"product":  product,
		"inStock":  product.InStock(),
		"lowStock": product.LowStock(),
		"related":  related,
	})
}
