package routers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/handlers"
	"storefront/middleware"
	"storefront/services"
	"storefront/storage"
)

func SetupRouters(svc *services.Services, store *storage.Local) *gin.Engine {
	if err := handlers.RegisterValidations(); err != nil {
		log.Printf("無法註冊驗證規則: %v\n", err)
	}

	//建立Gin路由器
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Authorization")
		c.Next()
	})
	if err := router.SetTrustedProxies(nil); err != nil {
		log.Printf("無法設定信任代理: %v\n", err)
	}

	//設定上傳檔案靜態資源路徑
	router.Static(store.URLPrefix, store.Dir)

	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	////無須權限，使用中間件檢查是否登入
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(svc.Accounts))
	{
		//首頁資料
		api.GET("/home", func(context *gin.Context) {
			handlers.GetHomeHandler(context, svc.Catalog)
		})
		//查詢商品分類列表
		api.GET("/categories", func(context *gin.Context) {
			handlers.GetCategoryListHandler(context, svc.Catalog)
		})
		//查詢分類與分類商品
		api.GET("/categories/:slug", func(context *gin.Context) {
			handlers.GetCategoryDataHandler(context, svc.Catalog)
		})
		//查詢商品列表
		api.GET("/products", func(context *gin.Context) {
			handlers.GetProductListHandler(context, svc.Catalog)
		})
		//查詢商品詳細資料
		api.GET("/products/:slug", func(context *gin.Context) {
			handlers.GetProductDataHandler(context, svc.Catalog)
		})
		//註冊帳號
		api.POST("/register", func(context *gin.Context) {
			handlers.RegisterHandler(context, svc.Accounts)
		})
		//登入帳號
		api.POST("/login", func(context *gin.Context) {
			handlers.LoginHandler(context, svc.Accounts)
		})

		////需要登入，使用中間件檢查是否登入
		loginRequired := api.Group("/user")
		loginRequired.Use(middleware.CheckLoginMiddleware())
		{
			//查詢使用者資料
			loginRequired.GET("/profile", func(context *gin.Context) {
				handlers.GetUserProfileHandler(context, svc.Accounts)
			})
			//修改使用者資料
			loginRequired.PATCH("/profile", func(context *gin.Context) {
				handlers.UpdateUserProfileHandler(context, svc.Accounts)
			})
			//使用者儀表板
			loginRequired.GET("/dashboard", func(context *gin.Context) {
				handlers.GetCustomerDashboardHandler(context, svc.Dashboard)
			})
			//查詢購物車商品
			loginRequired.GET("/cart", func(context *gin.Context) {
				handlers.GetCartHandler(context, svc.Carts)
			})
			//新增商品至購物車
			loginRequired.POST("/cart/items", func(context *gin.Context) {
				handlers.AddToCartHandler(context, svc.Carts)
			})
			//更新購物車商品數量
			loginRequired.PATCH("/cart/items/:itemID", func(context *gin.Context) {
				handlers.UpdateCartItemQuantityHandler(context, svc.Carts)
			})
			//刪除購物車商品
			loginRequired.DELETE("/cart/items/:itemID", func(context *gin.Context) {
				handlers.DeleteCartItemHandler(context, svc.Carts)
			})
			//清除購物車商品
			loginRequired.DELETE("/cart", func(context *gin.Context) {
				handlers.ClearCartHandler(context, svc.Carts)
			})
			//結帳前預覽金額
			loginRequired.GET("/checkout", func(context *gin.Context) {
				handlers.CheckoutPreviewHandler(context, svc.Checkout)
			})
			//送出訂單並清空購物車
			loginRequired.POST("/orders", func(context *gin.Context) {
				handlers.SendOrderHandler(context, svc.Checkout)
			})
			//查詢訂單列表
			loginRequired.GET("/orders", func(context *gin.Context) {
				handlers.GetOrderListHandler(context, svc.Orders)
			})
			//查詢訂單詳細資訊
			loginRequired.GET("/orders/:orderID", func(context *gin.Context) {
				handlers.GetOrderDataHandler(context, svc.Orders)
			})
			//上傳付款證明
			loginRequired.POST("/orders/:orderID/receipt", func(context *gin.Context) {
				handlers.UploadReceiptHandler(context, svc.Orders, store)
			})
			//登出
			loginRequired.POST("/logout", func(context *gin.Context) {
				handlers.LogOutHandler(context, svc.Accounts)
			})
		}

		////需要admin身分，使用中間件檢查是否登入及admin權限
		adminRequired := api.Group("/admin")
		adminRequired.Use(middleware.CheckLoginMiddleware(), middleware.CheckAdminPermissionMiddleware())
		{
			//管理員儀表板
			adminRequired.GET("/dashboard", func(context *gin.Context) {
				handlers.GetAdminDashboardHandler(context, svc.Dashboard)
			})
			//查詢使用者列表
			adminRequired.GET("/users", func(context *gin.Context) {
				handlers.GetUserListHandler(context, svc.Accounts)
			})
			//變更使用者角色
			adminRequired.PATCH("/users/:userID/role", func(context *gin.Context) {
				handlers.SetUserRoleHandler(context, svc.Accounts)
			})
			//上傳商品圖片
			adminRequired.POST("/image", func(context *gin.Context) {
				handlers.UploadImageHandler(context, store)
			})
			//查詢商品列表(包含下架商品)
			adminRequired.GET("/products", func(context *gin.Context) {
				handlers.GetAdminProductListHandler(context, svc.Catalog)
			})
			//查詢商品完整資料
			adminRequired.GET("/products/:productID", func(context *gin.Context) {
				handlers.GetProductAllDataHandler(context, svc.Catalog)
			})
			//新增商品
			adminRequired.POST("/products", func(context *gin.Context) {
				handlers.CreateProductHandler(context, svc.Catalog)
			})
			//修改商品
			adminRequired.PATCH("/products/:productID", func(context *gin.Context) {
				handlers.UpdateProductHandler(context, svc.Catalog)
			})
			//刪除商品
			adminRequired.DELETE("/products/:productID", func(context *gin.Context) {
				handlers.DeleteProductHandler(context, svc.Catalog)
			})
			//新增商品分類
			adminRequired.POST("/categories", func(context *gin.Context) {
				handlers.CreateCategoryHandler(context, svc.Catalog)
			})
			//刪除商品分類
			adminRequired.DELETE("/categories/:categoryID", func(context *gin.Context) {
				handlers.DeleteCategoryHandler(context, svc.Catalog)
			})
			//查詢所有訂單
			adminRequired.GET("/orders", func(context *gin.Context) {
				handlers.GetAdminOrderListHandler(context, svc.Orders)
			})
			//查詢訂單詳細資訊
			adminRequired.GET("/orders/:orderID", func(context *gin.Context) {
				handlers.GetOrderDataHandler(context, svc.Orders)
			})
			//更新訂單狀態
			adminRequired.PATCH("/orders/:orderID/status", func(context *gin.Context) {
				handlers.UpdateOrderStatusHandler(context, svc.Orders)
			})
			//批次更新訂單狀態
			adminRequired.POST("/orders/bulk-status", func(context *gin.Context) {
				handlers.BulkUpdateOrderStatusHandler(context, svc.Orders)
			})
		}
	}

	return router
}
