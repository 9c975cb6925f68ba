package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/middleware"
	"storefront/models"
	"storefront/services"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	Phone    string `json:"phone" binding:"max=15"`
	Address  string `json:"address"`
}

// 註冊使用者帳戶
func RegisterHandler(c *gin.Context, accounts *services.AccountService) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := accounts.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondError(c, "註冊失敗", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "註冊成功",
		"user":    user,
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// 登入帳號
func LoginHandler(c *gin.Context, accounts *services.AccountService) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, "登入失敗:帳號或密碼錯誤", err)
		return
	}

	c.Header("Authorization", "Bearer "+session.Token)
	c.JSON(http.StatusOK, gin.H{
		"message":   "登入成功",
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      session.User,
	})
}

// 登出，刪除目前使用的Token
func LogOutHandler(c *gin.Context, accounts *services.AccountService) {
	token := c.GetString(middleware.TokenKey)
	if err := accounts.Logout(c.Request.Context(), token); err != nil {
		respondError(c, "登出失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "登出成功",
	})
}

// 查詢使用者資料
func GetUserProfileHandler(c *gin.Context, accounts *services.AccountService) {
	actor := middleware.ActorFrom(c)
	user, err := accounts.Profile(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, "查詢使用者資料失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "查詢使用者資料成功",
		"user":    user,
	})
}

type updateProfileRequest struct {
	Email       string  `json:"email"`
	OldPassword string  `json:"oldPassword" binding:"required"`
	NewPassword string  `json:"newPassword"`
	Name        *string `json:"name"`
	Phone       *string `json:"phone" binding:"omitempty,max=15"`
	Address     *string `json:"address"`
}

// 修改使用者資料，角色無法透過此API變更
func UpdateUserProfileHandler(c *gin.Context, accounts *services.AccountService) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	actor := middleware.ActorFrom(c)
	user, err := accounts.UpdateProfile(c.Request.Context(), actor.UserID, services.ProfilePatch{
		Email:       req.Email,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
		Name:        req.Name,
		Phone:       req.Phone,
		Address:     req.Address,
	})
	if err != nil {
		respondError(c, "修改使用者資料失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "修改使用者資料成功",
		"user":    user,
	})
}

// 使用者儀表板
func GetCustomerDashboardHandler(c *gin.Context, dashboard *services.DashboardService) {
	actor := middleware.ActorFrom(c)
	stats, err := dashboard.CustomerDashboard(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, "查詢儀表板失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "查詢儀表板成功",
		"stats":   stats,
	})
}

// 查詢使用者列表
func GetUserListHandler(c *gin.Context, accounts *services.AccountService) {
	users, total, err := accounts.ListUsers(c.Request.Context(), middleware.ActorFrom(c), pageFromQuery(c))
	if err != nil {
		respondError(c, "無法獲取使用者列表", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "成功獲取使用者列表",
		"userList":   users,
		"totalCount": total,
	})
}

type setRoleRequest struct {
	Role models.Role `json:"role" binding:"required,role"`
}

// 變更使用者角色
func SetUserRoleHandler(c *gin.Context, accounts *services.AccountService) {
	userID, ok := paramID(c, "userID")
	if !ok {
		return
	}
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := accounts.SetRole(c.Request.Context(), middleware.ActorFrom(c), userID, req.Role)
	if err != nil {
		respondError(c, "變更使用者角色失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "變更使用者角色成功",
		"user":    user,
	})
}
