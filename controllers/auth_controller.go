package controllers

import (
	"net/http"
	"strings"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/services"

	"github.com/gin-gonic/gin"
)

// AuthController 认证控制器
type AuthController struct {
	authService *services.AuthService
}

// NewAuthController 创建认证控制器实例
func NewAuthController() *AuthController {
	return &AuthController{
		authService: services.NewAuthService(),
	}
}

// UpdatePasswordRequest 修改密码请求结构
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ForgotPasswordRequest 忘记密码请求结构
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest 重置密码请求结构
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 创建新用户账号
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.RegisterRequest true "注册信息"
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 40000, "message": err.Error()})
		return
	}

	user, token, err := ac.authService.Register(&req, c.ClientIP())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 40000, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    20000,
		"message": "Registration successful",
		"data": gin.H{
			"token": token,
			"user": gin.H{
				"id":       user.ID,
				"username": user.Username,
				"email":    user.Email,
				"role":     user.Role,
			},
		},
	})
}

// Login 用户登录
// @Summary 用户登录
// @Description 用户登录获取JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "登录信息"
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 40000, "message": err.Error()})
		return
	}

	user, token, err := ac.authService.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": 40100, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    20000,
		"message": "Login successful",
		"data": gin.H{
			"token": token,
			"user": gin.H{
				"id":       user.ID,
				"username": user.Username,
				"email":    user.Email,
				"avatar":   user.Avatar,
				"role":     user.Role,
			},
		},
	})
}

// RefreshToken 刷新token
// @Summary 刷新token
// @Description 刷新过期的JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/refresh [post]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	tokenString := extractBearerToken(c)
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"code": 40100, "message": "Authorization token is required"})
		return
	}

	newToken, userInfo, err := ac.authService.RefreshToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": 40100, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    20000,
		"message": "Token refreshed",
		"data": gin.H{
			"token": newToken,
			"user":  userInfo,
		},
	})
}

// Logout 用户登出
// @Summary 用户登出
// @Description 将当前token加入黑名单
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	tokenString := extractBearerToken(c)
	userID := c.GetString("user_id")

	if err := ac.authService.Logout(tokenString, userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 40000, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    20000,
		"message": "Logout successful",
	})
}

// UpdatePassword 修改密码
// @Summary 修改密码
// @Description 已登录用户修改自己的密码
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body UpdatePasswordRequest true "密码信息"
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/updatepassword [put]
func (ac *AuthController) UpdatePassword(c *gin.Context) {
	userID := c.GetString("user_id")

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 40000, "message": err.Error()})
		return
	}

	if err := ac.authService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 40000, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    20000,
		"message": "Password updated successfully",
	})
}

// ForgotPassword 忘记密码
// @Summary 忘记密码
// @Description 发送密码重置邮件
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "邮箱"
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/forgotpassword [post]
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 40000, "message": err.Error()})
		return
	}

	if err := ac.authService.SendPasswordResetToken(req.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 40000, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    20000,
		"message": "If an account exists for that email, a reset link has been sent",
	})
}

// ResetPassword 重置密码
// @Summary 重置密码
// @Description 通过邮件中的令牌重置密码
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "重置令牌"
// @Param request body ResetPasswordRequest true "新密码"
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/resetpassword/{token} [put]
func (ac *AuthController) ResetPassword(c *gin.Context) {
	token := c.Param("token")

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 40000, "message": err.Error()})
		return
	}

	if err := ac.authService.ResetPassword(token, req.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 40000, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    20000,
		"message": "Password has been reset successfully",
	})
}

// extractBearerToken 从Authorization头提取token
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
