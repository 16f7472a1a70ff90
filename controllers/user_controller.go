package controllers

import (
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/config"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/utils"

	"github.com/gin-gonic/gin"
)

// UserController 用户控制器
type UserController struct{}

// NewUserController 创建用户控制器实例
func NewUserController() *UserController {
	return &UserController{}
}

// UpdateProfileRequest 更新资料请求结构
type UpdateProfileRequest struct {
	Username string `json:"username" binding:"omitempty,min=3,max=50"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	Bio      string `json:"bio" binding:"omitempty,max=500"`
}

// GetProfile 获取当前用户资料
// @Summary 获取当前用户资料
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} models.User
// @Router /api/users/profile [get]
func (uc *UserController) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	utils.Success(c, user)
}

// UpdateProfile 更新当前用户资料
// @Summary 更新当前用户资料
// @Tags users
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body UpdateProfileRequest true "资料"
// @Success 200 {object} models.User
// @Router /api/users/profile [put]
func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Username != "" && req.Username != user.Username {
		// 用户名唯一性检查
		var existing models.User
		if err := config.DB.Where("username = ? AND id != ?", req.Username, userID).First(&existing).Error; err == nil {
			utils.BadRequest(c, "Username already exists")
			return
		}
		updates["username"] = req.Username
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Bio != "" {
		updates["bio"] = utils.SanitizeString(req.Bio)
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
			utils.InternalError(c, "Failed to update profile")
			return
		}
	}

	config.DB.First(&user, "id = ?", userID)
	utils.Success(c, user)
}

// UploadAvatar 上传头像
// @Summary 上传头像
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]interface{}
// @Router /api/users/avatar [post]
func (uc *UserController) UploadAvatar(c *gin.Context) {
	userID := c.GetString("user_id")

	uploader := utils.NewFileUploader()
	result, err := uploader.UploadFile(c, "avatar")
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := config.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("avatar", result.URL).Error; err != nil {
		utils.InternalError(c, "Failed to update avatar")
		return
	}

	utils.SuccessWithMessage(c, "Avatar updated", gin.H{"avatar": result.URL})
}
