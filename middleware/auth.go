package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/config"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware JWT认证中间件
// 验证通过后向Context注入 user_id / username / email / role
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 40100, "message": "Authorization header required"})
			c.Abort()
			return
		}

		// 解析 Bearer Token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 40100, "message": "Invalid authorization format, expected Bearer {token}"})
			c.Abort()
			return
		}
		tokenString := parts[1]

		// 检查token是否在黑名单中（登出后的token）
		if config.RedisClient != nil {
			blacklistKey := fmt.Sprintf("token:blacklist:%s", tokenString)
			exists, _ := config.RedisClient.Exists(context.Background(), blacklistKey).Result()
			if exists > 0 {
				c.JSON(http.StatusUnauthorized, gin.H{"code": 40100, "message": "Token has been revoked"})
				c.Abort()
				return
			}
		}

		claims, err := config.GetJWTService().ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 40100, "message": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 注入用户信息到 Context
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// DealerOnly 经销商权限校验中间件（需先通过AuthMiddleware）
func DealerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleDealer {
			c.JSON(http.StatusForbidden, gin.H{"code": 40300, "message": "Dealer access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
