package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisClient 全局 Redis 客户端实例
var RedisClient *redis.Client

// InitializeRedis 初始化 Redis 客户端
func InitializeRedis() error {
	redisAddr := GetEnv("REDIS_ADDR", "localhost:6379")
	redisPassword := GetEnv("REDIS_PASSWORD", "")
	redisDB := GetEnvInt("REDIS_DB", 0)

	// 创建Redis客户端
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		Password:     redisPassword,
		DB:           redisDB,
		PoolSize:     10,              // 连接池大小
		MinIdleConns: 5,               // 最小空闲连接
		MaxRetries:   3,               // 最大重试次数
		DialTimeout:  5 * time.Second, // 连接超时
		ReadTimeout:  3 * time.Second, // 读取超时
		WriteTimeout: 3 * time.Second, // 写入超时
		PoolTimeout:  4 * time.Second, // 从连接池获取连接的超时
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := RedisClient.Ping(ctx).Err(); err != nil {
		RedisClient = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("✅ Redis client initialized successfully")
	return nil
}

// CloseRedis 关闭 Redis 连接
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// GetRedisClient 获取Redis客户端实例（供其他包使用）
func GetRedisClient() *redis.Client {
	return RedisClient
}

// ServerConfig 服务器配置结构
type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

// GetServerConfig 获取服务器配置
func GetServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:         GetEnv("SERVER_PORT", "8080"),
		Mode:         GetEnv("GIN_MODE", "debug"),
		ReadTimeout:  30,
		WriteTimeout: 30,
	}
}

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	serverConfig := GetServerConfig()

	// 根据环境设置Gin模式
	gin.SetMode(serverConfig.Mode)

	// 创建Gin实例
	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery()) // 恢复panic

	// 上传目录静态服务（摩托车图片、付款凭证）
	r.Static("/uploads", "./uploads")

	// 健康检查端点（包括数据库和Redis状态）
	r.GET("/health", func(c *gin.Context) {
		health := gin.H{
			"status":  "ok",
			"message": "Server is running",
		}

		// 检查数据库状态
		if DB != nil {
			sqlDB, err := DB.DB()
			if err == nil {
				if err := sqlDB.Ping(); err == nil {
					health["database"] = "connected"
				} else {
					health["database"] = "disconnected"
				}
			} else {
				health["database"] = "error"
			}
		} else {
			health["database"] = "not initialized"
		}

		// 检查Redis状态
		if RedisClient != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := RedisClient.Ping(ctx).Err(); err == nil {
				health["redis"] = "connected"
			} else {
				health["redis"] = "disconnected"
			}
		} else {
			health["redis"] = "not initialized"
		}

		c.JSON(200, health)
	})

	return r
}

// StartServer 启动服务器
func StartServer(r *gin.Engine) error {
	serverConfig := GetServerConfig()

	addr := fmt.Sprintf(":%s", serverConfig.Port)
	log.Printf("🏍️  RIDEHUB server starting on port %s in %s mode", serverConfig.Port, serverConfig.Mode)
	log.Printf("❤️  Health check: http://localhost%s/health", addr)

	if err := r.Run(addr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
