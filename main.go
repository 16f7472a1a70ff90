package main

import (
	"log"
	"os"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/config"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/middleware"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/routes"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/websocket"

	"github.com/joho/godotenv"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	//设置环境
	env := os.Getenv("GIN_MODE")
	if env == "" {
		os.Setenv("GIN_MODE", "debug")
	}

	// 初始化日志系统
	if err := middleware.InitLogger(env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer middleware.FlushLogger()

	// 初始化数据库
	if err := config.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer config.CloseDatabase()

	// 同步表结构
	if err := config.DB.AutoMigrate(
		&models.User{},
		&models.Bike{},
		&models.Booking{},
		&models.Exchange{},
		&models.Payment{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("✅ Database migrated successfully")

	// 初始化Redis（失败时降级为无缓存运行）
	if err := config.InitializeRedis(); err != nil {
		log.Printf("⚠️  Warning: Redis initialization failed: %v", err)
		log.Println("Continuing without Redis caching...")
	}
	defer config.CloseRedis()

	//初始化通知中心
	websocket.InitNotifyHub()
	defer websocket.CloseNotifyHub()

	// 设置路由
	r := config.SetupRouter()

	// 注册自定义路由
	routes.SetupRoutes(r)

	if err := config.StartServer(r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
