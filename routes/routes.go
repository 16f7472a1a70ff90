package routes

import (
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/controllers"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/middleware"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/websocket"

	"github.com/gin-gonic/gin"
)

// SetupRoutes 设置路由
func SetupRoutes(r *gin.Engine) {
	// 应用全局中间件
	r.Use(middleware.CORS())
	r.Use(middleware.Logger())

	authController := controllers.NewAuthController()
	userController := controllers.NewUserController()
	bikeController := controllers.NewBikeController()
	saleController := controllers.NewSaleController()
	bookingController := controllers.NewBookingController()
	exchangeController := controllers.NewExchangeController()
	paymentController := controllers.NewPaymentController()

	api := r.Group("/api")
	{
		// ====== 认证路由 ======
		auth := api.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.POST("/refresh", authController.RefreshToken)
			auth.POST("/logout", middleware.AuthMiddleware(), authController.Logout)
			auth.PUT("/updatepassword", middleware.AuthMiddleware(), authController.UpdatePassword)
			auth.POST("/forgotpassword", authController.ForgotPassword)
			auth.PUT("/resetpassword/:token", authController.ResetPassword)
		}

		// ====== 用户路由 ======
		users := api.Group("/users")
		{
			users.GET("/profile", middleware.AuthMiddleware(), userController.GetProfile)
			users.PUT("/profile", middleware.AuthMiddleware(), userController.UpdateProfile)
			users.POST("/avatar", middleware.AuthMiddleware(), userController.UploadAvatar)
		}

		// ====== 车辆路由 ======
		bikes := api.Group("/bikes")
		{
			bikes.GET("", bikeController.GetBikes)
			bikes.GET("/brands", bikeController.GetBrands)
			bikes.GET("/my-listings", middleware.AuthMiddleware(), bikeController.GetMyListings)
			bikes.GET("/sale-requests", middleware.AuthMiddleware(), middleware.DealerOnly(), saleController.GetSaleRequests)
			bikes.GET("/:id", bikeController.GetBike)
			bikes.POST("", middleware.AuthMiddleware(), bikeController.CreateBike)
			bikes.PUT("/:id", middleware.AuthMiddleware(), bikeController.UpdateBike)
			bikes.DELETE("/:id", middleware.AuthMiddleware(), bikeController.DeleteBike)

			// 租赁
			bikes.PUT("/rent/:id", middleware.AuthMiddleware(), bookingController.RentBike)

			// 出售议价流程
			bikes.PUT("/confirm-sale/:id", middleware.AuthMiddleware(), saleController.ConfirmSale)
			bikes.PUT("/counter-offer/:id", middleware.AuthMiddleware(), saleController.CounterOffer)
			bikes.PUT("/negotiate/:id", middleware.AuthMiddleware(), middleware.DealerOnly(), saleController.Negotiate)
			bikes.PUT("/decision/:id", middleware.AuthMiddleware(), middleware.DealerOnly(), saleController.Decision)
			bikes.PUT("/complete-sale/:id", middleware.AuthMiddleware(), middleware.DealerOnly(), saleController.CompleteSale)
		}

		// ====== 租赁订单路由 ======
		bookings := api.Group("/bookings")
		{
			bookings.GET("/my", middleware.AuthMiddleware(), bookingController.GetMyBookings)
		}

		// ====== 置换路由 ======
		exchange := api.Group("/exchange")
		{
			exchange.POST("", middleware.AuthMiddleware(), exchangeController.CreateExchange)
			exchange.GET("/my", middleware.AuthMiddleware(), exchangeController.GetMyExchanges)
			exchange.GET("/pending", middleware.AuthMiddleware(), middleware.DealerOnly(), exchangeController.GetPendingExchanges)
			exchange.PUT("/valuation/:id", middleware.AuthMiddleware(), middleware.DealerOnly(), exchangeController.SetValuation)
			exchange.PUT("/decide/:id", middleware.AuthMiddleware(), exchangeController.Decide)
		}

		// ====== 收款路由 ======
		payments := api.Group("/payments")
		{
			payments.GET("/my", middleware.AuthMiddleware(), paymentController.GetMyPayments)
			payments.PUT("/received/:id", middleware.AuthMiddleware(), paymentController.MarkReceived)
		}
	}

	// ====== WebSocket路由 ======
	r.GET("/ws", websocket.HandleConnection)
}
