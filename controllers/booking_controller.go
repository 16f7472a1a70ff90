package controllers

import (
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/config"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/services"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/utils"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/websocket"

	"github.com/gin-gonic/gin"
)

// BookingController 租赁控制器
type BookingController struct {
	bookingService *services.BookingService
}

// NewBookingController 创建租赁控制器实例
func NewBookingController() *BookingController {
	return &BookingController{
		bookingService: services.NewBookingService(config.DB),
	}
}

// RentBike 租车
// @Summary 租车
// @Description 按daily/weekly计划租车，总价=单价×计划系数×时长+配送费
// @Tags bookings
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "车辆ID"
// @Param request body services.RentRequest true "租赁信息"
// @Success 200 {object} models.Booking
// @Router /api/bikes/rent/{id} [put]
func (bc *BookingController) RentBike(c *gin.Context) {
	userID := c.GetString("user_id")
	bikeID := c.Param("id")

	var req services.RentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	booking, err := bc.bookingService.RentBike(bikeID, userID, &req)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	// 清详情缓存并通知卖家
	go func() {
		if config.RedisClient != nil {
			config.RedisClient.Del(ctx, "bike:"+bikeID)
		}
	}()
	websocket.NotifyStatusChange(booking.Bike.SellerID, bikeID, booking.Bike.Status, "Your bike has been rented")

	utils.SuccessWithMessage(c, "Bike rented successfully", booking)
}

// GetMyBookings 获取我的租赁记录
// @Summary 获取我的租赁记录
// @Description 当前用户的所有租赁订单
// @Tags bookings
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]interface{}
// @Router /api/bookings/my [get]
func (bc *BookingController) GetMyBookings(c *gin.Context) {
	userID := c.GetString("user_id")

	bookings, err := bc.bookingService.MyBookings(userID)
	if err != nil {
		utils.InternalError(c, "Failed to get bookings")
		return
	}

	utils.Success(c, gin.H{"bookings": bookings})
}
