package controllers

import (
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/config"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/services"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/utils"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/websocket"

	"github.com/gin-gonic/gin"
)

// PaymentController 收款控制器
type PaymentController struct {
	paymentService *services.PaymentService
}

// NewPaymentController 创建收款控制器实例
func NewPaymentController() *PaymentController {
	return &PaymentController{
		paymentService: services.NewPaymentService(config.DB),
	}
}

// GetMyPayments 获取我的收款汇总
// @Summary 获取我的收款汇总
// @Description 卖家收款视图：总额、待收、已收、按方式分桶及明细
// @Tags payments
// @Produce json
// @Security Bearer
// @Success 200 {object} services.PaymentSummary
// @Router /api/payments/my [get]
func (pc *PaymentController) GetMyPayments(c *gin.Context) {
	userID := c.GetString("user_id")

	summary, err := pc.paymentService.SellerSummary(userID)
	if err != nil {
		utils.InternalError(c, "Failed to get payments")
		return
	}

	utils.Success(c, summary)
}

// MarkReceived 标记收款到账
// @Summary 标记收款到账
// @Description 卖家确认某笔收款已到账
// @Tags payments
// @Produce json
// @Security Bearer
// @Param id path string true "收款记录ID"
// @Success 200 {object} models.Payment
// @Router /api/payments/received/{id} [put]
func (pc *PaymentController) MarkReceived(c *gin.Context) {
	userID := c.GetString("user_id")
	paymentID := c.Param("id")

	payment, err := pc.paymentService.MarkReceived(paymentID, userID)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	websocket.NotifyUser(payment.SellerID, &websocket.Notification{
		Type:    "payment",
		Status:  payment.Status,
		Message: "Payment marked as received",
		Data:    gin.H{"payment_id": payment.ID, "amount": payment.Amount},
	})

	utils.SuccessWithMessage(c, "Payment updated", payment)
}
