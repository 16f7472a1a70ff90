package controllers

import (
	"strings"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/config"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/services"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/utils"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/websocket"

	"github.com/gin-gonic/gin"
)

// SaleController 销售/议价控制器
type SaleController struct {
	saleService *services.SaleService
}

// NewSaleController 创建销售控制器实例
func NewSaleController() *SaleController {
	return &SaleController{
		saleService: services.NewSaleService(config.DB),
	}
}

// NegotiateRequest 经销商出价请求
type NegotiateRequest struct {
	Price float64 `json:"price" binding:"required,gt=0"`
	Note  string  `json:"note" binding:"omitempty,max=1000"`
}

// DecisionRequest 经销商决定请求
type DecisionRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

// CounterOfferRequest 用户还价请求
// 价格作为字符串接收，由服务端解析校验。
type CounterOfferRequest struct {
	Price string `json:"price" binding:"required"`
}

// ConfirmSale 接受报价/确认成交
// @Summary 接受报价/确认成交
// @Description 卖家接受经销商报价并选择收款方式。qr方式需上传付款凭证，bank方式需填写银行信息
// @Tags sales
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param id path string true "车辆ID"
// @Success 200 {object} models.Bike
// @Router /api/bikes/confirm-sale/{id} [put]
func (sc *SaleController) ConfirmSale(c *gin.Context) {
	userID := c.GetString("user_id")
	bikeID := c.Param("id")

	req := &services.ConfirmSaleRequest{
		PaymentMethod: c.PostForm("payment_method"),
		BankDetails:   c.PostForm("bank_details"),
	}

	// JSON提交时从body读取
	if strings.Contains(c.GetHeader("Content-Type"), "application/json") {
		var body struct {
			PaymentMethod string `json:"payment_method"`
			BankDetails   string `json:"bank_details"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
		req.PaymentMethod = body.PaymentMethod
		req.BankDetails = body.BankDetails
	} else if _, err := c.FormFile("payment_proof"); err == nil {
		// qr方式的付款凭证
		uploader := utils.NewFileUploader()
		result, err := uploader.UploadFile(c, "payment_proof")
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
		req.PaymentProofURL = result.URL
	}

	bike, err := sc.saleService.ConfirmSale(bikeID, userID, req)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	sc.afterStatusChange(bike, "Sale confirmed, awaiting dealer completion")

	utils.SuccessWithMessage(c, "Sale confirmed", bike)
}

// CounterOffer 用户还价
// @Summary 用户还价
// @Description 卖家对经销商报价进行还价，之后进入countered只读等待
// @Tags sales
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "车辆ID"
// @Param request body CounterOfferRequest true "还价"
// @Success 200 {object} models.Bike
// @Router /api/bikes/counter-offer/{id} [put]
func (sc *SaleController) CounterOffer(c *gin.Context) {
	userID := c.GetString("user_id")
	bikeID := c.Param("id")

	var req CounterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	bike, err := sc.saleService.CounterOffer(bikeID, userID, req.Price)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	sc.afterStatusChange(bike, "Counter offer submitted")

	utils.SuccessWithMessage(c, "Counter offer submitted", bike)
}

// Negotiate 经销商出价
// @Summary 经销商出价
// @Description 经销商对出售车辆出价，进入议价状态
// @Tags sales
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "车辆ID"
// @Param request body NegotiateRequest true "出价信息"
// @Success 200 {object} models.Bike
// @Router /api/bikes/negotiate/{id} [put]
func (sc *SaleController) Negotiate(c *gin.Context) {
	bikeID := c.Param("id")

	var req NegotiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	bike, err := sc.saleService.Negotiate(bikeID, req.Price, req.Note)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	sc.afterStatusChange(bike, "Dealer has made an offer on your bike")

	utils.SuccessWithMessage(c, "Offer sent to seller", bike)
}

// Decision 经销商审核/响应还价
// @Summary 经销商决定
// @Description approve: 审核通过新发布，或接受用户还价；reject: 拒绝
// @Tags sales
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "车辆ID"
// @Param request body DecisionRequest true "决定"
// @Success 200 {object} models.Bike
// @Router /api/bikes/decision/{id} [put]
func (sc *SaleController) Decision(c *gin.Context) {
	bikeID := c.Param("id")

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	bike, err := sc.saleService.Decision(bikeID, req.Action)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	message := "Your listing has been updated"
	switch bike.Status {
	case models.StatusAvailable:
		message = "Your listing has been approved and is now live"
	case models.StatusApproved:
		message = "Dealer accepted your counter offer"
	case models.StatusRejected:
		message = "Your listing has been rejected"
	}
	sc.afterStatusChange(bike, message)

	utils.SuccessWithMessage(c, "Decision applied", bike)
}

// CompleteSale 经销商完成收购
// @Summary 完成收购
// @Description 用户确认后经销商完成收购，车辆进入purchased，收款记录标记为已到账
// @Tags sales
// @Produce json
// @Security Bearer
// @Param id path string true "车辆ID"
// @Success 200 {object} models.Bike
// @Router /api/bikes/complete-sale/{id} [put]
func (sc *SaleController) CompleteSale(c *gin.Context) {
	dealerID := c.GetString("user_id")
	bikeID := c.Param("id")

	bike, err := sc.saleService.CompleteSale(bikeID, dealerID)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	sc.afterStatusChange(bike, "Your bike has been purchased, payment marked as received")

	utils.SuccessWithMessage(c, "Sale completed", bike)
}

// GetSaleRequests 获取待处理的出售请求
// @Summary 获取出售请求
// @Description 经销商查看所有处于流程中的出售车辆
// @Tags sales
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]interface{}
// @Router /api/bikes/sale-requests [get]
func (sc *SaleController) GetSaleRequests(c *gin.Context) {
	bikes, err := sc.saleService.SaleRequests()
	if err != nil {
		utils.InternalError(c, "Failed to get sale requests")
		return
	}

	utils.Success(c, gin.H{"bikes": bikes})
}

// afterStatusChange 状态变更后的副作用：清缓存、推送卖家通知
func (sc *SaleController) afterStatusChange(bike *models.Bike, message string) {
	go func() {
		if config.RedisClient != nil {
			config.RedisClient.Del(ctx, "bike:"+bike.ID)
		}
	}()

	websocket.NotifyStatusChange(bike.SellerID, bike.ID, bike.Status, message)
}
