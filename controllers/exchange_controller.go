package controllers

import (
	"strconv"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/config"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/services"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/utils"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/websocket"

	"github.com/gin-gonic/gin"
)

// ExchangeController 置换控制器
type ExchangeController struct {
	exchangeService *services.ExchangeService
}

// NewExchangeController 创建置换控制器实例
func NewExchangeController() *ExchangeController {
	return &ExchangeController{
		exchangeService: services.NewExchangeService(config.DB),
	}
}

// SetValuationRequest 经销商估值请求
type SetValuationRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// DecideRequest 用户决定请求
type DecideRequest struct {
	Proceed bool `json:"proceed"`
}

// CreateExchange 发起置换申请
// @Summary 发起置换申请
// @Description 提交旧车信息换取估值。四张凭证照片（行驶证、铭牌、整车、里程表）可不传，传则必须齐全
// @Tags exchanges
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Success 200 {object} models.Exchange
// @Router /api/exchange [post]
func (ec *ExchangeController) CreateExchange(c *gin.Context) {
	userID := c.GetString("user_id")

	year, _ := strconv.Atoi(c.PostForm("year"))
	engineCC, _ := strconv.Atoi(c.PostForm("engine_cc"))
	mileage, _ := strconv.Atoi(c.PostForm("mileage"))

	req := &services.ExchangeRequest{
		BikeID:    c.PostForm("bike_id"),
		Name:      c.PostForm("name"),
		Brand:     c.PostForm("brand"),
		Year:      year,
		EngineCC:  engineCC,
		Mileage:   mileage,
		Condition: c.PostForm("condition"),
	}

	v := utils.NewValidator()
	if err := v.Validate(req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	photos := &services.ExchangePhotos{}
	uploader := utils.NewFileUploader()
	fields := map[string]*string{
		"blue_book_photo": &photos.BlueBook,
		"model_photo":     &photos.Model,
		"full_bike_photo": &photos.FullBike,
		"odometer_photo":  &photos.Odometer,
	}
	for field, target := range fields {
		if _, err := c.FormFile(field); err != nil {
			continue
		}
		result, err := uploader.UploadFile(c, field)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
		*target = result.URL
	}

	exchange, err := ec.exchangeService.CreateExchange(userID, req, photos)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	utils.SuccessWithMessage(c, "Exchange request created", exchange)
}

// SetValuation 经销商人工估值
// @Summary 经销商估值
// @Description 经销商覆盖服务端估算的置换估值
// @Tags exchanges
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "置换申请ID"
// @Param request body SetValuationRequest true "估值"
// @Success 200 {object} models.Exchange
// @Router /api/exchange/valuation/{id} [put]
func (ec *ExchangeController) SetValuation(c *gin.Context) {
	exchangeID := c.Param("id")

	var req SetValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	exchange, err := ec.exchangeService.SetValuation(exchangeID, req.Amount)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	websocket.NotifyUser(exchange.UserID, &websocket.Notification{
		Type:    "exchange",
		Status:  exchange.Status,
		Message: "Your exchange request has been valued",
		Data:    gin.H{"exchange_id": exchange.ID, "valuation": exchange.Valuation},
	})

	utils.SuccessWithMessage(c, "Valuation updated", exchange)
}

// Decide 用户对估值做决定
// @Summary 用户决定
// @Description proceed=true接受估值并从目标车辆价格中抵扣，false放弃置换
// @Tags exchanges
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "置换申请ID"
// @Param request body DecideRequest true "决定"
// @Success 200 {object} models.Exchange
// @Router /api/exchange/decide/{id} [put]
func (ec *ExchangeController) Decide(c *gin.Context) {
	userID := c.GetString("user_id")
	exchangeID := c.Param("id")

	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	exchange, err := ec.exchangeService.Decide(exchangeID, userID, req.Proceed)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	// 抵扣生效后目标车辆价格已变，清掉详情缓存
	if exchange.BikeID != "" {
		go func(bikeID string) {
			if config.RedisClient != nil {
				config.RedisClient.Del(ctx, "bike:"+bikeID)
			}
		}(exchange.BikeID)
	}

	utils.SuccessWithMessage(c, "Exchange decision saved", exchange)
}

// GetMyExchanges 获取我的置换申请
// @Summary 获取我的置换申请
// @Tags exchanges
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]interface{}
// @Router /api/exchange/my [get]
func (ec *ExchangeController) GetMyExchanges(c *gin.Context) {
	userID := c.GetString("user_id")

	exchanges, err := ec.exchangeService.MyExchanges(userID)
	if err != nil {
		utils.InternalError(c, "Failed to get exchange requests")
		return
	}

	utils.Success(c, gin.H{"exchanges": exchanges})
}

// GetPendingExchanges 获取待处理置换申请
// @Summary 获取待处理置换申请
// @Description 经销商查看待估值/待用户决定的置换申请
// @Tags exchanges
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]interface{}
// @Router /api/exchange/pending [get]
func (ec *ExchangeController) GetPendingExchanges(c *gin.Context) {
	exchanges, err := ec.exchangeService.PendingExchanges()
	if err != nil {
		utils.InternalError(c, "Failed to get pending exchanges")
		return
	}

	utils.Success(c, gin.H{"exchanges": exchanges})
}
