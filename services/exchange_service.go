package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"

	"gorm.io/gorm"
)

// ExchangeService 置换（以旧换新）服务
// 估值在服务端计算，客户端只拿到结果数字。
type ExchangeService struct {
	db *gorm.DB
}

// NewExchangeService 创建置换服务实例
func NewExchangeService(db *gorm.DB) *ExchangeService {
	return &ExchangeService{db: db}
}

// ExchangeRequest 置换申请
type ExchangeRequest struct {
	BikeID    string `json:"bike_id"` // 抵扣目标车辆，可空
	Name      string `json:"name" binding:"required,max=200"`
	Brand     string `json:"brand" binding:"max=100"`
	Year      int    `json:"year" binding:"required,modelyear"`
	EngineCC  int    `json:"engine_cc" binding:"required,gt=0"`
	Mileage   int    `json:"mileage" binding:"gte=0"`
	Condition string `json:"condition" binding:"required,oneof=Excellent Good Fair Poor"`
}

// ExchangePhotos 四张凭证照片的URL
type ExchangePhotos struct {
	BlueBook string
	Model    string
	FullBike string
	Odometer string
}

// count 已提供的照片数量
func (p *ExchangePhotos) count() int {
	n := 0
	for _, url := range []string{p.BlueBook, p.Model, p.FullBike, p.Odometer} {
		if url != "" {
			n++
		}
	}
	return n
}

// Complete 四张是否齐全
func (p *ExchangePhotos) Complete() bool {
	return p.count() == 4
}

// ValidatePhotoSet 校验凭证照片组合
// 照片可以不传（简化流程），但一旦传就必须四张齐全。
func ValidatePhotoSet(p *ExchangePhotos) error {
	n := p.count()
	if n != 0 && n != 4 {
		return errors.New("photo evidence requires all four photos: blue book, model plate, full bike and odometer")
	}
	return nil
}

// 成色系数
var conditionFactors = map[string]float64{
	"Excellent": 1.0,
	"Good":      0.85,
	"Fair":      0.65,
	"Poor":      0.45,
}

// EstimateValuation 服务端估值
// 以排量为基准价，按车龄逐年折旧、里程线性折损、成色缩放，下限为基准价的5%。
func EstimateValuation(year, engineCC, mileage int, condition string) float64 {
	base := float64(engineCC) * 2.0

	age := time.Now().Year() - year
	if age < 0 {
		age = 0
	}
	if age > 30 {
		age = 30
	}
	ageFactor := math.Pow(0.92, float64(age))

	km := float64(mileage)
	if km > 200000 {
		km = 200000
	}
	mileageFactor := 1 - km/200000*0.6

	condFactor, ok := conditionFactors[condition]
	if !ok {
		condFactor = 0.6
	}

	value := base * ageFactor * mileageFactor * condFactor
	if floor := base * 0.05; value < floor {
		value = floor
	}

	return math.Round(value*100) / 100
}

// CreateExchange 创建置换申请并立即估值
func (s *ExchangeService) CreateExchange(userID string, req *ExchangeRequest, photos *ExchangePhotos) (*models.Exchange, error) {
	if photos == nil {
		photos = &ExchangePhotos{}
	}
	if err := ValidatePhotoSet(photos); err != nil {
		return nil, err
	}

	// 抵扣目标必须是在售的sale车辆
	if req.BikeID != "" {
		var bike models.Bike
		if err := s.db.First(&bike, "id = ?", req.BikeID).Error; err != nil {
			return nil, errors.New("target bike not found")
		}
		if bike.ListingType != models.ListingTypeSale {
			return nil, errors.New("exchange value can only be applied to a sale listing")
		}
		if bike.IsTerminal() {
			return nil, errors.New("target bike is no longer available")
		}
	}

	exchange := models.Exchange{
		UserID:        userID,
		BikeID:        req.BikeID,
		Name:          strings.TrimSpace(req.Name),
		Brand:         req.Brand,
		Year:          req.Year,
		EngineCC:      req.EngineCC,
		Mileage:       req.Mileage,
		Condition:     req.Condition,
		BlueBookPhoto: photos.BlueBook,
		ModelPhoto:    photos.Model,
		FullBikePhoto: photos.FullBike,
		OdometerPhoto: photos.Odometer,
		Verified:      photos.Complete(),
		Valuation:     EstimateValuation(req.Year, req.EngineCC, req.Mileage, req.Condition),
		Status:        models.ExchangeValued,
	}

	if err := s.db.Create(&exchange).Error; err != nil {
		return nil, fmt.Errorf("failed to create exchange request: %w", err)
	}

	return &exchange, nil
}

// SetValuation 经销商人工估值（覆盖服务端估算）
func (s *ExchangeService) SetValuation(exchangeID string, amount float64) (*models.Exchange, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, errors.New("valuation must be a positive number")
	}

	var exchange models.Exchange
	if err := s.db.First(&exchange, "id = ?", exchangeID).Error; err != nil {
		return nil, errors.New("exchange request not found")
	}

	if exchange.Status != models.ExchangePending && exchange.Status != models.ExchangeValued {
		return nil, fmt.Errorf("valuation cannot be changed once the request is %s", exchange.Status)
	}

	updates := map[string]interface{}{
		"valuation": amount,
		"status":    models.ExchangeValued,
	}
	if err := s.db.Model(&exchange).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to set valuation: %w", err)
	}

	s.db.First(&exchange, "id = ?", exchange.ID)
	return &exchange, nil
}

// Decide 用户对估值的最终决定
// proceed=true时将估值从目标车辆价格中抵扣；false则放弃置换。
func (s *ExchangeService) Decide(exchangeID, userID string, proceed bool) (*models.Exchange, error) {
	var exchange models.Exchange
	if err := s.db.First(&exchange, "id = ?", exchangeID).Error; err != nil {
		return nil, errors.New("exchange request not found")
	}

	if exchange.UserID != userID {
		return nil, errors.New("you don't have permission to act on this exchange request")
	}
	if exchange.Status != models.ExchangeValued {
		return nil, fmt.Errorf("no decision is available while the request is %s", exchange.Status)
	}

	if !proceed {
		if err := s.db.Model(&exchange).Update("status", models.ExchangeDeclined).Error; err != nil {
			return nil, fmt.Errorf("failed to decline exchange: %w", err)
		}
		s.db.First(&exchange, "id = ?", exchange.ID)
		return &exchange, nil
	}

	// 接受：抵扣目标车辆价格
	if exchange.BikeID != "" {
		var bike models.Bike
		if err := s.db.First(&bike, "id = ?", exchange.BikeID).Error; err != nil {
			return nil, errors.New("target bike not found")
		}
		if bike.IsTerminal() {
			return nil, errors.New("target bike is no longer available")
		}

		newPrice := bike.Price - exchange.Valuation
		if newPrice < 0 {
			newPrice = 0
		}
		updates := map[string]interface{}{
			"price":          newPrice,
			"is_exchange":    true,
			"exchange_value": exchange.Valuation,
		}
		if err := s.db.Model(&bike).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to apply exchange value: %w", err)
		}
	}

	if err := s.db.Model(&exchange).Update("status", models.ExchangeAccepted).Error; err != nil {
		return nil, fmt.Errorf("failed to accept exchange: %w", err)
	}

	s.db.First(&exchange, "id = ?", exchange.ID)
	return &exchange, nil
}

// MyExchanges 当前用户的置换申请
func (s *ExchangeService) MyExchanges(userID string) ([]models.Exchange, error) {
	var exchanges []models.Exchange
	err := s.db.
		Preload("Bike").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&exchanges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange requests: %w", err)
	}
	return exchanges, nil
}

// PendingExchanges 经销商待估值列表
func (s *ExchangeService) PendingExchanges() ([]models.Exchange, error) {
	var exchanges []models.Exchange
	err := s.db.
		Preload("User").
		Preload("Bike").
		Where("status IN ?", []string{models.ExchangePending, models.ExchangeValued}).
		Order("created_at ASC").
		Find(&exchanges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pending exchanges: %w", err)
	}
	return exchanges, nil
}
