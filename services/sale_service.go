package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"

	"gorm.io/gorm"
)

// 用户侧可用动作（Decision Center按钮）
const (
	ActionAccept  = "accept"  // 接受经销商出价（选择付款方式）
	ActionCounter = "counter" // 还价
	ActionConfirm = "confirm" // approved后确认成交
)

// SaleService 出售/议价流程服务
// 状态流转全部在这里完成，controller不直接写status。
type SaleService struct {
	db *gorm.DB
}

// NewSaleService 创建出售流程服务实例
func NewSaleService(db *gorm.DB) *SaleService {
	return &SaleService{db: db}
}

// ConfirmSaleRequest 接受/确认成交请求
type ConfirmSaleRequest struct {
	PaymentMethod   string // cash / qr / bank
	BankDetails     string // bank方式必填
	PaymentProofURL string // qr方式必填（已上传凭证的URL）
}

// AvailableActions 根据当前状态返回用户可执行的动作
// countered没有任何用户动作：只读等待经销商响应。
func AvailableActions(b *models.Bike) []string {
	switch b.Status {
	case models.StatusNegotiating:
		return []string{ActionAccept, ActionCounter}
	case models.StatusApproved:
		if !b.UserConfirmed {
			return []string{ActionConfirm}
		}
		return []string{}
	default:
		return []string{}
	}
}

// ValidatePaymentSelection 校验付款方式组合
// qr必须带凭证图片，bank必须带账户信息，cash不需要额外输入。
func ValidatePaymentSelection(method, proofURL, bankDetails string) error {
	switch method {
	case models.PaymentCash:
		return nil
	case models.PaymentQR:
		if proofURL == "" {
			return errors.New("QR payment requires an uploaded proof image")
		}
		return nil
	case models.PaymentBank:
		if strings.TrimSpace(bankDetails) == "" {
			return errors.New("bank transfer requires bank details")
		}
		return nil
	case "":
		return errors.New("payment method is required")
	default:
		return fmt.Errorf("unsupported payment method: %s", method)
	}
}

// ParseCounterPrice 解析用户还价
// 必须是有限正数，否则在任何写库动作之前拒绝。
func ParseCounterPrice(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("counter price is required")
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("counter price must be a number")
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, errors.New("counter price must be a positive number")
	}
	return price, nil
}

// ConfirmSale 用户接受出价/确认成交
// negotiating → approved（user_confirmed=true）
// approved且未确认 → user_confirmed=true
// 其余状态一律拒绝。成功后写入/更新卖家收款记录（pending）。
func (s *SaleService) ConfirmSale(bikeID, userID string, req *ConfirmSaleRequest) (*models.Bike, error) {
	var bike models.Bike
	if err := s.db.First(&bike, "id = ?", bikeID).Error; err != nil {
		return nil, errors.New("bike not found")
	}

	if bike.SellerID != userID {
		return nil, errors.New("you don't have permission to act on this listing")
	}
	if bike.ListingType != models.ListingTypeSale {
		return nil, errors.New("only sale listings can be confirmed")
	}
	if bike.IsTerminal() {
		return nil, errors.New("this listing has already been finalized")
	}

	switch {
	case bike.Status == models.StatusNegotiating:
		// 接受经销商出价
	case bike.Status == models.StatusApproved && !bike.UserConfirmed:
		// approved后的最终确认
	default:
		return nil, fmt.Errorf("no confirm action is available while the listing is %s", bike.Status)
	}

	if err := ValidatePaymentSelection(req.PaymentMethod, req.PaymentProofURL, req.BankDetails); err != nil {
		return nil, err
	}

	finalPrice := bike.Price
	if bike.NegotiatedPrice > 0 {
		finalPrice = bike.NegotiatedPrice
	}

	updates := map[string]interface{}{
		"status":         models.StatusApproved,
		"user_confirmed": true,
		"payment_method": req.PaymentMethod,
		"bank_details":   req.BankDetails,
		"payment_proof":  req.PaymentProofURL,
	}
	if err := s.db.Model(&bike).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to confirm sale: %w", err)
	}

	// 写入收款记录（同一辆车只保留一条pending记录）
	var payment models.Payment
	err := s.db.Where("bike_id = ? AND status = ?", bike.ID, models.PaymentStatusPending).First(&payment).Error
	if err == nil {
		s.db.Model(&payment).Updates(map[string]interface{}{
			"amount": finalPrice,
			"method": req.PaymentMethod,
		})
	} else {
		payment = models.Payment{
			BikeID:   bike.ID,
			SellerID: bike.SellerID,
			Amount:   finalPrice,
			Method:   req.PaymentMethod,
			Status:   models.PaymentStatusPending,
		}
		if err := s.db.Create(&payment).Error; err != nil {
			return nil, fmt.Errorf("failed to record payment: %w", err)
		}
	}

	s.db.First(&bike, "id = ?", bike.ID)
	return &bike, nil
}

// CounterOffer 用户还价
// 仅negotiating状态可还价；成功后 → countered，等待经销商响应。
func (s *SaleService) CounterOffer(bikeID, userID, rawPrice string) (*models.Bike, error) {
	// 解析先于任何写库动作
	price, err := ParseCounterPrice(rawPrice)
	if err != nil {
		return nil, err
	}

	var bike models.Bike
	if err := s.db.First(&bike, "id = ?", bikeID).Error; err != nil {
		return nil, errors.New("bike not found")
	}

	if bike.SellerID != userID {
		return nil, errors.New("you don't have permission to act on this listing")
	}
	if bike.Status != models.StatusNegotiating {
		return nil, fmt.Errorf("counter offers are only allowed while negotiating, current status is %s", bike.Status)
	}

	updates := map[string]interface{}{
		"user_counter_price": price,
		"status":             models.StatusCountered,
	}
	if err := s.db.Model(&bike).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to submit counter offer: %w", err)
	}

	s.db.First(&bike, "id = ?", bike.ID)
	return &bike, nil
}

// Negotiate 经销商出价
// pending/available/negotiating/countered → negotiating。
// 每次出价都会清掉上一轮的用户确认。
func (s *SaleService) Negotiate(bikeID string, price float64, note string) (*models.Bike, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return nil, errors.New("negotiated price must be a positive number")
	}

	var bike models.Bike
	if err := s.db.First(&bike, "id = ?", bikeID).Error; err != nil {
		return nil, errors.New("bike not found")
	}

	if bike.ListingType != models.ListingTypeSale {
		return nil, errors.New("only sale listings can be negotiated")
	}
	if bike.IsTerminal() || bike.Status == models.StatusApproved {
		return nil, fmt.Errorf("cannot negotiate while the listing is %s", bike.Status)
	}

	updates := map[string]interface{}{
		"negotiated_price": price,
		"dealer_note":      note,
		"status":           models.StatusNegotiating,
		"user_confirmed":   false,
	}
	if err := s.db.Model(&bike).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to submit offer: %w", err)
	}

	s.db.First(&bike, "id = ?", bike.ID)
	return &bike, nil
}

// Decision 经销商裁决
// approve: pending → available（上架），countered → approved（接受用户还价）
// reject: 任意非终态 → rejected
func (s *SaleService) Decision(bikeID, action string) (*models.Bike, error) {
	var bike models.Bike
	if err := s.db.First(&bike, "id = ?", bikeID).Error; err != nil {
		return nil, errors.New("bike not found")
	}

	if bike.IsTerminal() {
		return nil, errors.New("this listing has already been finalized")
	}

	updates := map[string]interface{}{}

	switch action {
	case "approve":
		switch bike.Status {
		case models.StatusPending:
			updates["status"] = models.StatusAvailable
		case models.StatusCountered:
			// 接受用户还价，等待用户最终确认
			updates["status"] = models.StatusApproved
			updates["negotiated_price"] = bike.UserCounterPrice
			updates["user_confirmed"] = false
		default:
			return nil, fmt.Errorf("nothing to approve while the listing is %s", bike.Status)
		}
	case "reject":
		updates["status"] = models.StatusRejected
	default:
		return nil, fmt.Errorf("unknown decision action: %s", action)
	}

	if err := s.db.Model(&bike).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to apply decision: %w", err)
	}

	s.db.First(&bike, "id = ?", bike.ID)
	return &bike, nil
}

// CompleteSale 经销商完成收购
// 需要approved且用户已确认；→ purchased，收款记录标记为已到账。
func (s *SaleService) CompleteSale(bikeID, buyerID string) (*models.Bike, error) {
	var bike models.Bike
	if err := s.db.First(&bike, "id = ?", bikeID).Error; err != nil {
		return nil, errors.New("bike not found")
	}

	if bike.Status != models.StatusApproved || !bike.UserConfirmed {
		return nil, errors.New("sale can only be completed after the seller has confirmed the deal")
	}

	updates := map[string]interface{}{
		"status": models.StatusPurchased,
	}
	if buyerID != "" {
		updates["buyer_id"] = buyerID
	}
	if err := s.db.Model(&bike).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to complete sale: %w", err)
	}

	// 收款到账
	s.db.Model(&models.Payment{}).
		Where("bike_id = ? AND status = ?", bike.ID, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":   models.PaymentStatusReceived,
			"buyer_id": buyerID,
		})

	s.db.First(&bike, "id = ?", bike.ID)
	return &bike, nil
}

// SaleRequests 经销商待处理的出售请求
func (s *SaleService) SaleRequests() ([]models.Bike, error) {
	var bikes []models.Bike
	err := s.db.
		Preload("Seller").
		Where("listing_type = ?", models.ListingTypeSale).
		Where("status IN ?", []string{
			models.StatusPending,
			models.StatusNegotiating,
			models.StatusCountered,
			models.StatusApproved,
		}).
		Order("updated_at DESC").
		Find(&bikes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load sale requests: %w", err)
	}
	return bikes, nil
}
