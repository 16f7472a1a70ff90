package services

import (
	"fmt"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"

	"gorm.io/gorm"
)

// PaymentService 卖家收款汇总服务
type PaymentService struct {
	db *gorm.DB
}

// NewPaymentService 创建收款服务实例
func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

// PaymentSummary 卖家收款视图
// Total = Pending + Received，ByMethod按支付方式分桶。
type PaymentSummary struct {
	Total    float64            `json:"total"`
	Pending  float64            `json:"pending"`
	Received float64            `json:"received"`
	Count    int                `json:"count"`
	ByMethod map[string]float64 `json:"by_method"`
	Payments []models.Payment   `json:"payments"`
}

// SellerSummary 聚合指定卖家的全部收款记录
func (s *PaymentService) SellerSummary(sellerID string) (*PaymentSummary, error) {
	var payments []models.Payment
	err := s.db.
		Preload("Bike").
		Preload("Buyer").
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	summary := &PaymentSummary{
		ByMethod: make(map[string]float64),
		Payments: payments,
		Count:    len(payments),
	}

	for _, p := range payments {
		summary.Total += p.Amount
		switch p.Status {
		case models.PaymentStatusReceived:
			summary.Received += p.Amount
		default:
			summary.Pending += p.Amount
		}
		if p.Method != "" {
			summary.ByMethod[p.Method] += p.Amount
		}
	}

	return summary, nil
}

// MarkReceived 经销商确认某笔收款已到账
func (s *PaymentService) MarkReceived(paymentID, sellerID string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.First(&payment, "id = ?", paymentID).Error; err != nil {
		return nil, fmt.Errorf("payment not found")
	}

	if payment.SellerID != sellerID {
		return nil, fmt.Errorf("you don't have permission to update this payment")
	}
	if payment.Status == models.PaymentStatusReceived {
		return &payment, nil
	}

	if err := s.db.Model(&payment).Update("status", models.PaymentStatusReceived).Error; err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	s.db.First(&payment, "id = ?", payment.ID)
	return &payment, nil
}
