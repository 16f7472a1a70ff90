package models

import (
	"time"

	"gorm.io/gorm"
)

// 收款状态
const (
	PaymentStatusPending  = "pending"  // 等待到账
	PaymentStatusReceived = "received" // 已到账
)

// Payment 卖家收款记录模型
// 在成交（confirm-sale完成）或出租时写入，供卖家端对账。
type Payment struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	BikeID    string         `gorm:"type:varchar(36);index;not null" json:"bike_id"`
	SellerID  string         `gorm:"type:varchar(36);index;not null" json:"seller_id"`
	BuyerID   string         `gorm:"type:varchar(36);index" json:"buyer_id,omitempty"`
	BookingID string         `gorm:"type:varchar(36);index" json:"booking_id,omitempty"`
	Amount    float64        `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method    string         `gorm:"type:varchar(20);comment:cash,qr,bank" json:"method"`
	Status    string         `gorm:"type:varchar(20);default:pending" json:"status"`
	Note      string         `gorm:"type:text" json:"note,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联关系
	Bike   Bike  `gorm:"foreignKey:BikeID" json:"bike,omitempty"`
	Seller User  `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Buyer  *User `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}

// BeforeCreate 创建前钩子
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}
