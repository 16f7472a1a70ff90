package models

import (
	"time"

	"gorm.io/gorm"
)

// 租赁计划
const (
	PlanDaily  = "daily"  // 按天，价格×1
	PlanWeekly = "weekly" // 按周，价格×7
)

// 取车方式
const (
	DeliveryPickup = "pickup" // 自取，不收费
	DeliveryHome   = "home"   // 送车上门，固定加收10
)

// HomeDeliveryCharge 送车上门固定费用
const HomeDeliveryCharge = 10.0

// Booking 租赁订单模型
type Booking struct {
	ID         string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	BikeID     string         `gorm:"type:varchar(36);index;not null" json:"bike_id"`
	RenterID   string         `gorm:"type:varchar(36);index;not null" json:"renter_id"`
	Plan       string         `gorm:"type:varchar(10);comment:daily,weekly" json:"plan"`
	Duration   int            `gorm:"not null;comment:租期（plan单位数）" json:"duration"`
	Delivery   string         `gorm:"type:varchar(10);comment:pickup,home" json:"delivery"`
	TotalPrice float64        `gorm:"type:decimal(10,2);not null" json:"total_price"`
	StartDate  *time.Time     `json:"start_date,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联关系
	Bike   Bike `gorm:"foreignKey:BikeID" json:"bike,omitempty"`
	Renter User `gorm:"foreignKey:RenterID" json:"renter,omitempty"`
}

// TableName 指定表名
func (Booking) TableName() string {
	return "bookings"
}

// BeforeCreate 创建前钩子
func (bk *Booking) BeforeCreate(tx *gorm.DB) error {
	if bk.ID == "" {
		bk.ID = generateUUID()
	}
	return nil
}
