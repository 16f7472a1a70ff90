package models

import (
	"time"

	"gorm.io/gorm"
)

// 置换申请状态
const (
	ExchangePending  = "pending"  // 待估值
	ExchangeValued   = "valued"   // 已估值，等待用户决定
	ExchangeAccepted = "accepted" // 用户接受，抵扣已生效
	ExchangeDeclined = "declined" // 用户放弃
)

// Exchange 置换（以旧换新）申请模型
// 四张凭证照片：行驶证、铭牌、整车、里程表。要么全传要么全不传。
type Exchange struct {
	ID            string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID        string         `gorm:"type:varchar(36);index;not null" json:"user_id"`
	BikeID        string         `gorm:"type:varchar(36);index;comment:抵扣目标车辆" json:"bike_id,omitempty"`
	Name          string         `gorm:"type:varchar(200);not null" json:"name"`
	Brand         string         `gorm:"type:varchar(100)" json:"brand"`
	Year          int            `json:"year"`
	EngineCC      int            `json:"engine_cc"`
	Mileage       int            `json:"mileage"`
	Condition     string         `gorm:"type:varchar(20)" json:"condition"`
	BlueBookPhoto string         `gorm:"type:varchar(255)" json:"blue_book_photo,omitempty"`
	ModelPhoto    string         `gorm:"type:varchar(255)" json:"model_photo,omitempty"`
	FullBikePhoto string         `gorm:"type:varchar(255)" json:"full_bike_photo,omitempty"`
	OdometerPhoto string         `gorm:"type:varchar(255)" json:"odometer_photo,omitempty"`
	Verified      bool           `gorm:"default:false;comment:是否带全套照片凭证" json:"verified"`
	Valuation     float64        `gorm:"type:decimal(10,2);comment:服务端估值" json:"valuation"`
	Status        string         `gorm:"type:varchar(20);default:pending;index" json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联关系
	User User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Bike *Bike `gorm:"foreignKey:BikeID" json:"bike,omitempty"`
}

// TableName 指定表名
func (Exchange) TableName() string {
	return "exchanges"
}

// BeforeCreate 创建前钩子
func (e *Exchange) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = generateUUID()
	}
	return nil
}

// HasAllPhotos 四张凭证照片是否齐全
func (e *Exchange) HasAllPhotos() bool {
	return e.BlueBookPhoto != "" && e.ModelPhoto != "" && e.FullBikePhoto != "" && e.OdometerPhoto != ""
}
