package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// 发布类型
const (
	ListingTypeRent = "rent" // 租赁（价格按天计）
	ListingTypeSale = "sale" // 出售（一口价）
)

// 车辆状态
const (
	StatusAvailable   = "available"   // 可浏览/可交易
	StatusPending     = "pending"     // 待审核
	StatusNegotiating = "negotiating" // 经销商出价中
	StatusCountered   = "countered"   // 用户已还价，等待经销商
	StatusApproved    = "approved"    // 双方达成一致
	StatusRented      = "rented"      // 已出租（终态）
	StatusPurchased   = "purchased"   // 已售出（终态）
	StatusRejected    = "rejected"    // 已拒绝（终态）
)

// 付款方式
const (
	PaymentCash = "cash" // 现金
	PaymentQR   = "qr"   // 扫码（需上传凭证图片）
	PaymentBank = "bank" // 银行转账（需填写账户信息）
)

// MaxBikeImages 每辆车最多图片数
const MaxBikeImages = 4

// Bike 摩托车发布模型
type Bike struct {
	ID               string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name             string         `gorm:"type:varchar(200);not null;index" json:"name"`
	Brand            string         `gorm:"type:varchar(100);index" json:"brand"`
	Model            string         `gorm:"type:varchar(100)" json:"model"`
	Year             int            `gorm:"comment:出厂年份" json:"year"`
	EngineCC         int            `gorm:"comment:排量(cc)" json:"engine_cc"`
	Mileage          int            `gorm:"comment:里程(km)" json:"mileage"`
	ListingType      string         `gorm:"type:varchar(10);index;comment:rent,sale" json:"listing_type"`
	Price            float64        `gorm:"type:decimal(10,2);not null;comment:rent类型按天计价" json:"price"`
	Category         string         `gorm:"type:varchar(50);index" json:"category"`
	Condition        string         `gorm:"type:varchar(20);comment:Excellent,Good,Fair,Poor" json:"condition"`
	Images           string         `gorm:"type:text;comment:JSON数组字符串，最多4张" json:"images,omitempty"`
	Status           string         `gorm:"type:varchar(20);default:pending;index" json:"status"`
	NegotiatedPrice  float64        `gorm:"type:decimal(10,2);comment:经销商出价，仅negotiating/countered期间有意义" json:"negotiated_price"`
	UserCounterPrice float64        `gorm:"type:decimal(10,2);comment:用户还价" json:"user_counter_price"`
	PaymentMethod    string         `gorm:"type:varchar(20);comment:cash,qr,bank" json:"payment_method,omitempty"`
	BankDetails      string         `gorm:"type:text;comment:银行转账信息" json:"bank_details,omitempty"`
	PaymentProof     string         `gorm:"type:varchar(255);comment:扫码付款凭证" json:"payment_proof,omitempty"`
	IsExchange       bool           `gorm:"default:false;comment:是否置换车" json:"is_exchange"`
	ExchangeValue    float64        `gorm:"type:decimal(10,2);comment:置换估值，从售价中抵扣" json:"exchange_value"`
	DealerNote       string         `gorm:"type:text" json:"dealer_note,omitempty"`
	UserConfirmed    bool           `gorm:"default:false;comment:approved后用户是否已确认" json:"user_confirmed"`
	SellerID         string         `gorm:"type:varchar(36);index;not null" json:"seller_id"`
	BuyerID          string         `gorm:"type:varchar(36);index" json:"buyer_id,omitempty"`
	ViewCount        int64          `gorm:"default:0" json:"view_count"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联关系
	Seller   User      `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Buyer    *User     `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Bookings []Booking `gorm:"foreignKey:BikeID" json:"bookings,omitempty"`
	Payments []Payment `gorm:"foreignKey:BikeID" json:"payments,omitempty"`
}

// TableName 指定表名
func (Bike) TableName() string {
	return "bikes"
}

// BeforeCreate 创建前钩子
func (b *Bike) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = generateUUID()
	}
	return nil
}

// IsTerminal 是否为终态（purchased/rented/rejected后不再变化）
func (b *Bike) IsTerminal() bool {
	return b.Status == StatusPurchased || b.Status == StatusRented || b.Status == StatusRejected
}

// ImageList 解析图片JSON数组
func (b *Bike) ImageList() []string {
	if b.Images == "" {
		return nil
	}
	var images []string
	if err := json.Unmarshal([]byte(b.Images), &images); err != nil {
		return nil
	}
	return images
}

// SetImageList 序列化图片数组
func (b *Bike) SetImageList(images []string) {
	data, _ := json.Marshal(images)
	b.Images = string(data)
}
