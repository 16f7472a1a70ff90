package models

import (
	"time"

	"gorm.io/gorm"
)

// 用户角色
const (
	RoleUser   = "user"   // 普通用户（买家/卖家）
	RoleDealer = "dealer" // 经销商（审核、议价、估值）
)

// User 用户模型
type User struct {
	ID         string         `gorm:"type:varchar(36);primaryKey;comment:用户ID (UUID)" json:"id"`
	Username   string         `gorm:"type:varchar(50);uniqueIndex;not null;comment:用户名" json:"username"`
	Email      string         `gorm:"type:varchar(100);uniqueIndex;not null;comment:邮箱" json:"email"`
	Password   string         `gorm:"type:varchar(255);not null;comment:密码" json:"-"` // 不返回给前端
	Avatar     string         `gorm:"type:varchar(255);comment:头像" json:"avatar,omitempty"`
	Phone      string         `gorm:"type:varchar(20);comment:手机号" json:"phone,omitempty"`
	Bio        string         `gorm:"type:text;comment:个人简介" json:"bio,omitempty"`
	Role       string         `gorm:"type:varchar(20);default:user;comment:角色: user, dealer" json:"role"`
	Status     int            `gorm:"default:1;comment:状态: 1=正常, 0=禁用" json:"status"`
	LastLogin  *time.Time     `gorm:"comment:最后登录时间" json:"last_login,omitempty"`
	LoginCount int            `gorm:"default:0;comment:登录次数" json:"login_count"`
	CreatedAt  time.Time      `gorm:"comment:创建时间" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"comment:更新时间" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index;comment:删除时间" json:"-"` // 软删除

	// 关联关系
	Bikes    []Bike    `gorm:"foreignKey:SellerID" json:"bikes,omitempty"`
	Bookings []Booking `gorm:"foreignKey:RenterID" json:"bookings,omitempty"`
	Payments []Payment `gorm:"foreignKey:SellerID" json:"payments,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// BeforeCreate 创建前钩子
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}

// IsDealer 是否为经销商
func (u *User) IsDealer() bool {
	return u.Role == RoleDealer
}
