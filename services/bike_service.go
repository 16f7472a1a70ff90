package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"

	"gorm.io/gorm"
)

// ErrTooManyImages 图片数量超限
var ErrTooManyImages = fmt.Errorf("a listing can have at most %d images", models.MaxBikeImages)

// BikeService 车辆查询/图片服务
type BikeService struct {
	db *gorm.DB
}

// NewBikeService 创建车辆服务实例
func NewBikeService(db *gorm.DB) *BikeService {
	return &BikeService{db: db}
}

// BikeFilter 浏览过滤条件
// Query做大小写不敏感的名称/品牌子串匹配，其余为精确匹配，价格为闭区间。
type BikeFilter struct {
	Query       string
	Category    string
	Brand       string
	ListingType string
	MinPrice    float64
	MaxPrice    float64
	Status      string
	Page        int
	Limit       int
}

// MergeImages 合并已有图片与新增图片并检查上限
// 超限时返回错误，不产生任何变化。
func MergeImages(existing, incoming []string) ([]string, error) {
	if len(existing)+len(incoming) > models.MaxBikeImages {
		return nil, ErrTooManyImages
	}
	merged := make([]string, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	merged = append(merged, incoming...)
	return merged, nil
}

// List 按过滤条件查询车辆列表
func (s *BikeService) List(filter *BikeFilter) ([]models.Bike, int64, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := s.db.Model(&models.Bike{})

	// 浏览页默认只展示available
	status := filter.Status
	if status == "" {
		status = models.StatusAvailable
	}
	if status != "all" {
		query = query.Where("status = ?", status)
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", pattern, pattern)
	}
	if filter.Category != "" && filter.Category != "all" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Brand != "" && filter.Brand != "all" {
		query = query.Where("brand = ?", filter.Brand)
	}
	if filter.ListingType != "" && filter.ListingType != "all" {
		query = query.Where("listing_type = ?", filter.ListingType)
	}
	if filter.MinPrice > 0 {
		query = query.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query = query.Where("price <= ?", filter.MaxPrice)
	}

	var total int64
	query.Count(&total)

	var bikes []models.Bike
	if err := query.
		Preload("Seller").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bikes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bikes: %w", err)
	}

	return bikes, total, nil
}

// Brands 当前在售车辆的品牌集合（用于筛选器选项）
func (s *BikeService) Brands() ([]string, error) {
	var brands []string
	err := s.db.Model(&models.Bike{}).
		Where("brand <> ''").
		Distinct("brand").
		Order("brand ASC").
		Pluck("brand", &brands).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load brands: %w", err)
	}
	return brands, nil
}

// MyListings 当前用户的发布列表
func (s *BikeService) MyListings(sellerID string) ([]models.Bike, error) {
	var bikes []models.Bike
	err := s.db.
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&bikes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}
	return bikes, nil
}

// OwnedBy 校验车辆归属
func (s *BikeService) OwnedBy(bikeID, userID string) (*models.Bike, error) {
	var bike models.Bike
	if err := s.db.First(&bike, "id = ?", bikeID).Error; err != nil {
		return nil, errors.New("bike not found")
	}
	if bike.SellerID != userID {
		return nil, errors.New("you don't have permission to modify this listing")
	}
	return &bike, nil
}
