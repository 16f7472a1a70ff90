package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"

	"gorm.io/gorm"
)

// BookingService 租赁服务
type BookingService struct {
	db *gorm.DB
}

// NewBookingService 创建租赁服务实例
func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

// RentRequest 租车请求
type RentRequest struct {
	Plan     string `json:"plan" binding:"required,oneof=daily weekly"`
	Duration int    `json:"duration" binding:"required,gt=0"`
	Delivery string `json:"delivery" binding:"omitempty,oneof=pickup home"`
}

// PlanMultiplier 租赁计划价格系数（daily=1，weekly=7）
func PlanMultiplier(plan string) (int, error) {
	switch plan {
	case models.PlanDaily:
		return 1, nil
	case models.PlanWeekly:
		return 7, nil
	default:
		return 0, fmt.Errorf("unknown rental plan: %s", plan)
	}
}

// DeliveryCharge 取车方式附加费（送车上门固定加收10）
func DeliveryCharge(delivery string) float64 {
	if delivery == models.DeliveryHome {
		return models.HomeDeliveryCharge
	}
	return 0
}

// ComputeRentalTotal 计算租金总价
// total = 日价 × 计划系数 × 租期 + 配送费
func ComputeRentalTotal(pricePerDay float64, plan string, duration int, delivery string) (float64, error) {
	if duration <= 0 {
		return 0, errors.New("duration must be a positive number")
	}
	if math.IsNaN(pricePerDay) || math.IsInf(pricePerDay, 0) || pricePerDay < 0 {
		return 0, errors.New("invalid price")
	}

	multiplier, err := PlanMultiplier(plan)
	if err != nil {
		return 0, err
	}

	return pricePerDay*float64(multiplier)*float64(duration) + DeliveryCharge(delivery), nil
}

// RentBike 租车并完成订单
// 仅rent类型且available状态可租；成功后车辆 → rented，并写入卖家收款记录。
func (s *BookingService) RentBike(bikeID, renterID string, req *RentRequest) (*models.Booking, error) {
	var bike models.Bike
	if err := s.db.First(&bike, "id = ?", bikeID).Error; err != nil {
		return nil, errors.New("bike not found")
	}

	if bike.ListingType != models.ListingTypeRent {
		return nil, errors.New("this bike is not listed for rental")
	}
	if bike.Status != models.StatusAvailable {
		return nil, fmt.Errorf("bike is not available for rent, current status is %s", bike.Status)
	}
	if bike.SellerID == renterID {
		return nil, errors.New("you cannot rent your own bike")
	}

	delivery := req.Delivery
	if delivery == "" {
		delivery = models.DeliveryPickup
	}

	total, err := ComputeRentalTotal(bike.Price, req.Plan, req.Duration, delivery)
	if err != nil {
		return nil, err
	}

	booking := models.Booking{
		BikeID:     bike.ID,
		RenterID:   renterID,
		Plan:       req.Plan,
		Duration:   req.Duration,
		Delivery:   delivery,
		TotalPrice: total,
	}
	if err := s.db.Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	updates := map[string]interface{}{
		"status":   models.StatusRented,
		"buyer_id": renterID,
	}
	if err := s.db.Model(&bike).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update bike status: %w", err)
	}

	// 租金收款记录（租金即付即收）
	payment := models.Payment{
		BikeID:    bike.ID,
		SellerID:  bike.SellerID,
		BuyerID:   renterID,
		BookingID: booking.ID,
		Amount:    total,
		Method:    models.PaymentCash,
		Status:    models.PaymentStatusReceived,
	}
	if err := s.db.Create(&payment).Error; err != nil {
		return nil, fmt.Errorf("failed to record rental payment: %w", err)
	}

	s.db.Preload("Bike").First(&booking, "id = ?", booking.ID)
	return &booking, nil
}

// MyBookings 当前用户的租赁订单
func (s *BookingService) MyBookings(renterID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.
		Preload("Bike").
		Where("renter_id = ?", renterID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	return bookings, nil
}
