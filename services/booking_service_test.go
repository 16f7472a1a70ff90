package services

import (
	"testing"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ==================== 测试辅助 ====================

func setupBookingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&models.User{}, &models.Bike{}, &models.Booking{}, &models.Payment{})
	return db
}

// ==================== 价格计算 ====================

func TestComputeRentalTotal_DailyPickup(t *testing.T) {
	total, err := ComputeRentalTotal(500, models.PlanDaily, 3, models.DeliveryPickup)
	if err != nil {
		t.Fatalf("计算租金失败: %v", err)
	}
	if total != 1500 {
		t.Errorf("total = %v, want 1500", total)
	}
}

func TestComputeRentalTotal_WeeklyHomeDelivery(t *testing.T) {
	total, err := ComputeRentalTotal(500, models.PlanWeekly, 2, models.DeliveryHome)
	if err != nil {
		t.Fatalf("计算租金失败: %v", err)
	}
	// 500 × 7 × 2 + 10
	if total != 7010 {
		t.Errorf("total = %v, want 7010", total)
	}
}

func TestComputeRentalTotal_InvalidPlan(t *testing.T) {
	if _, err := ComputeRentalTotal(500, "monthly", 1, models.DeliveryPickup); err == nil {
		t.Error("未知计划应该返回错误")
	}
}

func TestComputeRentalTotal_InvalidDuration(t *testing.T) {
	if _, err := ComputeRentalTotal(500, models.PlanDaily, 0, models.DeliveryPickup); err == nil {
		t.Error("时长为0应该返回错误")
	}
	if _, err := ComputeRentalTotal(500, models.PlanDaily, -2, models.DeliveryPickup); err == nil {
		t.Error("负时长应该返回错误")
	}
}

func TestPlanMultiplier(t *testing.T) {
	if m, _ := PlanMultiplier(models.PlanDaily); m != 1 {
		t.Errorf("daily multiplier = %d, want 1", m)
	}
	if m, _ := PlanMultiplier(models.PlanWeekly); m != 7 {
		t.Errorf("weekly multiplier = %d, want 7", m)
	}
	if _, err := PlanMultiplier("hourly"); err == nil {
		t.Error("未知计划应该返回错误")
	}
}

func TestDeliveryCharge(t *testing.T) {
	if c := DeliveryCharge(models.DeliveryPickup); c != 0 {
		t.Errorf("pickup charge = %v, want 0", c)
	}
	if c := DeliveryCharge(models.DeliveryHome); c != models.HomeDeliveryCharge {
		t.Errorf("home charge = %v, want %v", c, models.HomeDeliveryCharge)
	}
}

// ==================== 租车流程 ====================

func TestRentBike_Success(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := NewBookingService(db)

	db.Create(&models.User{ID: "seller-1", Username: "seller", Email: "s@test.com", Password: "x"})
	db.Create(&models.User{ID: "renter-1", Username: "renter", Email: "r@test.com", Password: "x"})
	db.Create(&models.Bike{
		ID:          "bike-1",
		Name:        "Honda CB500",
		ListingType: models.ListingTypeRent,
		Price:       500,
		Status:      models.StatusAvailable,
		SellerID:    "seller-1",
	})

	booking, err := svc.RentBike("bike-1", "renter-1", &RentRequest{
		Plan:     models.PlanWeekly,
		Duration: 2,
		Delivery: models.DeliveryHome,
	})
	if err != nil {
		t.Fatalf("租车失败: %v", err)
	}

	if booking.TotalPrice != 7010 {
		t.Errorf("total = %v, want 7010", booking.TotalPrice)
	}

	var bike models.Bike
	db.First(&bike, "id = ?", "bike-1")
	if bike.Status != models.StatusRented {
		t.Errorf("bike status = %s, want rented", bike.Status)
	}
	if bike.BuyerID != "renter-1" {
		t.Errorf("buyer_id = %s, want renter-1", bike.BuyerID)
	}

	// 租金收款记录即付即收
	var payment models.Payment
	if err := db.First(&payment, "bike_id = ?", "bike-1").Error; err != nil {
		t.Fatalf("未找到收款记录: %v", err)
	}
	if payment.Status != models.PaymentStatusReceived {
		t.Errorf("payment status = %s, want received", payment.Status)
	}
	if payment.Amount != 7010 {
		t.Errorf("payment amount = %v, want 7010", payment.Amount)
	}
}

func TestRentBike_DefaultsToPickup(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := NewBookingService(db)

	db.Create(&models.Bike{
		ID:          "bike-1",
		Name:        "Yamaha MT-07",
		ListingType: models.ListingTypeRent,
		Price:       500,
		Status:      models.StatusAvailable,
		SellerID:    "seller-1",
	})

	booking, err := svc.RentBike("bike-1", "renter-1", &RentRequest{
		Plan:     models.PlanDaily,
		Duration: 3,
	})
	if err != nil {
		t.Fatalf("租车失败: %v", err)
	}
	if booking.Delivery != models.DeliveryPickup {
		t.Errorf("delivery = %s, want pickup", booking.Delivery)
	}
	if booking.TotalPrice != 1500 {
		t.Errorf("total = %v, want 1500", booking.TotalPrice)
	}
}

func TestRentBike_Guards(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := NewBookingService(db)

	db.Create(&models.Bike{
		ID:          "sale-bike",
		Name:        "Sale Only",
		ListingType: models.ListingTypeSale,
		Price:       100000,
		Status:      models.StatusAvailable,
		SellerID:    "seller-1",
	})
	db.Create(&models.Bike{
		ID:          "rented-bike",
		Name:        "Already Rented",
		ListingType: models.ListingTypeRent,
		Price:       500,
		Status:      models.StatusRented,
		SellerID:    "seller-1",
	})
	db.Create(&models.Bike{
		ID:          "own-bike",
		Name:        "Own Bike",
		ListingType: models.ListingTypeRent,
		Price:       500,
		Status:      models.StatusAvailable,
		SellerID:    "renter-1",
	})

	req := &RentRequest{Plan: models.PlanDaily, Duration: 1}

	if _, err := svc.RentBike("sale-bike", "renter-1", req); err == nil {
		t.Error("sale类型不应可租")
	}
	if _, err := svc.RentBike("rented-bike", "renter-1", req); err == nil {
		t.Error("非available状态不应可租")
	}
	if _, err := svc.RentBike("own-bike", "renter-1", req); err == nil {
		t.Error("不应能租自己的车")
	}
	if _, err := svc.RentBike("missing", "renter-1", req); err == nil {
		t.Error("不存在的车辆应该返回错误")
	}
}
