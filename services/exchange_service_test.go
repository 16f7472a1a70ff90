package services

import (
	"testing"
	"time"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ==================== 测试辅助 ====================

func setupExchangeTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&models.User{}, &models.Bike{}, &models.Exchange{})
	return db
}

// ==================== 照片凭证 ====================

func TestValidatePhotoSet_AllOrNone(t *testing.T) {
	// 全不传：允许
	if err := ValidatePhotoSet(&ExchangePhotos{}); err != nil {
		t.Errorf("无照片应该允许: %v", err)
	}

	// 全传：允许
	full := &ExchangePhotos{
		BlueBook: "a.jpg", Model: "b.jpg", FullBike: "c.jpg", Odometer: "d.jpg",
	}
	if err := ValidatePhotoSet(full); err != nil {
		t.Errorf("四张齐全应该允许: %v", err)
	}
	if !full.Complete() {
		t.Error("四张齐全Complete应该为true")
	}

	// 部分传：拒绝
	partials := []*ExchangePhotos{
		{BlueBook: "a.jpg"},
		{BlueBook: "a.jpg", Model: "b.jpg"},
		{BlueBook: "a.jpg", Model: "b.jpg", FullBike: "c.jpg"},
		{Odometer: "d.jpg"},
	}
	for i, p := range partials {
		if err := ValidatePhotoSet(p); err == nil {
			t.Errorf("partial[%d]: 部分照片应该被拒绝", i)
		}
	}
}

// ==================== 估值 ====================

func TestEstimateValuation_Properties(t *testing.T) {
	year := time.Now().Year()

	// 同参数下成色越差估值越低
	excellent := EstimateValuation(year-3, 400, 20000, "Excellent")
	good := EstimateValuation(year-3, 400, 20000, "Good")
	fair := EstimateValuation(year-3, 400, 20000, "Fair")
	poor := EstimateValuation(year-3, 400, 20000, "Poor")
	if !(excellent > good && good > fair && fair > poor) {
		t.Errorf("成色排序错误: %v > %v > %v > %v 不成立", excellent, good, fair, poor)
	}

	// 车龄越大估值越低
	newer := EstimateValuation(year-1, 400, 20000, "Good")
	older := EstimateValuation(year-10, 400, 20000, "Good")
	if newer <= older {
		t.Errorf("车龄折旧错误: newer=%v older=%v", newer, older)
	}

	// 里程越高估值越低
	lowKM := EstimateValuation(year-3, 400, 5000, "Good")
	highKM := EstimateValuation(year-3, 400, 150000, "Good")
	if lowKM <= highKM {
		t.Errorf("里程折损错误: low=%v high=%v", lowKM, highKM)
	}

	// 永远为正
	if v := EstimateValuation(1950, 100, 999999, "Poor"); v <= 0 {
		t.Errorf("估值必须为正: %v", v)
	}
}

func TestEstimateValuation_Floor(t *testing.T) {
	// 极端旧车命中5%下限
	v := EstimateValuation(1960, 350, 500000, "Poor")
	floor := float64(350) * 2.0 * 0.05
	if v != floor {
		t.Errorf("floor = %v, want %v", v, floor)
	}
}

// ==================== 置换流程 ====================

func TestCreateExchange_ImmediateValuation(t *testing.T) {
	db := setupExchangeTestDB(t)
	svc := NewExchangeService(db)

	exchange, err := svc.CreateExchange("user-1", &ExchangeRequest{
		Name:      "Old Pulsar 220",
		Brand:     "Bajaj",
		Year:      time.Now().Year() - 5,
		EngineCC:  220,
		Mileage:   40000,
		Condition: "Good",
	}, nil)
	if err != nil {
		t.Fatalf("创建置换申请失败: %v", err)
	}

	if exchange.Status != models.ExchangeValued {
		t.Errorf("status = %s, want valued", exchange.Status)
	}
	if exchange.Valuation <= 0 {
		t.Errorf("估值必须为正: %v", exchange.Valuation)
	}
	if exchange.Verified {
		t.Error("无照片凭证不应标记为verified")
	}
}

func TestCreateExchange_PartialPhotosRejected(t *testing.T) {
	db := setupExchangeTestDB(t)
	svc := NewExchangeService(db)

	_, err := svc.CreateExchange("user-1", &ExchangeRequest{
		Name: "Old Bike", Year: 2018, EngineCC: 150, Condition: "Fair",
	}, &ExchangePhotos{BlueBook: "a.jpg", Model: "b.jpg"})
	if err == nil {
		t.Error("部分照片应该被拒绝")
	}

	var count int64
	db.Model(&models.Exchange{}).Count(&count)
	if count != 0 {
		t.Errorf("被拒绝的申请不应入库, count = %d", count)
	}
}

func TestCreateExchange_FullPhotosVerified(t *testing.T) {
	db := setupExchangeTestDB(t)
	svc := NewExchangeService(db)

	exchange, err := svc.CreateExchange("user-1", &ExchangeRequest{
		Name: "Old Bike", Year: 2018, EngineCC: 150, Condition: "Fair",
	}, &ExchangePhotos{
		BlueBook: "a.jpg", Model: "b.jpg", FullBike: "c.jpg", Odometer: "d.jpg",
	})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if !exchange.Verified {
		t.Error("四张齐全应标记为verified")
	}
	if !exchange.HasAllPhotos() {
		t.Error("HasAllPhotos应该为true")
	}
}

func TestDecide_AcceptAppliesDeduction(t *testing.T) {
	db := setupExchangeTestDB(t)
	svc := NewExchangeService(db)

	db.Create(&models.Bike{
		ID: "target-1", Name: "New CB350", ListingType: models.ListingTypeSale,
		Price: 500000, Status: models.StatusAvailable, SellerID: "dealer-1",
	})

	exchange, err := svc.CreateExchange("user-1", &ExchangeRequest{
		BikeID: "target-1", Name: "Old Bike",
		Year: time.Now().Year() - 4, EngineCC: 350, Mileage: 30000, Condition: "Good",
	}, nil)
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	accepted, err := svc.Decide(exchange.ID, "user-1", true)
	if err != nil {
		t.Fatalf("接受估值失败: %v", err)
	}
	if accepted.Status != models.ExchangeAccepted {
		t.Errorf("status = %s, want accepted", accepted.Status)
	}

	var bike models.Bike
	db.First(&bike, "id = ?", "target-1")
	want := 500000 - exchange.Valuation
	if bike.Price != want {
		t.Errorf("deducted price = %v, want %v", bike.Price, want)
	}
	if !bike.IsExchange {
		t.Error("抵扣后is_exchange应该为true")
	}
	if bike.ExchangeValue != exchange.Valuation {
		t.Errorf("exchange_value = %v, want %v", bike.ExchangeValue, exchange.Valuation)
	}

	// 已决定的申请不能重复决定
	if _, err := svc.Decide(exchange.ID, "user-1", true); err == nil {
		t.Error("重复决定应该被拒绝")
	}
}

func TestDecide_PriceNeverNegative(t *testing.T) {
	db := setupExchangeTestDB(t)
	svc := NewExchangeService(db)

	db.Create(&models.Bike{
		ID: "cheap-1", Name: "Cheap Bike", ListingType: models.ListingTypeSale,
		Price: 100, Status: models.StatusAvailable, SellerID: "dealer-1",
	})

	exchange, err := svc.CreateExchange("user-1", &ExchangeRequest{
		BikeID: "cheap-1", Name: "Valuable Trade",
		Year: time.Now().Year(), EngineCC: 650, Mileage: 1000, Condition: "Excellent",
	}, nil)
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	if _, err := svc.Decide(exchange.ID, "user-1", true); err != nil {
		t.Fatalf("接受估值失败: %v", err)
	}

	var bike models.Bike
	db.First(&bike, "id = ?", "cheap-1")
	if bike.Price != 0 {
		t.Errorf("抵扣后价格 = %v, want 0（不允许为负）", bike.Price)
	}
}

func TestDecide_Decline(t *testing.T) {
	db := setupExchangeTestDB(t)
	svc := NewExchangeService(db)

	db.Create(&models.Bike{
		ID: "target-1", Name: "Target", ListingType: models.ListingTypeSale,
		Price: 500000, Status: models.StatusAvailable, SellerID: "dealer-1",
	})

	exchange, _ := svc.CreateExchange("user-1", &ExchangeRequest{
		BikeID: "target-1", Name: "Old Bike",
		Year: 2018, EngineCC: 150, Condition: "Fair",
	}, nil)

	declined, err := svc.Decide(exchange.ID, "user-1", false)
	if err != nil {
		t.Fatalf("放弃置换失败: %v", err)
	}
	if declined.Status != models.ExchangeDeclined {
		t.Errorf("status = %s, want declined", declined.Status)
	}

	// 放弃置换不影响目标车辆价格
	var bike models.Bike
	db.First(&bike, "id = ?", "target-1")
	if bike.Price != 500000 {
		t.Errorf("放弃后价格被改变: %v", bike.Price)
	}
	if bike.IsExchange {
		t.Error("放弃后is_exchange不应为true")
	}
}

func TestDecide_OnlyOwner(t *testing.T) {
	db := setupExchangeTestDB(t)
	svc := NewExchangeService(db)

	exchange, _ := svc.CreateExchange("user-1", &ExchangeRequest{
		Name: "Old Bike", Year: 2018, EngineCC: 150, Condition: "Fair",
	}, nil)

	if _, err := svc.Decide(exchange.ID, "someone-else", true); err == nil {
		t.Error("非申请人决定应该被拒绝")
	}
}

func TestSetValuation_DealerOverride(t *testing.T) {
	db := setupExchangeTestDB(t)
	svc := NewExchangeService(db)

	exchange, _ := svc.CreateExchange("user-1", &ExchangeRequest{
		Name: "Old Bike", Year: 2018, EngineCC: 150, Condition: "Fair",
	}, nil)

	updated, err := svc.SetValuation(exchange.ID, 45000)
	if err != nil {
		t.Fatalf("人工估值失败: %v", err)
	}
	if updated.Valuation != 45000 {
		t.Errorf("valuation = %v, want 45000", updated.Valuation)
	}

	if _, err := svc.SetValuation(exchange.ID, -100); err == nil {
		t.Error("负估值应该被拒绝")
	}

	// 已接受后不能再改估值
	db.Model(&models.Exchange{}).Where("id = ?", exchange.ID).
		Update("status", models.ExchangeAccepted)
	if _, err := svc.SetValuation(exchange.ID, 50000); err == nil {
		t.Error("已接受的申请不应能改估值")
	}
}
