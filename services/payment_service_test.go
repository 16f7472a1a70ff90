package services

import (
	"testing"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupPaymentTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&models.User{}, &models.Bike{}, &models.Payment{})
	return db
}

func TestSellerSummary_Aggregation(t *testing.T) {
	db := setupPaymentTestDB(t)
	svc := NewPaymentService(db)

	db.Create(&models.Bike{ID: "bike-1", Name: "CB500X", ListingType: models.ListingTypeSale, Price: 800000, SellerID: "seller-1"})

	payments := []models.Payment{
		{BikeID: "bike-1", SellerID: "seller-1", Amount: 800000, Method: models.PaymentBank, Status: models.PaymentStatusReceived},
		{BikeID: "bike-1", SellerID: "seller-1", Amount: 1500, Method: models.PaymentCash, Status: models.PaymentStatusPending},
		{BikeID: "bike-1", SellerID: "seller-1", Amount: 7010, Method: models.PaymentCash, Status: models.PaymentStatusPending},
		// 其他卖家的记录不应计入
		{BikeID: "bike-1", SellerID: "seller-2", Amount: 99999, Method: models.PaymentQR, Status: models.PaymentStatusReceived},
	}
	for i := range payments {
		if err := db.Create(&payments[i]).Error; err != nil {
			t.Fatalf("写入收款记录失败: %v", err)
		}
	}

	summary, err := svc.SellerSummary("seller-1")
	if err != nil {
		t.Fatalf("查询收款汇总失败: %v", err)
	}

	if summary.Count != 3 {
		t.Errorf("Count = %d, want 3", summary.Count)
	}
	if summary.Total != 808510 {
		t.Errorf("Total = %v, want 808510", summary.Total)
	}
	if summary.Received != 800000 {
		t.Errorf("Received = %v, want 800000", summary.Received)
	}
	if summary.Pending != 8510 {
		t.Errorf("Pending = %v, want 8510", summary.Pending)
	}
	if summary.Total != summary.Pending+summary.Received {
		t.Errorf("Total(%v) != Pending(%v)+Received(%v)", summary.Total, summary.Pending, summary.Received)
	}

	if got := summary.ByMethod[models.PaymentBank]; got != 800000 {
		t.Errorf("ByMethod[bank] = %v, want 800000", got)
	}
	if got := summary.ByMethod[models.PaymentCash]; got != 8510 {
		t.Errorf("ByMethod[cash] = %v, want 8510", got)
	}
	if _, ok := summary.ByMethod[models.PaymentQR]; ok {
		t.Error("其他卖家的支付方式不应出现在分桶里")
	}
}

func TestSellerSummary_EmptySeller(t *testing.T) {
	db := setupPaymentTestDB(t)
	svc := NewPaymentService(db)

	summary, err := svc.SellerSummary("nobody")
	if err != nil {
		t.Fatalf("查询收款汇总失败: %v", err)
	}

	if summary.Count != 0 || summary.Total != 0 || summary.Pending != 0 || summary.Received != 0 {
		t.Errorf("空卖家应该全为零: %+v", summary)
	}
	if len(summary.ByMethod) != 0 {
		t.Errorf("空卖家的ByMethod应为空: %v", summary.ByMethod)
	}
}

func TestMarkReceived(t *testing.T) {
	db := setupPaymentTestDB(t)
	svc := NewPaymentService(db)

	payment := models.Payment{
		BikeID: "bike-1", SellerID: "seller-1", Amount: 1500,
		Method: models.PaymentCash, Status: models.PaymentStatusPending,
	}
	db.Create(&payment)

	// 非本人不能确认
	if _, err := svc.MarkReceived(payment.ID, "seller-2"); err == nil {
		t.Error("非收款方确认应该被拒绝")
	}

	updated, err := svc.MarkReceived(payment.ID, "seller-1")
	if err != nil {
		t.Fatalf("确认到账失败: %v", err)
	}
	if updated.Status != models.PaymentStatusReceived {
		t.Errorf("status = %s, want received", updated.Status)
	}

	// 重复确认幂等
	again, err := svc.MarkReceived(payment.ID, "seller-1")
	if err != nil {
		t.Fatalf("重复确认不应报错: %v", err)
	}
	if again.Status != models.PaymentStatusReceived {
		t.Errorf("重复确认后 status = %s, want received", again.Status)
	}

	if _, err := svc.MarkReceived("missing-id", "seller-1"); err == nil {
		t.Error("不存在的收款记录应该报错")
	}
}
