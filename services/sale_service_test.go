package services

import (
	"testing"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ==================== 测试辅助 ====================

func setupSaleTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&models.User{}, &models.Bike{}, &models.Payment{})
	return db
}

func createSaleBike(t *testing.T, db *gorm.DB, status string) *models.Bike {
	bike := &models.Bike{
		ID:          "bike-1",
		Name:        "Royal Enfield Classic 350",
		ListingType: models.ListingTypeSale,
		Price:       300000,
		Status:      status,
		SellerID:    "seller-1",
	}
	if err := db.Create(bike).Error; err != nil {
		t.Fatalf("创建测试车辆失败: %v", err)
	}
	return bike
}

// ==================== 纯函数 ====================

func TestParseCounterPrice(t *testing.T) {
	if _, err := ParseCounterPrice(""); err == nil {
		t.Error("空字符串应该被拒绝")
	}
	if _, err := ParseCounterPrice("abc"); err == nil {
		t.Error("非数字应该被拒绝")
	}
	if _, err := ParseCounterPrice("-100"); err == nil {
		t.Error("负数应该被拒绝")
	}
	if _, err := ParseCounterPrice("0"); err == nil {
		t.Error("0应该被拒绝")
	}
	if _, err := ParseCounterPrice("NaN"); err == nil {
		t.Error("NaN应该被拒绝")
	}
	if _, err := ParseCounterPrice("Inf"); err == nil {
		t.Error("Inf应该被拒绝")
	}

	price, err := ParseCounterPrice("  280000.50 ")
	if err != nil {
		t.Fatalf("合法价格被拒绝: %v", err)
	}
	if price != 280000.50 {
		t.Errorf("price = %v, want 280000.50", price)
	}
}

func TestValidatePaymentSelection(t *testing.T) {
	if err := ValidatePaymentSelection(models.PaymentCash, "", ""); err != nil {
		t.Errorf("cash不需要额外信息: %v", err)
	}
	if err := ValidatePaymentSelection(models.PaymentQR, "", ""); err == nil {
		t.Error("qr缺凭证应该被拒绝")
	}
	if err := ValidatePaymentSelection(models.PaymentQR, "/uploads/proof.jpg", ""); err != nil {
		t.Errorf("qr带凭证应该通过: %v", err)
	}
	if err := ValidatePaymentSelection(models.PaymentBank, "", "   "); err == nil {
		t.Error("bank空白账户信息应该被拒绝")
	}
	if err := ValidatePaymentSelection(models.PaymentBank, "", "NIC Asia 1234567890"); err != nil {
		t.Errorf("bank带账户信息应该通过: %v", err)
	}
	if err := ValidatePaymentSelection("", "", ""); err == nil {
		t.Error("缺少付款方式应该被拒绝")
	}
	if err := ValidatePaymentSelection("crypto", "", ""); err == nil {
		t.Error("未知付款方式应该被拒绝")
	}
}

func TestAvailableActions(t *testing.T) {
	cases := []struct {
		status    string
		confirmed bool
		want      []string
	}{
		{models.StatusNegotiating, false, []string{ActionAccept, ActionCounter}},
		{models.StatusApproved, false, []string{ActionConfirm}},
		{models.StatusApproved, true, []string{}},
		{models.StatusCountered, false, []string{}}, // 只读等待经销商
		{models.StatusPending, false, []string{}},
		{models.StatusAvailable, false, []string{}},
		{models.StatusPurchased, true, []string{}},
		{models.StatusRejected, false, []string{}},
	}

	for _, tc := range cases {
		got := AvailableActions(&models.Bike{Status: tc.status, UserConfirmed: tc.confirmed})
		if len(got) != len(tc.want) {
			t.Errorf("status %s: actions = %v, want %v", tc.status, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("status %s: actions = %v, want %v", tc.status, got, tc.want)
				break
			}
		}
	}
}

// ==================== 状态流转 ====================

func TestDecision_ApprovePendingListing(t *testing.T) {
	db := setupSaleTestDB(t)
	svc := NewSaleService(db)
	createSaleBike(t, db, models.StatusPending)

	bike, err := svc.Decision("bike-1", "approve")
	if err != nil {
		t.Fatalf("审核失败: %v", err)
	}
	if bike.Status != models.StatusAvailable {
		t.Errorf("status = %s, want available", bike.Status)
	}
}

func TestDecision_RejectListing(t *testing.T) {
	db := setupSaleTestDB(t)
	svc := NewSaleService(db)
	createSaleBike(t, db, models.StatusPending)

	bike, err := svc.Decision("bike-1", "reject")
	if err != nil {
		t.Fatalf("拒绝失败: %v", err)
	}
	if bike.Status != models.StatusRejected {
		t.Errorf("status = %s, want rejected", bike.Status)
	}

	// 终态后不能再操作
	if _, err := svc.Decision("bike-1", "approve"); err == nil {
		t.Error("终态后approve应该被拒绝")
	}
	if _, err := svc.Negotiate("bike-1", 250000, ""); err == nil {
		t.Error("终态后议价应该被拒绝")
	}
}

func TestNegotiate_SetsNegotiatingState(t *testing.T) {
	db := setupSaleTestDB(t)
	svc := NewSaleService(db)
	createSaleBike(t, db, models.StatusAvailable)

	bike, err := svc.Negotiate("bike-1", 280000, "minor scratches on tank")
	if err != nil {
		t.Fatalf("议价失败: %v", err)
	}
	if bike.Status != models.StatusNegotiating {
		t.Errorf("status = %s, want negotiating", bike.Status)
	}
	if bike.NegotiatedPrice != 280000 {
		t.Errorf("negotiated_price = %v, want 280000", bike.NegotiatedPrice)
	}
	if bike.DealerNote != "minor scratches on tank" {
		t.Errorf("dealer_note = %q", bike.DealerNote)
	}
}

func TestNegotiate_Guards(t *testing.T) {
	db := setupSaleTestDB(t)
	svc := NewSaleService(db)
	createSaleBike(t, db, models.StatusAvailable)

	if _, err := svc.Negotiate("bike-1", -5, ""); err == nil {
		t.Error("负价格应该被拒绝")
	}
	if _, err := svc.Negotiate("bike-1", 0, ""); err == nil {
		t.Error("0价格应该被拒绝")
	}

	db.Create(&models.Bike{
		ID: "rent-bike", Name: "Rental", ListingType: models.ListingTypeRent,
		Price: 500, Status: models.StatusAvailable, SellerID: "seller-1",
	})
	if _, err := svc.Negotiate("rent-bike", 400, ""); err == nil {
		t.Error("rent类型不应可议价")
	}
}

func TestCounterOffer_OnlyWhileNegotiating(t *testing.T) {
	db := setupSaleTestDB(t)
	svc := NewSaleService(db)
	createSaleBike(t, db, models.StatusAvailable)

	if _, err := svc.CounterOffer("bike-1", "seller-1", "290000"); err == nil {
		t.Error("非negotiating状态的还价应该被拒绝")
	}

	db.Model(&models.Bike{}).Where("id = ?", "bike-1").Updates(map[string]interface{}{
		"status": models.StatusNegotiating, "negotiated_price": 280000.0,
	})

	// 非卖家不能还价
	if _, err := svc.CounterOffer("bike-1", "stranger", "290000"); err == nil {
		t.Error("非卖家还价应该被拒绝")
	}

	// 非法价格在写库前被拒绝，状态不变
	if _, err := svc.CounterOffer("bike-1", "seller-1", "not-a-number"); err == nil {
		t.Error("非数字还价应该被拒绝")
	}
	var check models.Bike
	db.First(&check, "id = ?", "bike-1")
	if check.Status != models.StatusNegotiating {
		t.Errorf("非法还价后状态被改变: %s", check.Status)
	}

	bike, err := svc.CounterOffer("bike-1", "seller-1", "290000")
	if err != nil {
		t.Fatalf("还价失败: %v", err)
	}
	if bike.Status != models.StatusCountered {
		t.Errorf("status = %s, want countered", bike.Status)
	}
	if bike.UserCounterPrice != 290000 {
		t.Errorf("user_counter_price = %v, want 290000", bike.UserCounterPrice)
	}

	// countered状态下用户无任何可用动作
	if actions := AvailableActions(bike); len(actions) != 0 {
		t.Errorf("countered状态的动作 = %v, want 空", actions)
	}

	// countered状态不能重复还价
	if _, err := svc.CounterOffer("bike-1", "seller-1", "295000"); err == nil {
		t.Error("countered状态的再次还价应该被拒绝")
	}
}

func TestConfirmSale_AcceptOffer(t *testing.T) {
	db := setupSaleTestDB(t)
	svc := NewSaleService(db)
	bike := createSaleBike(t, db, models.StatusNegotiating)
	db.Model(bike).Update("negotiated_price", 280000.0)

	// qr缺凭证被拒绝，状态不变
	if _, err := svc.ConfirmSale("bike-1", "seller-1", &ConfirmSaleRequest{
		PaymentMethod: models.PaymentQR,
	}); err == nil {
		t.Error("qr缺凭证应该被拒绝")
	}
	var check models.Bike
	db.First(&check, "id = ?", "bike-1")
	if check.Status != models.StatusNegotiating {
		t.Errorf("校验失败后状态被改变: %s", check.Status)
	}

	updated, err := svc.ConfirmSale("bike-1", "seller-1", &ConfirmSaleRequest{
		PaymentMethod: models.PaymentBank,
		BankDetails:   "NIC Asia 1234567890",
	})
	if err != nil {
		t.Fatalf("接受报价失败: %v", err)
	}
	if updated.Status != models.StatusApproved {
		t.Errorf("status = %s, want approved", updated.Status)
	}
	if !updated.UserConfirmed {
		t.Error("user_confirmed应该为true")
	}

	// 收款记录按成交价写入pending
	var payment models.Payment
	if err := db.First(&payment, "bike_id = ?", "bike-1").Error; err != nil {
		t.Fatalf("未找到收款记录: %v", err)
	}
	if payment.Amount != 280000 {
		t.Errorf("payment amount = %v, want 280000（议价后价格）", payment.Amount)
	}
	if payment.Status != models.PaymentStatusPending {
		t.Errorf("payment status = %s, want pending", payment.Status)
	}
}

func TestConfirmSale_Guards(t *testing.T) {
	db := setupSaleTestDB(t)
	svc := NewSaleService(db)
	createSaleBike(t, db, models.StatusNegotiating)

	req := &ConfirmSaleRequest{PaymentMethod: models.PaymentCash}

	if _, err := svc.ConfirmSale("bike-1", "stranger", req); err == nil {
		t.Error("非卖家确认应该被拒绝")
	}

	db.Model(&models.Bike{}).Where("id = ?", "bike-1").Update("status", models.StatusAvailable)
	if _, err := svc.ConfirmSale("bike-1", "seller-1", req); err == nil {
		t.Error("available状态的确认应该被拒绝")
	}

	db.Model(&models.Bike{}).Where("id = ?", "bike-1").Update("status", models.StatusPurchased)
	if _, err := svc.ConfirmSale("bike-1", "seller-1", req); err == nil {
		t.Error("终态确认应该被拒绝")
	}
}

// 完整流程：出价 → 还价 → 经销商接受 → 用户确认 → 完成收购
func TestFullNegotiationWalkthrough(t *testing.T) {
	db := setupSaleTestDB(t)
	svc := NewSaleService(db)
	createSaleBike(t, db, models.StatusAvailable)

	// 经销商出价
	bike, err := svc.Negotiate("bike-1", 270000, "fair condition")
	if err != nil {
		t.Fatalf("议价失败: %v", err)
	}

	// 用户还价
	bike, err = svc.CounterOffer("bike-1", "seller-1", "290000")
	if err != nil {
		t.Fatalf("还价失败: %v", err)
	}

	// 经销商接受还价
	bike, err = svc.Decision("bike-1", "approve")
	if err != nil {
		t.Fatalf("接受还价失败: %v", err)
	}
	if bike.Status != models.StatusApproved {
		t.Errorf("status = %s, want approved", bike.Status)
	}
	if bike.NegotiatedPrice != 290000 {
		t.Errorf("negotiated_price = %v, want 290000（用户还价）", bike.NegotiatedPrice)
	}
	if bike.UserConfirmed {
		t.Error("经销商接受后需要用户重新确认")
	}

	// 未确认前不能完成收购
	if _, err := svc.CompleteSale("bike-1", "dealer-1"); err == nil {
		t.Error("用户未确认时完成收购应该被拒绝")
	}

	// 用户最终确认
	bike, err = svc.ConfirmSale("bike-1", "seller-1", &ConfirmSaleRequest{
		PaymentMethod: models.PaymentCash,
	})
	if err != nil {
		t.Fatalf("最终确认失败: %v", err)
	}
	if !bike.UserConfirmed {
		t.Error("user_confirmed应该为true")
	}

	// 经销商完成收购
	bike, err = svc.CompleteSale("bike-1", "dealer-1")
	if err != nil {
		t.Fatalf("完成收购失败: %v", err)
	}
	if bike.Status != models.StatusPurchased {
		t.Errorf("status = %s, want purchased", bike.Status)
	}
	if bike.BuyerID != "dealer-1" {
		t.Errorf("buyer_id = %s, want dealer-1", bike.BuyerID)
	}

	// 收款记录到账，金额为最终成交价
	var payment models.Payment
	if err := db.First(&payment, "bike_id = ?", "bike-1").Error; err != nil {
		t.Fatalf("未找到收款记录: %v", err)
	}
	if payment.Status != models.PaymentStatusReceived {
		t.Errorf("payment status = %s, want received", payment.Status)
	}
	if payment.Amount != 290000 {
		t.Errorf("payment amount = %v, want 290000", payment.Amount)
	}
}
