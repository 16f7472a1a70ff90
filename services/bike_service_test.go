package services

import (
	"errors"
	"testing"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ==================== 测试辅助 ====================

func setupBikeTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&models.User{}, &models.Bike{})
	return db
}

func seedBrowseBikes(t *testing.T, db *gorm.DB) {
	bikes := []models.Bike{
		{ID: "b1", Name: "Honda CB500X", Brand: "Honda", Category: "Adventure", ListingType: models.ListingTypeSale, Price: 650000, Status: models.StatusAvailable, SellerID: "s1"},
		{ID: "b2", Name: "Yamaha MT-07", Brand: "Yamaha", Category: "Naked", ListingType: models.ListingTypeSale, Price: 800000, Status: models.StatusAvailable, SellerID: "s1"},
		{ID: "b3", Name: "Honda Shine", Brand: "Honda", Category: "Commuter", ListingType: models.ListingTypeRent, Price: 500, Status: models.StatusAvailable, SellerID: "s2"},
		{ID: "b4", Name: "KTM Duke 390", Brand: "KTM", Category: "Naked", ListingType: models.ListingTypeSale, Price: 750000, Status: models.StatusPending, SellerID: "s2"},
	}
	for i := range bikes {
		if err := db.Create(&bikes[i]).Error; err != nil {
			t.Fatalf("创建测试数据失败: %v", err)
		}
	}
}

// ==================== 图片上限 ====================

func TestMergeImages_WithinCap(t *testing.T) {
	merged, err := MergeImages([]string{"a.jpg", "b.jpg"}, []string{"c.jpg", "d.jpg"})
	if err != nil {
		t.Fatalf("4张以内应该成功: %v", err)
	}
	if len(merged) != 4 {
		t.Errorf("merged count = %d, want 4", len(merged))
	}
}

func TestMergeImages_RejectsFifthImage(t *testing.T) {
	existing := []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"}
	merged, err := MergeImages(existing, []string{"e.jpg"})
	if !errors.Is(err, ErrTooManyImages) {
		t.Errorf("err = %v, want ErrTooManyImages", err)
	}
	// 超限时不产生任何结果
	if merged != nil {
		t.Errorf("merged = %v, want nil", merged)
	}
}

func TestMergeImages_EmptyExisting(t *testing.T) {
	merged, err := MergeImages(nil, []string{"a.jpg"})
	if err != nil {
		t.Fatalf("合并失败: %v", err)
	}
	if len(merged) != 1 {
		t.Errorf("merged count = %d, want 1", len(merged))
	}
}

// ==================== 浏览过滤 ====================

func TestList_DefaultsToAvailable(t *testing.T) {
	db := setupBikeTestDB(t)
	svc := NewBikeService(db)
	seedBrowseBikes(t, db)

	bikes, total, err := svc.List(&BikeFilter{})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3（pending不展示）", total)
	}
	for _, b := range bikes {
		if b.Status != models.StatusAvailable {
			t.Errorf("返回了非available车辆: %s (%s)", b.ID, b.Status)
		}
	}
}

func TestList_StatusAll(t *testing.T) {
	db := setupBikeTestDB(t)
	svc := NewBikeService(db)
	seedBrowseBikes(t, db)

	_, total, err := svc.List(&BikeFilter{Status: "all"})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
}

func TestList_CaseInsensitiveQuery(t *testing.T) {
	db := setupBikeTestDB(t)
	svc := NewBikeService(db)
	seedBrowseBikes(t, db)

	bikes, total, err := svc.List(&BikeFilter{Query: "hoNDa"})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	for _, b := range bikes {
		if b.Brand != "Honda" {
			t.Errorf("匹配到了错误的品牌: %s", b.Brand)
		}
	}
}

func TestList_FilterCombination(t *testing.T) {
	db := setupBikeTestDB(t)
	svc := NewBikeService(db)
	seedBrowseBikes(t, db)

	// 类型+价格区间
	bikes, total, err := svc.List(&BikeFilter{
		ListingType: models.ListingTypeSale,
		MinPrice:    700000,
		MaxPrice:    900000,
	})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
	if len(bikes) == 1 && bikes[0].ID != "b2" {
		t.Errorf("bike = %s, want b2", bikes[0].ID)
	}

	// 分类过滤
	_, total, _ = svc.List(&BikeFilter{Category: "Naked"})
	if total != 1 {
		t.Errorf("Naked available total = %d, want 1（b4是pending）", total)
	}
}

func TestList_Pagination(t *testing.T) {
	db := setupBikeTestDB(t)
	svc := NewBikeService(db)
	seedBrowseBikes(t, db)

	bikes, total, err := svc.List(&BikeFilter{Limit: 2, Page: 1, Status: "all"})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	if len(bikes) != 2 {
		t.Errorf("page size = %d, want 2", len(bikes))
	}

	bikes2, _, _ := svc.List(&BikeFilter{Limit: 2, Page: 2, Status: "all"})
	if len(bikes2) != 2 {
		t.Errorf("page 2 size = %d, want 2", len(bikes2))
	}
	if len(bikes) > 0 && len(bikes2) > 0 && bikes[0].ID == bikes2[0].ID {
		t.Error("分页返回了重复数据")
	}
}

func TestBrands_Distinct(t *testing.T) {
	db := setupBikeTestDB(t)
	svc := NewBikeService(db)
	seedBrowseBikes(t, db)

	brands, err := svc.Brands()
	if err != nil {
		t.Fatalf("查询品牌失败: %v", err)
	}
	// Honda出现两次但去重后只留一个
	if len(brands) != 3 {
		t.Errorf("brands = %v, want 3 distinct", brands)
	}
}

// ==================== 归属校验 ====================

func TestOwnedBy(t *testing.T) {
	db := setupBikeTestDB(t)
	svc := NewBikeService(db)
	seedBrowseBikes(t, db)

	if _, err := svc.OwnedBy("b1", "s1"); err != nil {
		t.Errorf("卖家本人应该通过: %v", err)
	}
	if _, err := svc.OwnedBy("b1", "s2"); err == nil {
		t.Error("非卖家应该被拒绝")
	}
	if _, err := svc.OwnedBy("missing", "s1"); err == nil {
		t.Error("不存在的车辆应该返回错误")
	}
}

// ==================== 图片序列化 ====================

func TestBikeImageList_RoundTrip(t *testing.T) {
	bike := &models.Bike{}
	bike.SetImageList([]string{"/uploads/a.jpg", "/uploads/b.jpg"})

	images := bike.ImageList()
	if len(images) != 2 {
		t.Fatalf("images count = %d, want 2", len(images))
	}
	if images[0] != "/uploads/a.jpg" {
		t.Errorf("images[0] = %s", images[0])
	}

	empty := &models.Bike{}
	if len(empty.ImageList()) != 0 {
		t.Error("空Images字段应该返回空列表")
	}
}
