package controllers

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/config"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/services"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/utils"

	"github.com/gin-gonic/gin"
)

var ctx = context.Background()

// BikeController 车辆控制器
type BikeController struct {
	bikeService *services.BikeService
	// 统计更新队列
	statsQueue chan BikeStatUpdate
	workerWg   sync.WaitGroup
}

// BikeStatUpdate 车辆统计更新任务
type BikeStatUpdate struct {
	BikeID string
	Type   string // "view"
}

// NewBikeController 创建车辆控制器实例
func NewBikeController() *BikeController {
	bc := &BikeController{
		bikeService: services.NewBikeService(config.DB),
		statsQueue:  make(chan BikeStatUpdate, 1000), // 缓冲队列
	}

	// 启动统计worker池
	bc.startStatsWorkers()

	return bc
}

// startStatsWorkers 启动统计更新worker池
// 使用goroutine和channel实现异步统计更新
func (bc *BikeController) startStatsWorkers() {
	workerCount := 5

	for i := 0; i < workerCount; i++ {
		bc.workerWg.Add(1)
		go bc.statsWorker(i)
	}
}

// statsWorker 统计更新worker
func (bc *BikeController) statsWorker(workerID int) {
	defer bc.workerWg.Done()

	for stat := range bc.statsQueue {
		bc.updateBikeStats(stat)
	}
}

// updateBikeStats 更新车辆统计信息
func (bc *BikeController) updateBikeStats(stat BikeStatUpdate) {
	switch stat.Type {
	case "view":
		// 原子操作增加浏览次数
		config.DB.Exec("UPDATE bikes SET view_count = view_count + 1 WHERE id = ?", stat.BikeID)

		// 同时更新Redis中的浏览统计（用于排行榜）
		if config.RedisClient != nil {
			config.RedisClient.ZIncrBy(ctx, "rank:bike:views", 1, stat.BikeID)
		}
	}
}

// GetBikes 获取车辆列表
// @Summary 获取车辆列表
// @Description 分页获取车辆列表，支持关键词、分类、品牌、类型和价格区间筛选
// @Tags bikes
// @Accept json
// @Produce json
// @Param q query string false "搜索关键词"
// @Param category query string false "分类"
// @Param brand query string false "品牌"
// @Param listing_type query string false "类型: rent, sale"
// @Param min_price query number false "最低价"
// @Param max_price query number false "最高价"
// @Param status query string false "状态，默认available，all表示全部"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/bikes [get]
func (bc *BikeController) GetBikes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	minPrice, _ := strconv.ParseFloat(c.DefaultQuery("min_price", "0"), 64)
	maxPrice, _ := strconv.ParseFloat(c.DefaultQuery("max_price", "0"), 64)

	filter := &services.BikeFilter{
		Query:       c.Query("q"),
		Category:    c.Query("category"),
		Brand:       c.Query("brand"),
		ListingType: c.Query("listing_type"),
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		Status:      c.Query("status"),
		Page:        page,
		Limit:       limit,
	}

	bikes, total, err := bc.bikeService.List(filter)
	if err != nil {
		utils.InternalError(c, "Failed to get bikes")
		return
	}

	// 记录搜索关键词（热门搜索统计）
	if filter.Query != "" && config.RedisClient != nil {
		go func(q string) {
			config.RedisClient.ZIncrBy(ctx, "search:hot", 1, q)
			config.RedisClient.Expire(ctx, "search:hot", time.Hour*24)
		}(filter.Query)
	}

	utils.Paginate(c, bikes, total, page, limit)
}

// GetBrands 获取品牌列表
// @Summary 获取品牌列表
// @Description 获取所有在售车辆的品牌（去重）
// @Tags bikes
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/bikes/brands [get]
func (bc *BikeController) GetBrands(c *gin.Context) {
	// 先从Redis获取缓存
	cacheKey := "bikes:brands"
	if config.RedisClient != nil {
		cached, err := config.RedisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var brands []string
			if json.Unmarshal([]byte(cached), &brands) == nil {
				utils.Success(c, gin.H{"brands": brands})
				return
			}
		}
	}

	brands, err := bc.bikeService.Brands()
	if err != nil {
		utils.InternalError(c, "Failed to get brands")
		return
	}

	// 异步缓存到Redis
	go func() {
		if config.RedisClient != nil {
			data, _ := json.Marshal(brands)
			config.RedisClient.Set(ctx, cacheKey, data, time.Minute*10)
		}
	}()

	utils.Success(c, gin.H{"brands": brands})
}

// GetBike 获取车辆详情
// @Summary 获取车辆详情
// @Description 根据车辆ID获取详细信息
// @Tags bikes
// @Produce json
// @Param id path string true "车辆ID"
// @Success 200 {object} models.Bike
// @Router /api/bikes/{id} [get]
func (bc *BikeController) GetBike(c *gin.Context) {
	bikeID := c.Param("id")

	// 先尝试从Redis缓存获取
	cacheKey := "bike:" + bikeID
	if config.RedisClient != nil {
		cached, err := config.RedisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var bike models.Bike
			if json.Unmarshal([]byte(cached), &bike) == nil {
				// 异步更新浏览统计（不阻塞响应）
				bc.statsQueue <- BikeStatUpdate{BikeID: bikeID, Type: "view"}
				utils.Success(c, bike)
				return
			}
		}
	}

	// 缓存未命中，从数据库查询
	var bike models.Bike
	if err := config.DB.Preload("Seller").First(&bike, "id = ?", bikeID).Error; err != nil {
		utils.NotFound(c, "Bike not found")
		return
	}

	// 异步更新浏览统计
	bc.statsQueue <- BikeStatUpdate{BikeID: bikeID, Type: "view"}

	// 异步缓存到Redis
	go func() {
		if config.RedisClient != nil {
			data, _ := json.Marshal(bike)
			config.RedisClient.Set(ctx, cacheKey, data, time.Minute*10)
		}
	}()

	utils.Success(c, bike)
}

// CreateBike 发布车辆
// @Summary 发布车辆
// @Description 发布出租或出售车辆，multipart表单提交，最多4张图片
// @Tags bikes
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Success 200 {object} models.Bike
// @Router /api/bikes [post]
func (bc *BikeController) CreateBike(c *gin.Context) {
	userID := c.GetString("user_id")

	name := c.PostForm("name")
	if name == "" {
		utils.BadRequest(c, "Name is required")
		return
	}

	listingType := c.PostForm("listing_type")
	if listingType != models.ListingTypeRent && listingType != models.ListingTypeSale {
		utils.BadRequest(c, "Listing type must be rent or sale")
		return
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price <= 0 {
		utils.BadRequest(c, "Price must be a positive number")
		return
	}

	year, _ := strconv.Atoi(c.PostForm("year"))
	engineCC, _ := strconv.Atoi(c.PostForm("engine_cc"))
	mileage, _ := strconv.Atoi(c.PostForm("mileage"))

	// 检查图片数量上限（上传前检查，避免白传）
	form, _ := c.MultipartForm()
	var imageURLs []string
	if form != nil && len(form.File["images"]) > 0 {
		if len(form.File["images"]) > models.MaxBikeImages {
			utils.BadRequest(c, services.ErrTooManyImages.Error())
			return
		}

		uploader := utils.NewFileUploader()
		results, err := uploader.UploadFiles(c, "images")
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
		for _, r := range results {
			imageURLs = append(imageURLs, r.URL)
		}
	}

	bike := models.Bike{
		Name:        utils.SanitizeString(name),
		Brand:       c.PostForm("brand"),
		Model:       c.PostForm("model"),
		Year:        year,
		EngineCC:    engineCC,
		Mileage:     mileage,
		ListingType: listingType,
		Price:       price,
		Category:    c.PostForm("category"),
		Condition:   c.PostForm("condition"),
		Status:      models.StatusPending, // 新发布等待经销商审核
		SellerID:    userID,
	}
	bike.SetImageList(imageURLs)

	if err := config.DB.Create(&bike).Error; err != nil {
		utils.InternalError(c, "Failed to create bike")
		return
	}

	utils.SuccessWithMessage(c, "Bike submitted for review", bike)
}

// UpdateBike 更新车辆
// @Summary 更新车辆
// @Description 更新车辆信息，新图片与已有图片合并，总数不超过4张
// @Tags bikes
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param id path string true "车辆ID"
// @Success 200 {object} models.Bike
// @Router /api/bikes/{id} [put]
func (bc *BikeController) UpdateBike(c *gin.Context) {
	userID := c.GetString("user_id")
	bikeID := c.Param("id")

	bike, err := bc.bikeService.OwnedBy(bikeID, userID)
	if err != nil {
		utils.NotFound(c, err.Error())
		return
	}

	// 构建更新map
	updates := make(map[string]interface{})
	if name := c.PostForm("name"); name != "" {
		updates["name"] = utils.SanitizeString(name)
	}
	if brand := c.PostForm("brand"); brand != "" {
		updates["brand"] = brand
	}
	if model := c.PostForm("model"); model != "" {
		updates["model"] = model
	}
	if category := c.PostForm("category"); category != "" {
		updates["category"] = category
	}
	if condition := c.PostForm("condition"); condition != "" {
		updates["condition"] = condition
	}
	if priceStr := c.PostForm("price"); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			utils.BadRequest(c, "Price must be a positive number")
			return
		}
		updates["price"] = price
	}

	// 新图片与已有图片合并，超限时整个请求失败，不保留已上传部分
	form, _ := c.MultipartForm()
	if form != nil && len(form.File["images"]) > 0 {
		existing := bike.ImageList()
		if len(existing)+len(form.File["images"]) > models.MaxBikeImages {
			utils.BadRequest(c, services.ErrTooManyImages.Error())
			return
		}

		uploader := utils.NewFileUploader()
		results, err := uploader.UploadFiles(c, "images")
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}

		incoming := make([]string, 0, len(results))
		for _, r := range results {
			incoming = append(incoming, r.URL)
		}

		merged, err := services.MergeImages(existing, incoming)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}

		data, _ := json.Marshal(merged)
		updates["images"] = string(data)
	}

	if len(updates) > 0 {
		if err := config.DB.Model(bike).Updates(updates).Error; err != nil {
			utils.InternalError(c, "Failed to update bike")
			return
		}
	}

	// 删除详情缓存
	go func() {
		if config.RedisClient != nil {
			config.RedisClient.Del(ctx, "bike:"+bikeID)
			config.RedisClient.Del(ctx, "bikes:brands")
		}
	}()

	config.DB.First(bike, "id = ?", bikeID)
	utils.Success(c, bike)
}

// DeleteBike 删除车辆
// @Summary 删除车辆
// @Description 删除自己发布的车辆（软删除）
// @Tags bikes
// @Produce json
// @Security Bearer
// @Param id path string true "车辆ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/bikes/{id} [delete]
func (bc *BikeController) DeleteBike(c *gin.Context) {
	userID := c.GetString("user_id")
	bikeID := c.Param("id")

	bike, err := bc.bikeService.OwnedBy(bikeID, userID)
	if err != nil {
		utils.NotFound(c, err.Error())
		return
	}

	if bike.Status == models.StatusRented || bike.Status == models.StatusPurchased {
		utils.BadRequest(c, "A completed listing cannot be deleted")
		return
	}

	if err := config.DB.Delete(bike).Error; err != nil {
		utils.InternalError(c, "Failed to delete bike")
		return
	}

	// 删除缓存
	go func() {
		if config.RedisClient != nil {
			config.RedisClient.Del(ctx, "bike:"+bikeID)
		}
	}()

	utils.SuccessWithMessage(c, "Bike deleted successfully", nil)
}

// GetMyListings 获取我的发布
// @Summary 获取我的发布
// @Description 当前用户发布的所有车辆，附带每辆车当前可执行的动作
// @Tags bikes
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]interface{}
// @Router /api/bikes/my-listings [get]
func (bc *BikeController) GetMyListings(c *gin.Context) {
	userID := c.GetString("user_id")

	bikes, err := bc.bikeService.MyListings(userID)
	if err != nil {
		utils.InternalError(c, "Failed to get listings")
		return
	}

	// 每条发布附带状态机允许的动作，前端按钮据此渲染
	items := make([]gin.H, 0, len(bikes))
	for i := range bikes {
		items = append(items, gin.H{
			"bike":    bikes[i],
			"actions": services.AvailableActions(&bikes[i]),
		})
	}

	utils.Success(c, gin.H{"listings": items})
}
