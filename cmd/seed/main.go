package main

import (
	"fmt"
	"time"

	"github.com/promo-next/internal/config"
	"github.com/promo-next/internal/logger"
	"github.com/promo-next/internal/models"

	"github.com/shopspring/decimal"
)

func intPtr(v int) *int {
	return &v
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	now := time.Now()

	// 添加优惠码
	vouchers := []models.Voucher{
		{
			Code:            "WELCOME10",
			Name:            "新客九折券",
			StartsAt:        now.AddDate(0, 0, -1),
			EndsAt:          now.AddDate(0, 1, 0),
			RemainingUses:   intPtr(1000),
			PerUserLimit:    1,
			MinOrderAmount:  models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			DiscountType:    "percent",
			DiscountPercent: 10,
			Scope:           "invoice",
		},
		{
			Code:           "FREESHIP",
			Name:           "免运费券",
			StartsAt:       now.AddDate(0, 0, -1),
			EndsAt:         now.AddDate(0, 3, 0),
			PerUserLimit:   3,
			DiscountType:   "fixed",
			DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
			Scope:          "shipping",
		},
		{
			Code:           "SAVE20",
			Name:           "满减 20",
			StartsAt:       now.AddDate(0, 0, -1),
			EndsAt:         now.AddDate(0, 0, 14),
			RemainingUses:  intPtr(200),
			MinOrderAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			DiscountType:   "fixed",
			DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
			Scope:          "invoice",
		},
	}

	for _, v := range vouchers {
		var existing models.Voucher
		if err := models.DB.Where("code = ?", v.Code).First(&existing).Error; err != nil {
			// 不存在则创建
			if err := models.DB.Create(&v).Error; err != nil {
				stdLog.Printf("Failed to create voucher %s: %v", v.Code, err)
			} else {
				stdLog.Printf("Created voucher: %s", v.Code)
			}
		} else {
			stdLog.Printf("Voucher already exists: %s", v.Code)
		}
	}

	// 添加促销活动及商品配额
	campaigns := []models.Campaign{
		{
			Code:       "FLASH-WEEK",
			Name:       "限时闪购周",
			StartsAt:   now.AddDate(0, 0, -1),
			EndsAt:     now.AddDate(0, 0, 6),
			IsFeatured: true,
			Items: []models.CampaignItem{
				{
					ProductID:       "sku-earphones",
					RemainingQty:    500,
					PerOrderLimit:   2,
					DiscountPercent: 20,
				},
				{
					ProductID:       "sku-smartwatch",
					RemainingQty:    200,
					PerOrderLimit:   1,
					DiscountPercent: 15,
					DiscountAmount:  models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
				},
			},
		},
		{
			Code:     "CLEARANCE",
			Name:     "清仓专场",
			StartsAt: now.AddDate(0, 0, -7),
			EndsAt:   now.AddDate(0, 1, 0),
			Items: []models.CampaignItem{
				{
					ProductID:      "sku-powerbank",
					RemainingQty:   1000,
					PerOrderLimit:  5,
					DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
				},
			},
		},
	}

	for _, campaign := range campaigns {
		var existing models.Campaign
		if err := models.DB.Where("code = ?", campaign.Code).First(&existing).Error; err != nil {
			// 不存在则创建（关联配额随活动一并写入）
			if err := models.DB.Create(&campaign).Error; err != nil {
				stdLog.Printf("Failed to create campaign %s: %v", campaign.Code, err)
			} else {
				stdLog.Printf("Created campaign: %s (%d items)", campaign.Code, len(campaign.Items))
			}
		} else {
			stdLog.Printf("Campaign already exists: %s", campaign.Code)
		}
	}

	fmt.Println("\n✅ Test data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Vouchers (percent/fixed, invoice/shipping)")
	fmt.Println("- 2 Campaigns with 3 campaign items")
}
