package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/promo-next/internal/models"
	"github.com/promo-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPromotionServiceTest(t *testing.T) (*PromotionService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:promotion_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Campaign{}, &models.CampaignItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	campaignRepo := repository.NewCampaignRepository(db)
	itemRepo := repository.NewCampaignItemRepository(db)
	return NewPromotionService(campaignRepo, itemRepo), db
}

func createTestCampaign(t *testing.T, db *gorm.DB, code string, startsAt, endsAt time.Time, items ...models.CampaignItem) *models.Campaign {
	t.Helper()
	campaign := &models.Campaign{
		Code:     code,
		Name:     "测试活动 " + code,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Items:    items,
	}
	if err := db.Create(campaign).Error; err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}
	return campaign
}

func itemRemaining(t *testing.T, db *gorm.DB, productID string) int {
	t.Helper()
	var item models.CampaignItem
	if err := db.Where("product_id = ?", productID).First(&item).Error; err != nil {
		t.Fatalf("load campaign item failed: %v", err)
	}
	return item.RemainingQty
}

func TestPromotionServiceApplyToLinesPricing(t *testing.T) {
	svc, db := setupPromotionServiceTest(t)
	now := time.Now()
	createTestCampaign(t, db, "PRICE", now.Add(-time.Hour), now.Add(time.Hour), models.CampaignItem{
		ProductID:       "sku-1",
		RemainingQty:    10,
		DiscountPercent: 20,
		DiscountAmount:  models.NewMoneyFromInt(50),
	})

	priced, err := svc.ApplyToLines([]PromotionLine{
		{ProductID: "sku-1", Quantity: 2, UnitPrice: models.NewMoneyFromInt(1000)},
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if len(priced) != 1 {
		t.Fatalf("expected 1 priced line, got %d", len(priced))
	}
	// 1000 打八折 800，再减 50 得 750，两件合计 1500
	if !priced[0].DiscountedUnitPrice.Decimal.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("unexpected unit price: %s", priced[0].DiscountedUnitPrice.String())
	}
	if !priced[0].LineTotal.Decimal.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("unexpected line total: %s", priced[0].LineTotal.String())
	}
	if got := itemRemaining(t, db, "sku-1"); got != 8 {
		t.Fatalf("remaining want 8 got %d", got)
	}
}

func TestPromotionServiceApplyToLinesPerOrderLimit(t *testing.T) {
	svc, db := setupPromotionServiceTest(t)
	now := time.Now()
	createTestCampaign(t, db, "LIMIT", now.Add(-time.Hour), now.Add(time.Hour), models.CampaignItem{
		ProductID:       "sku-lim",
		RemainingQty:    100,
		PerOrderLimit:   2,
		DiscountPercent: 10,
	})

	_, err := svc.ApplyToLines([]PromotionLine{
		{ProductID: "sku-lim", Quantity: 3, UnitPrice: models.NewMoneyFromInt(100)},
	})
	if !errors.Is(err, ErrPromotionOrderLimit) {
		t.Fatalf("expected order limit error, got %v", err)
	}
	if got := itemRemaining(t, db, "sku-lim"); got != 100 {
		t.Fatalf("remaining should be untouched, got %d", got)
	}
}

func TestPromotionServiceApplyToLinesAggregatesDuplicates(t *testing.T) {
	svc, db := setupPromotionServiceTest(t)
	now := time.Now()
	createTestCampaign(t, db, "AGG", now.Add(-time.Hour), now.Add(time.Hour), models.CampaignItem{
		ProductID:       "sku-agg",
		RemainingQty:    10,
		PerOrderLimit:   3,
		DiscountPercent: 10,
	})

	// 同一商品拆成两行，合计数量超过单笔上限
	_, err := svc.ApplyToLines([]PromotionLine{
		{ProductID: "sku-agg", Quantity: 2, UnitPrice: models.NewMoneyFromInt(100)},
		{ProductID: "sku-agg", Quantity: 2, UnitPrice: models.NewMoneyFromInt(100)},
	})
	if !errors.Is(err, ErrPromotionOrderLimit) {
		t.Fatalf("expected order limit error, got %v", err)
	}

	// 未超限时两行各自计价，配额按合计一次性扣减
	priced, err := svc.ApplyToLines([]PromotionLine{
		{ProductID: "sku-agg", Quantity: 1, UnitPrice: models.NewMoneyFromInt(100)},
		{ProductID: "sku-agg", Quantity: 2, UnitPrice: models.NewMoneyFromInt(200)},
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if len(priced) != 2 {
		t.Fatalf("expected 2 priced lines, got %d", len(priced))
	}
	if got := itemRemaining(t, db, "sku-agg"); got != 7 {
		t.Fatalf("remaining want 7 got %d", got)
	}
}

func TestPromotionServiceApplyToLinesNoPartialDecrement(t *testing.T) {
	svc, db := setupPromotionServiceTest(t)
	now := time.Now()
	createTestCampaign(t, db, "PARTIAL", now.Add(-time.Hour), now.Add(time.Hour),
		models.CampaignItem{ProductID: "sku-ok", RemainingQty: 10, DiscountPercent: 10},
		models.CampaignItem{ProductID: "sku-low", RemainingQty: 1, DiscountPercent: 10},
	)

	_, err := svc.ApplyToLines([]PromotionLine{
		{ProductID: "sku-ok", Quantity: 2, UnitPrice: models.NewMoneyFromInt(100)},
		{ProductID: "sku-low", Quantity: 5, UnitPrice: models.NewMoneyFromInt(100)},
	})
	if !errors.Is(err, ErrPromotionInsufficient) {
		t.Fatalf("expected insufficient error, got %v", err)
	}
	var lineErr *LineError
	if !errors.As(err, &lineErr) || lineErr.ProductID != "sku-low" {
		t.Fatalf("expected line error for sku-low, got %v", err)
	}

	// 整单失败不留下任何扣减
	if got := itemRemaining(t, db, "sku-ok"); got != 10 {
		t.Fatalf("sku-ok remaining want 10 got %d", got)
	}
	if got := itemRemaining(t, db, "sku-low"); got != 1 {
		t.Fatalf("sku-low remaining want 1 got %d", got)
	}
}

func TestPromotionServiceApplyToLinesConcurrentNoOversell(t *testing.T) {
	svc, db := setupPromotionServiceTest(t)
	now := time.Now()
	createTestCampaign(t, db, "RACE", now.Add(-time.Hour), now.Add(time.Hour), models.CampaignItem{
		ProductID:       "sku-race",
		RemainingQty:    5,
		DiscountPercent: 10,
	})

	const workers = 12
	var wg sync.WaitGroup
	var successes int64
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ApplyToLines([]PromotionLine{
				{ProductID: "sku-race", Quantity: 1, UnitPrice: models.NewMoneyFromInt(100)},
			}); err == nil {
				atomic.AddInt64(&successes, 1)
			}
		}()
	}
	wg.Wait()

	remaining := itemRemaining(t, db, "sku-race")
	if remaining < 0 {
		t.Fatalf("remaining must never go negative, got %d", remaining)
	}
	// 成功扣减的总次数必须与配额消耗完全一致，不允许超卖或丢更新
	if got := int(atomic.LoadInt64(&successes)); got != 5-remaining {
		t.Fatalf("successes want %d got %d", 5-remaining, got)
	}
	if remaining != 0 {
		t.Fatalf("remaining want 0 got %d", remaining)
	}
}

func TestPromotionServiceApplyToLinesNoPromotion(t *testing.T) {
	svc, _ := setupPromotionServiceTest(t)

	_, err := svc.ApplyToLines([]PromotionLine{
		{ProductID: "sku-none", Quantity: 1, UnitPrice: models.NewMoneyFromInt(100)},
	})
	if !errors.Is(err, ErrNoValidPromotion) {
		t.Fatalf("expected no-valid-promotion error, got %v", err)
	}
}

func TestPromotionServiceApplyToLinesInvalidLine(t *testing.T) {
	svc, _ := setupPromotionServiceTest(t)

	cases := []PromotionLine{
		{ProductID: "  ", Quantity: 1, UnitPrice: models.NewMoneyFromInt(100)},
		{ProductID: "sku-1", Quantity: 0, UnitPrice: models.NewMoneyFromInt(100)},
		{ProductID: "sku-1", Quantity: 1, UnitPrice: models.NewMoneyFromInt(-1)},
	}
	for _, line := range cases {
		if _, err := svc.ApplyToLines([]PromotionLine{line}); !errors.Is(err, ErrPromotionLineInvalid) {
			t.Fatalf("expected invalid line error for %+v, got %v", line, err)
		}
	}
}

func TestPromotionServiceReverseLinesAfterExpiry(t *testing.T) {
	svc, db := setupPromotionServiceTest(t)
	now := time.Now()
	createTestCampaign(t, db, "REV", now.Add(-time.Hour), now.Add(time.Hour), models.CampaignItem{
		ProductID:       "sku-rev",
		RemainingQty:    10,
		DiscountPercent: 10,
	})

	if _, err := svc.ApplyToLines([]PromotionLine{
		{ProductID: "sku-rev", Quantity: 3, UnitPrice: models.NewMoneyFromInt(100)},
	}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if got := itemRemaining(t, db, "sku-rev"); got != 7 {
		t.Fatalf("remaining want 7 got %d", got)
	}

	// 活动结束后冲正仍要能回补配额
	if err := db.Model(&models.Campaign{}).
		Where("code = ?", "REV").
		Update("ends_at", now.Add(-time.Minute)).Error; err != nil {
		t.Fatalf("expire campaign failed: %v", err)
	}

	if err := svc.ReverseLines([]PromotionLine{
		{ProductID: "sku-rev", Quantity: 3, UnitPrice: models.NewMoneyFromInt(100)},
	}); err != nil {
		t.Fatalf("reverse failed: %v", err)
	}
	if got := itemRemaining(t, db, "sku-rev"); got != 10 {
		t.Fatalf("remaining want 10 got %d", got)
	}
}

func TestPromotionServiceReverseLinesUnknownProduct(t *testing.T) {
	svc, _ := setupPromotionServiceTest(t)

	err := svc.ReverseLines([]PromotionLine{
		{ProductID: "sku-missing", Quantity: 1, UnitPrice: models.NewMoneyFromInt(100)},
	})
	if !errors.Is(err, ErrNoValidPromotion) {
		t.Fatalf("expected no-valid-promotion error, got %v", err)
	}
}

func TestPromotionServiceGetUsableForProduct(t *testing.T) {
	svc, db := setupPromotionServiceTest(t)
	now := time.Now()
	createTestCampaign(t, db, "ACTIVE", now.Add(-time.Hour), now.Add(time.Hour), models.CampaignItem{
		ProductID:       "sku-act",
		RemainingQty:    5,
		DiscountPercent: 10,
	})
	createTestCampaign(t, db, "ENDED", now.Add(-2*time.Hour), now.Add(-time.Hour), models.CampaignItem{
		ProductID:       "sku-old",
		RemainingQty:    5,
		DiscountPercent: 10,
	})

	item, err := svc.GetUsableForProduct("sku-act")
	if err != nil {
		t.Fatalf("get usable failed: %v", err)
	}
	if item == nil || item.ProductID != "sku-act" {
		t.Fatalf("unexpected item: %+v", item)
	}

	item, err = svc.GetUsableForProduct("sku-old")
	if err != nil {
		t.Fatalf("get usable failed: %v", err)
	}
	if item != nil {
		t.Fatalf("expired campaign item should not be usable: %+v", item)
	}

	if _, err := svc.GetUsableForProduct("  "); !errors.Is(err, ErrPromotionLineInvalid) {
		t.Fatalf("expected invalid line error, got %v", err)
	}
}

func TestPromotionServiceProductsOnPromotion(t *testing.T) {
	svc, db := setupPromotionServiceTest(t)
	now := time.Now()
	createTestCampaign(t, db, "SET", now.Add(-time.Hour), now.Add(time.Hour),
		models.CampaignItem{ProductID: "sku-a", RemainingQty: 5, DiscountPercent: 10},
		models.CampaignItem{ProductID: "sku-b", RemainingQty: 5, DiscountPercent: 10},
	)

	ids, err := svc.ProductsOnPromotion(context.Background())
	if err != nil {
		t.Fatalf("products on promotion failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 products, got %v", ids)
	}
}
