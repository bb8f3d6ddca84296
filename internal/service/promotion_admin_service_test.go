package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/promo-next/internal/models"
	"github.com/promo-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPromotionAdminServiceTest(t *testing.T) (*PromotionAdminService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:promotion_admin_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	return NewPromotionAdminService(campaignRepo, itemRepo, nil), db
}

func validCreateCampaignInput(code string) CreateCampaignInput {
	now := time.Now()
	return CreateCampaignInput{
		Code:     code,
		Name:     "测试活动",
		StartsAt: now,
		EndsAt:   now.Add(72 * time.Hour),
		Items: []CampaignItemInput{
			{ProductID: "sku-1", Quantity: 100, PerOrderLimit: 2, DiscountPercent: 20},
			{ProductID: "sku-2", Quantity: 50, DiscountAmount: models.NewMoneyFromInt(30)},
		},
	}
}

func TestPromotionAdminServiceCreate(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)

	campaign, err := svc.Create(validCreateCampaignInput("SPRING"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if campaign.ID == 0 || len(campaign.Items) != 2 {
		t.Fatalf("unexpected campaign: %+v", campaign)
	}
	for _, item := range campaign.Items {
		if item.CampaignID != campaign.ID {
			t.Fatalf("item not bound to campaign: %+v", item)
		}
	}
}

func TestPromotionAdminServiceCreateDuplicateCode(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)

	if _, err := svc.Create(validCreateCampaignInput("DUP")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := svc.Create(validCreateCampaignInput("DUP"))
	if !errors.Is(err, ErrCampaignDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestPromotionAdminServiceCreateInvalidItems(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)

	cases := []struct {
		name  string
		items []CampaignItemInput
	}{
		{name: "empty items", items: nil},
		{name: "blank product", items: []CampaignItemInput{{ProductID: " ", Quantity: 1, DiscountPercent: 10}}},
		{name: "duplicate product", items: []CampaignItemInput{
			{ProductID: "sku-1", Quantity: 1, DiscountPercent: 10},
			{ProductID: "sku-1", Quantity: 2, DiscountPercent: 10},
		}},
		{name: "zero quantity", items: []CampaignItemInput{{ProductID: "sku-1", Quantity: 0, DiscountPercent: 10}}},
		{name: "percent overflow", items: []CampaignItemInput{{ProductID: "sku-1", Quantity: 1, DiscountPercent: 100}}},
		{name: "no discount", items: []CampaignItemInput{{ProductID: "sku-1", Quantity: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateCampaignInput("I-" + tc.name)
			input.Items = tc.items
			if _, err := svc.Create(input); !errors.Is(err, ErrCampaignItemInvalid) {
				t.Fatalf("expected ErrCampaignItemInvalid, got %v", err)
			}
		})
	}
}

func TestPromotionAdminServiceUpdateReplacesItems(t *testing.T) {
	svc, db := setupPromotionAdminServiceTest(t)

	created, err := svc.Create(validCreateCampaignInput("REPLACE"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	now := time.Now()
	updated, err := svc.Update(created.ID, UpdateCampaignInput{
		Code:       "REPLACE",
		Name:       "改名后的活动",
		StartsAt:   now,
		EndsAt:     now.Add(24 * time.Hour),
		IsFeatured: true,
		Items: []CampaignItemInput{
			{ProductID: "sku-3", Quantity: 10, DiscountPercent: 30},
		},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.IsFeatured || updated.Name != "改名后的活动" {
		t.Fatalf("unexpected campaign: %+v", updated)
	}

	// 旧明细整组删除，只保留新明细
	var items []models.CampaignItem
	if err := db.Where("campaign_id = ?", created.ID).Find(&items).Error; err != nil {
		t.Fatalf("load items failed: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != "sku-3" || items[0].RemainingQty != 10 {
		t.Fatalf("unexpected items after replace: %+v", items)
	}
}

func TestPromotionAdminServiceUpdateCodeConflict(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)

	if _, err := svc.Create(validCreateCampaignInput("TAKEN")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	other, err := svc.Create(validCreateCampaignInput("OTHER"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	input := UpdateCampaignInput{
		Code:     "TAKEN",
		Name:     other.Name,
		StartsAt: other.StartsAt,
		EndsAt:   other.EndsAt,
		Items: []CampaignItemInput{
			{ProductID: "sku-1", Quantity: 1, DiscountPercent: 10},
		},
	}
	if _, err := svc.Update(other.ID, input); !errors.Is(err, ErrCampaignDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestPromotionAdminServiceDeleteRemovesItems(t *testing.T) {
	svc, db := setupPromotionAdminServiceTest(t)

	created, err := svc.Create(validCreateCampaignInput("GONE"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := svc.Get(created.ID); !errors.Is(err, ErrCampaignNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
	var count int64
	if err := db.Model(&models.CampaignItem{}).Where("campaign_id = ?", created.ID).Count(&count).Error; err != nil {
		t.Fatalf("count items failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("items should be removed with campaign, got %d", count)
	}
}

func TestPromotionAdminServiceList(t *testing.T) {
	svc, _ := setupPromotionAdminServiceTest(t)

	plain := validCreateCampaignInput("L-PLAIN")
	if _, err := svc.Create(plain); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	featured := validCreateCampaignInput("L-FEATURED")
	featured.IsFeatured = true
	if _, err := svc.Create(featured); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	flag := true
	campaigns, total, err := svc.List(repository.CampaignListFilter{IsFeatured: &flag})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(campaigns) != 1 || campaigns[0].Code != "L-FEATURED" {
		t.Fatalf("unexpected list result: total=%d campaigns=%+v", total, campaigns)
	}
}
