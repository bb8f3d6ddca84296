package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/promo-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupVoucherRepositoryTest(t *testing.T) (*GormVoucherRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:voucher_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Voucher{}, &models.VoucherUsage{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewVoucherRepository(db), db
}

func seedVoucher(t *testing.T, db *gorm.DB, code string, remaining *int) *models.Voucher {
	t.Helper()
	now := time.Now()
	voucher := &models.Voucher{
		Code:            code,
		Name:            "优惠码 " + code,
		StartsAt:        now.Add(-time.Hour),
		EndsAt:          now.Add(time.Hour),
		RemainingUses:   remaining,
		DiscountType:    "percent",
		DiscountPercent: 10,
		Scope:           "invoice",
	}
	if err := db.Create(voucher).Error; err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}
	return voucher
}

func TestVoucherRepositoryDecrementGuards(t *testing.T) {
	repo, db := setupVoucherRepositoryTest(t)
	one := 1
	capped := seedVoucher(t, db, "CAPPED", &one)
	uncapped := seedVoucher(t, db, "UNCAPPED", nil)

	rows, err := repo.DecrementRemaining(capped.ID)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("rows want 1 got %d", rows)
	}

	// 扣到 0 后再扣被守卫拦下
	rows, err = repo.DecrementRemaining(capped.ID)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("drained voucher decrement should affect 0 rows, got %d", rows)
	}

	// 不限量优惠码没有额度列可扣
	rows, err = repo.DecrementRemaining(uncapped.ID)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("uncapped voucher decrement should affect 0 rows, got %d", rows)
	}
	rows, err = repo.IncrementRemaining(uncapped.ID)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("uncapped voucher increment should affect 0 rows, got %d", rows)
	}
}

func TestVoucherRepositoryGetByCodeMissing(t *testing.T) {
	repo, _ := setupVoucherRepositoryTest(t)

	voucher, err := repo.GetByCode("NOPE")
	if err != nil {
		t.Fatalf("get by code failed: %v", err)
	}
	if voucher != nil {
		t.Fatalf("missing code should return nil, got %+v", voucher)
	}
}

func TestVoucherRepositoryListActive(t *testing.T) {
	repo, db := setupVoucherRepositoryTest(t)
	now := time.Now()
	live := seedVoucher(t, db, "LIVE", nil)

	past := &models.Voucher{
		Code:            "PAST",
		Name:            "过期优惠码",
		StartsAt:        now.Add(-3 * time.Hour),
		EndsAt:          now.Add(-2 * time.Hour),
		DiscountType:    "percent",
		DiscountPercent: 10,
		Scope:           "invoice",
	}
	if err := db.Create(past).Error; err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}

	vouchers, err := repo.ListActive(now)
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if len(vouchers) != 1 || vouchers[0].ID != live.ID {
		t.Fatalf("unexpected active vouchers: %+v", vouchers)
	}
}
