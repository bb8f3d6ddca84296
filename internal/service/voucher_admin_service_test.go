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

func setupVoucherAdminServiceTest(t *testing.T) (*VoucherAdminService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:voucher_admin_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Voucher{}, &models.VoucherUsage{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewVoucherAdminService(repository.NewVoucherRepository(db)), db
}

func validCreateVoucherInput(code string) CreateVoucherInput {
	now := time.Now()
	return CreateVoucherInput{
		Code:     code,
		Name:     "测试优惠码",
		StartsAt: now,
		EndsAt:   now.Add(24 * time.Hour),
		Discount: DiscountRule{Type: "percent", Percent: 15},
		Scope:    "invoice",
	}
}

func TestVoucherAdminServiceCreate(t *testing.T) {
	svc, _ := setupVoucherAdminServiceTest(t)

	input := validCreateVoucherInput("NEW15")
	input.TotalUses = intp(100)
	input.PerUserLimit = 2

	voucher, err := svc.Create(input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if voucher.ID == 0 {
		t.Fatalf("expected persisted voucher")
	}
	if voucher.RemainingUses == nil || *voucher.RemainingUses != 100 {
		t.Fatalf("unexpected remaining uses: %+v", voucher.RemainingUses)
	}
	if voucher.Scope != "invoice" || voucher.DiscountType != "percent" {
		t.Fatalf("unexpected voucher fields: %+v", voucher)
	}
}

func TestVoucherAdminServiceCreateDuplicateCode(t *testing.T) {
	svc, _ := setupVoucherAdminServiceTest(t)

	if _, err := svc.Create(validCreateVoucherInput("DUP")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := svc.Create(validCreateVoucherInput("DUP"))
	if !errors.Is(err, ErrVoucherDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestVoucherAdminServiceCreateInvalidInput(t *testing.T) {
	svc, _ := setupVoucherAdminServiceTest(t)

	cases := []struct {
		name   string
		mutate func(*CreateVoucherInput)
	}{
		{name: "blank code", mutate: func(in *CreateVoucherInput) { in.Code = "  " }},
		{name: "blank name", mutate: func(in *CreateVoucherInput) { in.Name = "" }},
		{name: "window inverted", mutate: func(in *CreateVoucherInput) { in.EndsAt = in.StartsAt.Add(-time.Hour) }},
		{name: "negative total", mutate: func(in *CreateVoucherInput) { in.TotalUses = intp(-1) }},
		{name: "negative per-user", mutate: func(in *CreateVoucherInput) { in.PerUserLimit = -1 }},
		{name: "bad scope", mutate: func(in *CreateVoucherInput) { in.Scope = "cart" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateVoucherInput("X-" + tc.name)
			tc.mutate(&input)
			if _, err := svc.Create(input); !errors.Is(err, ErrVoucherInvalid) {
				t.Fatalf("expected ErrVoucherInvalid, got %v", err)
			}
		})
	}
}

func TestVoucherAdminServiceUpdate(t *testing.T) {
	svc, _ := setupVoucherAdminServiceTest(t)

	created, err := svc.Create(validCreateVoucherInput("BEFORE"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	now := time.Now()
	updated, err := svc.Update(created.ID, UpdateVoucherInput{
		Code:          "AFTER",
		Name:          "改名后的优惠码",
		StartsAt:      now,
		EndsAt:        now.Add(48 * time.Hour),
		RemainingUses: intp(7),
		Discount:      DiscountRule{Type: "fixed", Amount: models.NewMoneyFromInt(20)},
		Scope:         "shipping",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Code != "AFTER" || updated.Scope != "shipping" || updated.DiscountType != "fixed" {
		t.Fatalf("unexpected updated voucher: %+v", updated)
	}
	if updated.RemainingUses == nil || *updated.RemainingUses != 7 {
		t.Fatalf("unexpected remaining uses: %+v", updated.RemainingUses)
	}
}

func TestVoucherAdminServiceUpdateCodeConflict(t *testing.T) {
	svc, _ := setupVoucherAdminServiceTest(t)

	if _, err := svc.Create(validCreateVoucherInput("TAKEN")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	other, err := svc.Create(validCreateVoucherInput("OTHER"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	input := UpdateVoucherInput{
		Code:     "TAKEN",
		Name:     other.Name,
		StartsAt: other.StartsAt,
		EndsAt:   other.EndsAt,
		Discount: DiscountRule{Type: "percent", Percent: 15},
		Scope:    other.Scope,
	}
	if _, err := svc.Update(other.ID, input); !errors.Is(err, ErrVoucherDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestVoucherAdminServiceDelete(t *testing.T) {
	svc, _ := setupVoucherAdminServiceTest(t)

	created, err := svc.Create(validCreateVoucherInput("GONE"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(created.ID); !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
	if err := svc.Delete(created.ID); !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("expected not-found on repeated delete, got %v", err)
	}
}

func TestVoucherAdminServiceList(t *testing.T) {
	svc, _ := setupVoucherAdminServiceTest(t)

	invoice := validCreateVoucherInput("L-INVOICE")
	if _, err := svc.Create(invoice); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	shipping := validCreateVoucherInput("L-SHIPPING")
	shipping.Scope = "shipping"
	shipping.Discount = DiscountRule{Type: "fixed", Amount: models.NewMoneyFromInt(10)}
	if _, err := svc.Create(shipping); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	vouchers, total, err := svc.List(repository.VoucherListFilter{Scope: "shipping"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(vouchers) != 1 || vouchers[0].Code != "L-SHIPPING" {
		t.Fatalf("unexpected list result: total=%d vouchers=%+v", total, vouchers)
	}
}
