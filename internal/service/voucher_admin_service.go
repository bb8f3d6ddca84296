package service

import (
	"strings"
	"time"

	"github.com/promo-next/internal/constants"
	"github.com/promo-next/internal/models"
	"github.com/promo-next/internal/repository"

	"github.com/shopspring/decimal"
)

// VoucherAdminService 优惠码管理服务
type VoucherAdminService struct {
	repo repository.VoucherRepository
}

// NewVoucherAdminService 创建优惠码管理服务
func NewVoucherAdminService(repo repository.VoucherRepository) *VoucherAdminService {
	return &VoucherAdminService{repo: repo}
}

// CreateVoucherInput 创建优惠码输入
type CreateVoucherInput struct {
	Code           string
	Name           string
	StartsAt       time.Time
	EndsAt         time.Time
	TotalUses      *int
	PerUserLimit   int
	MinOrderAmount models.Money
	Discount       DiscountRule
	Scope          string
}

// UpdateVoucherInput 更新优惠码输入
type UpdateVoucherInput struct {
	Code           string
	Name           string
	StartsAt       time.Time
	EndsAt         time.Time
	RemainingUses  *int
	PerUserLimit   int
	MinOrderAmount models.Money
	Discount       DiscountRule
	Scope          string
}

func validateVoucherScope(scope string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(scope))
	if normalized != constants.VoucherScopeInvoice && normalized != constants.VoucherScopeShipping {
		return "", ErrVoucherInvalid
	}
	return normalized, nil
}

// Create 创建优惠码
func (s *VoucherAdminService) Create(input CreateVoucherInput) (*models.Voucher, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, ErrVoucherInvalid
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrVoucherInvalid
	}
	if input.StartsAt.IsZero() || input.EndsAt.IsZero() || !input.EndsAt.After(input.StartsAt) {
		return nil, ErrVoucherInvalid
	}
	if input.TotalUses != nil && *input.TotalUses < 0 {
		return nil, ErrVoucherInvalid
	}
	if input.PerUserLimit < 0 {
		return nil, ErrVoucherInvalid
	}
	if input.MinOrderAmount.Decimal.LessThan(decimal.Zero) {
		return nil, ErrVoucherInvalid
	}
	rule := input.Discount.Normalize()
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	scope, err := validateVoucherScope(input.Scope)
	if err != nil {
		return nil, err
	}

	exist, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrVoucherDuplicate
	}

	voucher := &models.Voucher{
		Code:            code,
		Name:            name,
		StartsAt:        input.StartsAt,
		EndsAt:          input.EndsAt,
		RemainingUses:   input.TotalUses,
		PerUserLimit:    input.PerUserLimit,
		MinOrderAmount:  input.MinOrderAmount,
		DiscountType:    rule.Type,
		DiscountPercent: rule.Percent,
		DiscountAmount:  rule.Amount,
		Scope:           scope,
	}

	if err := s.repo.Create(voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

// Update 更新优惠码
func (s *VoucherAdminService) Update(id uint, input UpdateVoucherInput) (*models.Voucher, error) {
	if id == 0 {
		return nil, ErrVoucherInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrVoucherNotFound
	}

	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, ErrVoucherInvalid
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrVoucherInvalid
	}
	if input.StartsAt.IsZero() || input.EndsAt.IsZero() || !input.EndsAt.After(input.StartsAt) {
		return nil, ErrVoucherInvalid
	}
	if input.RemainingUses != nil && *input.RemainingUses < 0 {
		return nil, ErrVoucherInvalid
	}
	if input.PerUserLimit < 0 {
		return nil, ErrVoucherInvalid
	}
	if input.MinOrderAmount.Decimal.LessThan(decimal.Zero) {
		return nil, ErrVoucherInvalid
	}
	rule := input.Discount.Normalize()
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	scope, err := validateVoucherScope(input.Scope)
	if err != nil {
		return nil, err
	}

	if code != existing.Code {
		dup, err := s.repo.GetByCode(code)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, ErrVoucherDuplicate
		}
	}

	existing.Code = code
	existing.Name = name
	existing.StartsAt = input.StartsAt
	existing.EndsAt = input.EndsAt
	existing.RemainingUses = input.RemainingUses
	existing.PerUserLimit = input.PerUserLimit
	existing.MinOrderAmount = input.MinOrderAmount
	existing.DiscountType = rule.Type
	existing.DiscountPercent = rule.Percent
	existing.DiscountAmount = rule.Amount
	existing.Scope = scope

	if err := s.repo.Update(existing); err != nil {
		return nil, ErrVoucherUpdateFailed
	}
	return existing, nil
}

// Delete 删除优惠码
func (s *VoucherAdminService) Delete(id uint) error {
	if id == 0 {
		return ErrVoucherInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrVoucherNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return ErrVoucherDeleteFailed
	}
	return nil
}

// Get 获取优惠码详情
func (s *VoucherAdminService) Get(id uint) (*models.Voucher, error) {
	if id == 0 {
		return nil, ErrVoucherInvalid
	}
	voucher, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, ErrVoucherNotFound
	}
	return voucher, nil
}

// List 获取优惠码列表
func (s *VoucherAdminService) List(filter repository.VoucherListFilter) ([]models.Voucher, int64, error) {
	return s.repo.List(filter)
}
