package service

import (
	"strings"

	"github.com/promo-next/internal/constants"
	"github.com/promo-next/internal/models"

	"github.com/shopspring/decimal"
)

// DiscountRule 折扣规则（比例与金额二选一）
type DiscountRule struct {
	Type    string
	Percent int
	Amount  models.Money
}

// Normalize 归一化折扣类型
func (r DiscountRule) Normalize() DiscountRule {
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	return r
}

// Validate 校验折扣规则
// 比例折扣限定在 1-99，金额折扣必须为正数，两种模式互斥。
func (r DiscountRule) Validate() error {
	rule := r.Normalize()
	switch rule.Type {
	case constants.DiscountTypePercent:
		if rule.Percent < constants.DiscountPercentMin || rule.Percent > constants.DiscountPercentMax {
			return ErrDiscountRuleInvalid
		}
		if !rule.Amount.Decimal.IsZero() {
			return ErrDiscountRuleInvalid
		}
		return nil
	case constants.DiscountTypeFixed:
		if rule.Amount.Decimal.LessThanOrEqual(decimal.Zero) {
			return ErrDiscountRuleInvalid
		}
		if rule.Percent != 0 {
			return ErrDiscountRuleInvalid
		}
		return nil
	default:
		return ErrDiscountRuleInvalid
	}
}

// discountedUnitPrice 计算折后单价
// 先按比例折扣再减固定金额，结果不会低于零。
func discountedUnitPrice(price models.Money, percent int, amount models.Money) models.Money {
	result := price.Decimal
	if percent > 0 {
		factor := decimal.NewFromInt(100 - int64(percent)).Div(decimal.NewFromInt(100))
		result = result.Mul(factor)
	}
	if amount.Decimal.GreaterThan(decimal.Zero) {
		result = result.Sub(amount.Decimal)
	}
	if result.LessThan(decimal.Zero) {
		result = decimal.Zero
	}
	return models.NewMoneyFromDecimal(result)
}
