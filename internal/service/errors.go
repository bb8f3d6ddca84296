package service

import "errors"

// 优惠码相关错误
var (
	ErrVoucherInvalid      = errors.New("voucher invalid")
	ErrVoucherNotFound     = errors.New("voucher not found")
	ErrVoucherExpired      = errors.New("voucher expired")
	ErrVoucherExhausted    = errors.New("voucher exhausted")
	ErrVoucherPerUserLimit = errors.New("voucher per user limit reached")
	ErrVoucherDuplicate    = errors.New("voucher code already exists")
	ErrVoucherUpdateFailed = errors.New("voucher update failed")
	ErrVoucherDeleteFailed = errors.New("voucher delete failed")
)

// 促销活动相关错误
var (
	ErrCampaignInvalid      = errors.New("campaign invalid")
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrCampaignDuplicate    = errors.New("campaign code already exists")
	ErrCampaignItemInvalid  = errors.New("campaign item invalid")
	ErrCampaignCreateFailed = errors.New("campaign create failed")
	ErrCampaignUpdateFailed = errors.New("campaign update failed")
	ErrCampaignDeleteFailed = errors.New("campaign delete failed")
)

// 促销核销相关错误
var (
	ErrPromotionLineInvalid  = errors.New("promotion line invalid")
	ErrNoValidPromotion      = errors.New("no valid promotion for product")
	ErrPromotionOrderLimit   = errors.New("promotion per order limit exceeded")
	ErrPromotionInsufficient = errors.New("promotion allocation insufficient")
)

// 折扣规则错误
var (
	ErrDiscountRuleInvalid = errors.New("discount rule invalid")
)

// RedeemError 携带出错优惠码标识的核销失败
type RedeemError struct {
	VoucherID uint
	Err       error
}

func (e *RedeemError) Error() string {
	if e.Err == nil {
		return "voucher redeem failed"
	}
	return e.Err.Error()
}

func (e *RedeemError) Unwrap() error {
	return e.Err
}

// LineError 携带出错商品标识的促销行失败
type LineError struct {
	ProductID string
	Err       error
}

func (e *LineError) Error() string {
	if e.Err == nil {
		return "promotion line failed"
	}
	return e.Err.Error()
}

func (e *LineError) Unwrap() error {
	return e.Err
}
