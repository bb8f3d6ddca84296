package public

import (
	"errors"

	"github.com/promo-next/internal/http/response"
	"github.com/promo-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var voucherRedeemErrorRules = []mappedHandlerError{
	{target: service.ErrVoucherNotFound, code: response.CodeNotFound, msg: "error.voucher_not_found"},
	{target: service.ErrVoucherExpired, code: response.CodeBadRequest, msg: "error.voucher_expired"},
	{target: service.ErrVoucherExhausted, code: response.CodeBadRequest, msg: "error.voucher_exhausted"},
	{target: service.ErrVoucherPerUserLimit, code: response.CodeBadRequest, msg: "error.voucher_per_user_limit"},
	{target: service.ErrVoucherInvalid, code: response.CodeBadRequest, msg: "error.voucher_invalid"},
}

var promotionApplyErrorRules = []mappedHandlerError{
	{target: service.ErrPromotionLineInvalid, code: response.CodeBadRequest, msg: "error.promotion_line_invalid"},
	{target: service.ErrNoValidPromotion, code: response.CodeBadRequest, msg: "error.no_valid_promotion"},
	{target: service.ErrPromotionOrderLimit, code: response.CodeBadRequest, msg: "error.promotion_order_limit"},
	{target: service.ErrPromotionInsufficient, code: response.CodeBadRequest, msg: "error.promotion_insufficient"},
}
