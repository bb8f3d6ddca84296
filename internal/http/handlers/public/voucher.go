package public

import (
	"errors"

	"github.com/promo-next/internal/http/response"
	"github.com/promo-next/internal/queue"
	"github.com/promo-next/internal/service"

	"github.com/gin-gonic/gin"
)

// VoucherBatchRequest 批量核销/冲正请求
type VoucherBatchRequest struct {
	VoucherIDs []uint `json:"voucher_ids" binding:"required"`
}

// GetUsableVouchers 获取客户当前可用的优惠码
func (h *Handler) GetUsableVouchers(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	vouchers, err := h.VoucherService.ListUsable(customerID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.voucher_fetch_failed", err)
		return
	}
	response.Success(c, vouchers)
}

// RedeemVouchers 批量核销优惠码
// 部分成功时已核销的前缀通过补偿任务异步回退，响应携带失败位置。
func (h *Handler) RedeemVouchers(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	var req VoucherBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if len(req.VoucherIDs) == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	applied, err := h.VoucherService.Redeem(customerID, req.VoucherIDs)
	if err != nil {
		appliedIDs := make([]uint, 0, len(applied))
		for _, voucher := range applied {
			appliedIDs = append(appliedIDs, voucher.ID)
		}
		if len(appliedIDs) > 0 {
			h.enqueueVoucherCompensation(c, customerID, appliedIDs)
		}

		var redeemErr *service.RedeemError
		data := gin.H{"applied_voucher_ids": appliedIDs}
		if errors.As(err, &redeemErr) {
			data["failed_voucher_id"] = redeemErr.VoucherID
		}
		code, msg := mapVoucherRedeemError(err)
		response.ErrorWithData(c, code, msg, data)
		return
	}

	response.Success(c, applied)
}

// ReverseVouchers 批量冲正优惠码核销
func (h *Handler) ReverseVouchers(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	var req VoucherBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if len(req.VoucherIDs) == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.VoucherService.Reverse(customerID, req.VoucherIDs); err != nil {
		respondWithMappedError(c, err, voucherRedeemErrorRules, response.CodeInternal, "error.voucher_reverse_failed")
		return
	}
	response.Success(c, gin.H{
		"reversed": true,
	})
}

func mapVoucherRedeemError(err error) (int, string) {
	for _, rule := range voucherRedeemErrorRules {
		if errors.Is(err, rule.target) {
			return rule.code, rule.msg
		}
	}
	return response.CodeInternal, "error.voucher_redeem_failed"
}

// enqueueVoucherCompensation 异步回退已核销的前缀
func (h *Handler) enqueueVoucherCompensation(c *gin.Context, customerID string, voucherIDs []uint) {
	if !h.QueueClient.Enabled() {
		requestLog(c).Warnw("voucher_compensation_queue_disabled",
			"customer_id", customerID,
			"voucher_count", len(voucherIDs),
		)
		return
	}
	payload := queue.VoucherReversePayload{
		CustomerID: customerID,
		VoucherIDs: voucherIDs,
	}
	if err := h.QueueClient.EnqueueVoucherReverse(payload); err != nil {
		requestLog(c).Errorw("voucher_compensation_enqueue_failed",
			"customer_id", customerID,
			"voucher_count", len(voucherIDs),
			"error", err,
		)
	}
}
