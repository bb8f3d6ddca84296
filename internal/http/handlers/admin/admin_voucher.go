package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/promo-next/internal/http/response"
	"github.com/promo-next/internal/models"
	"github.com/promo-next/internal/repository"
	"github.com/promo-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// VoucherRequest 创建/更新优惠码请求
type VoucherRequest struct {
	Code            string  `json:"code" binding:"required"`
	Name            string  `json:"name" binding:"required"`
	StartsAt        string  `json:"starts_at" binding:"required"`
	EndsAt          string  `json:"ends_at" binding:"required"`
	TotalUses       *int    `json:"total_uses"`
	PerUserLimit    int     `json:"per_user_limit"`
	MinOrderAmount  float64 `json:"min_order_amount"`
	DiscountType    string  `json:"discount_type" binding:"required"`
	DiscountPercent int     `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
	Scope           string  `json:"scope" binding:"required"`
}

// CreateVoucher 创建优惠码
func (h *Handler) CreateVoucher(c *gin.Context) {
	var req VoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	startsAt, err := parseTimeRequired(req.StartsAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	endsAt, err := parseTimeRequired(req.EndsAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	voucher, err := h.VoucherAdminService.Create(service.CreateVoucherInput{
		Code:           req.Code,
		Name:           req.Name,
		StartsAt:       startsAt,
		EndsAt:         endsAt,
		TotalUses:      req.TotalUses,
		PerUserLimit:   req.PerUserLimit,
		MinOrderAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(req.MinOrderAmount)),
		Discount: service.DiscountRule{
			Type:    req.DiscountType,
			Percent: req.DiscountPercent,
			Amount:  models.NewMoneyFromDecimal(decimal.NewFromFloat(req.DiscountAmount)),
		},
		Scope: req.Scope,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVoucherDuplicate):
			respondError(c, response.CodeBadRequest, "error.voucher_duplicate", nil)
		case errors.Is(err, service.ErrVoucherInvalid):
			respondError(c, response.CodeBadRequest, "error.voucher_invalid", nil)
		case errors.Is(err, service.ErrDiscountRuleInvalid):
			respondError(c, response.CodeBadRequest, "error.discount_rule_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.voucher_create_failed", err)
		}
		return
	}

	response.Success(c, voucher)
}

// UpdateVoucher 更新优惠码
func (h *Handler) UpdateVoucher(c *gin.Context) {
	voucherID, err := parseIDParam(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var req VoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	startsAt, err := parseTimeRequired(req.StartsAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	endsAt, err := parseTimeRequired(req.EndsAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	voucher, err := h.VoucherAdminService.Update(voucherID, service.UpdateVoucherInput{
		Code:           req.Code,
		Name:           req.Name,
		StartsAt:       startsAt,
		EndsAt:         endsAt,
		RemainingUses:  req.TotalUses,
		PerUserLimit:   req.PerUserLimit,
		MinOrderAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(req.MinOrderAmount)),
		Discount: service.DiscountRule{
			Type:    req.DiscountType,
			Percent: req.DiscountPercent,
			Amount:  models.NewMoneyFromDecimal(decimal.NewFromFloat(req.DiscountAmount)),
		},
		Scope: req.Scope,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVoucherNotFound):
			respondError(c, response.CodeNotFound, "error.voucher_not_found", nil)
		case errors.Is(err, service.ErrVoucherDuplicate):
			respondError(c, response.CodeBadRequest, "error.voucher_duplicate", nil)
		case errors.Is(err, service.ErrVoucherInvalid):
			respondError(c, response.CodeBadRequest, "error.voucher_invalid", nil)
		case errors.Is(err, service.ErrDiscountRuleInvalid):
			respondError(c, response.CodeBadRequest, "error.discount_rule_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.voucher_update_failed", err)
		}
		return
	}

	response.Success(c, voucher)
}

// DeleteVoucher 删除优惠码
func (h *Handler) DeleteVoucher(c *gin.Context) {
	voucherID, err := parseIDParam(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.VoucherAdminService.Delete(voucherID); err != nil {
		switch {
		case errors.Is(err, service.ErrVoucherNotFound):
			respondError(c, response.CodeNotFound, "error.voucher_not_found", nil)
		case errors.Is(err, service.ErrVoucherInvalid):
			respondError(c, response.CodeBadRequest, "error.voucher_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.voucher_delete_failed", err)
		}
		return
	}
	response.Success(c, gin.H{
		"deleted": true,
	})
}

// GetAdminVoucher 获取优惠码详情
func (h *Handler) GetAdminVoucher(c *gin.Context) {
	voucherID, err := parseIDParam(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	voucher, err := h.VoucherAdminService.Get(voucherID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVoucherNotFound):
			respondError(c, response.CodeNotFound, "error.voucher_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.voucher_fetch_failed", err)
		}
		return
	}
	response.Success(c, voucher)
}

// GetAdminVouchers 获取优惠码列表
func (h *Handler) GetAdminVouchers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	code := c.Query("code")
	scope := c.Query("scope")
	var id uint
	if rawID := strings.TrimSpace(c.Query("id")); rawID != "" {
		parsed, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil || parsed == 0 {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		id = uint(parsed)
	}

	vouchers, total, err := h.VoucherAdminService.List(repository.VoucherListFilter{
		ID:       id,
		Code:     code,
		Scope:    scope,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.voucher_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, vouchers, pagination)
}
