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

// CampaignItemRequest 促销配额明细请求
type CampaignItemRequest struct {
	ProductID       string  `json:"product_id" binding:"required"`
	Quantity        int     `json:"quantity" binding:"required"`
	PerOrderLimit   int     `json:"per_order_limit"`
	DiscountPercent int     `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
}

// CampaignRequest 创建/更新促销活动请求
type CampaignRequest struct {
	Code       string                `json:"code" binding:"required"`
	Name       string                `json:"name" binding:"required"`
	StartsAt   string                `json:"starts_at" binding:"required"`
	EndsAt     string                `json:"ends_at" binding:"required"`
	IsFeatured bool                  `json:"is_featured"`
	Items      []CampaignItemRequest `json:"items" binding:"required"`
}

func buildCampaignItemInputs(items []CampaignItemRequest) []service.CampaignItemInput {
	inputs := make([]service.CampaignItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, service.CampaignItemInput{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PerOrderLimit:   item.PerOrderLimit,
			DiscountPercent: item.DiscountPercent,
			DiscountAmount:  models.NewMoneyFromDecimal(decimal.NewFromFloat(item.DiscountAmount)),
		})
	}
	return inputs
}

func respondCampaignMutationError(c *gin.Context, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, service.ErrCampaignNotFound):
		respondError(c, response.CodeNotFound, "error.campaign_not_found", nil)
	case errors.Is(err, service.ErrCampaignDuplicate):
		respondError(c, response.CodeBadRequest, "error.campaign_duplicate", nil)
	case errors.Is(err, service.ErrCampaignItemInvalid):
		respondError(c, response.CodeBadRequest, "error.campaign_item_invalid", nil)
	case errors.Is(err, service.ErrCampaignInvalid):
		respondError(c, response.CodeBadRequest, "error.campaign_invalid", nil)
	default:
		respondError(c, response.CodeInternal, fallbackMsg, err)
	}
}

// CreateCampaign 创建促销活动
func (h *Handler) CreateCampaign(c *gin.Context) {
	var req CampaignRequest
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

	campaign, err := h.PromotionAdminService.Create(service.CreateCampaignInput{
		Code:       req.Code,
		Name:       req.Name,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		IsFeatured: req.IsFeatured,
		Items:      buildCampaignItemInputs(req.Items),
	})
	if err != nil {
		respondCampaignMutationError(c, err, "error.campaign_create_failed")
		return
	}

	response.Success(c, campaign)
}

// UpdateCampaign 更新促销活动（明细全量替换）
func (h *Handler) UpdateCampaign(c *gin.Context) {
	campaignID, err := parseIDParam(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var req CampaignRequest
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

	campaign, err := h.PromotionAdminService.Update(campaignID, service.UpdateCampaignInput{
		Code:       req.Code,
		Name:       req.Name,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		IsFeatured: req.IsFeatured,
		Items:      buildCampaignItemInputs(req.Items),
	})
	if err != nil {
		respondCampaignMutationError(c, err, "error.campaign_update_failed")
		return
	}

	response.Success(c, campaign)
}

// DeleteCampaign 删除促销活动
func (h *Handler) DeleteCampaign(c *gin.Context) {
	campaignID, err := parseIDParam(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.PromotionAdminService.Delete(campaignID); err != nil {
		respondCampaignMutationError(c, err, "error.campaign_delete_failed")
		return
	}
	response.Success(c, gin.H{
		"deleted": true,
	})
}

// GetAdminCampaign 获取促销活动详情（含配额明细）
func (h *Handler) GetAdminCampaign(c *gin.Context) {
	campaignID, err := parseIDParam(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	campaign, err := h.PromotionAdminService.Get(campaignID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCampaignNotFound):
			respondError(c, response.CodeNotFound, "error.campaign_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.campaign_fetch_failed", err)
		}
		return
	}
	response.Success(c, campaign)
}

// GetAdminCampaigns 获取促销活动列表
func (h *Handler) GetAdminCampaigns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	code := c.Query("code")
	var id uint
	if rawID := strings.TrimSpace(c.Query("id")); rawID != "" {
		parsed, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil || parsed == 0 {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		id = uint(parsed)
	}
	var isFeatured *bool
	if raw := c.Query("is_featured"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		isFeatured = &parsed
	}
	withItems := false
	if raw := c.Query("with_items"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		withItems = parsed
	}

	campaigns, total, err := h.PromotionAdminService.List(repository.CampaignListFilter{
		ID:         id,
		Code:       code,
		IsFeatured: isFeatured,
		WithItems:  withItems,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.campaign_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, campaigns, pagination)
}
