package public

import (
	"errors"

	"github.com/promo-next/internal/http/response"
	"github.com/promo-next/internal/service"

	"github.com/gin-gonic/gin"
)

// PromotionLinesRequest 促销核销/冲正请求
type PromotionLinesRequest struct {
	Lines []service.PromotionLine `json:"lines" binding:"required"`
}

// PromotionBatchQueryRequest 批量查询促销请求
type PromotionBatchQueryRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required"`
}

// GetUsablePromotion 获取商品当前可用的促销配额
func (h *Handler) GetUsablePromotion(c *gin.Context) {
	productID := c.Param("product_id")
	item, err := h.PromotionService.GetUsableForProduct(productID)
	if err != nil {
		if errors.Is(err, service.ErrPromotionLineInvalid) {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.promotion_fetch_failed", err)
		return
	}
	response.Success(c, item)
}

// GetUsablePromotions 批量获取多个商品当前可用的促销配额
func (h *Handler) GetUsablePromotions(c *gin.Context) {
	var req PromotionBatchQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	items, err := h.PromotionService.GetUsableForProducts(req.ProductIDs)
	if err != nil {
		respondError(c, response.CodeInternal, "error.promotion_fetch_failed", err)
		return
	}
	response.Success(c, items)
}

// GetPromotionProducts 获取当前处于有效促销中的商品ID集合
func (h *Handler) GetPromotionProducts(c *gin.Context) {
	ids, err := h.PromotionService.ProductsOnPromotion(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.promotion_fetch_failed", err)
		return
	}
	response.Success(c, ids)
}

// ApplyPromotions 对订单行批量核销促销并返回折后价
// 整单校验通过才扣减配额，失败时响应携带出错商品。
func (h *Handler) ApplyPromotions(c *gin.Context) {
	var req PromotionLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	priced, err := h.PromotionService.ApplyToLines(req.Lines)
	if err != nil {
		var lineErr *service.LineError
		if errors.As(err, &lineErr) {
			code, msg := mapPromotionApplyError(err)
			response.ErrorWithData(c, code, msg, gin.H{
				"failed_product_id": lineErr.ProductID,
			})
			return
		}
		respondError(c, response.CodeInternal, "error.promotion_apply_failed", err)
		return
	}

	response.Success(c, priced)
}

// ReversePromotions 冲正订单行的促销核销
func (h *Handler) ReversePromotions(c *gin.Context) {
	var req PromotionLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.PromotionService.ReverseLines(req.Lines); err != nil {
		var lineErr *service.LineError
		if errors.As(err, &lineErr) {
			code, msg := mapPromotionApplyError(err)
			response.ErrorWithData(c, code, msg, gin.H{
				"failed_product_id": lineErr.ProductID,
			})
			return
		}
		respondError(c, response.CodeInternal, "error.promotion_reverse_failed", err)
		return
	}
	response.Success(c, gin.H{
		"reversed": true,
	})
}

func mapPromotionApplyError(err error) (int, string) {
	for _, rule := range promotionApplyErrorRules {
		if errors.Is(err, rule.target) {
			return rule.code, rule.msg
		}
	}
	return response.CodeInternal, "error.promotion_apply_failed"
}
