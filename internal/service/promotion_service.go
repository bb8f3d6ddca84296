package service

import (
	"context"
	"strings"
	"time"

	"github.com/promo-next/internal/cache"
	"github.com/promo-next/internal/constants"
	"github.com/promo-next/internal/logger"
	"github.com/promo-next/internal/models"
	"github.com/promo-next/internal/repository"

	"github.com/shopspring/decimal"
)

// promoProductsCacheTTL 促销商品集合缓存时长
const promoProductsCacheTTL = 5 * time.Minute

// PromotionService 促销核销服务
type PromotionService struct {
	campaignRepo repository.CampaignRepository
	itemRepo     repository.CampaignItemRepository
}

// NewPromotionService 创建促销核销服务
func NewPromotionService(campaignRepo repository.CampaignRepository, itemRepo repository.CampaignItemRepository) *PromotionService {
	return &PromotionService{
		campaignRepo: campaignRepo,
		itemRepo:     itemRepo,
	}
}

// PromotionLine 订单行（促销核销入参）
type PromotionLine struct {
	ProductID string       `json:"product_id"`
	Quantity  int          `json:"quantity"`
	UnitPrice models.Money `json:"unit_price"`
}

// PricedLine 折后订单行
type PricedLine struct {
	ProductID           string       `json:"product_id"`
	Quantity            int          `json:"quantity"`
	UnitPrice           models.Money `json:"unit_price"`
	DiscountedUnitPrice models.Money `json:"discounted_unit_price"`
	LineTotal           models.Money `json:"line_total"`
	CampaignID          uint         `json:"campaign_id"`
	CampaignItemID      uint         `json:"campaign_item_id"`
}

// GetUsableForProduct 获取商品当前可用的促销配额
// 同一商品存在多个可用配额时取最早创建的一个，没有可用配额时返回 nil。
func (s *PromotionService) GetUsableForProduct(productID string) (*models.CampaignItem, error) {
	trimmed := strings.TrimSpace(productID)
	if trimmed == "" {
		return nil, ErrPromotionLineInvalid
	}
	return s.itemRepo.GetActiveByProduct(trimmed, time.Now())
}

// GetUsableForProducts 批量获取多个商品当前可用的促销配额
func (s *PromotionService) GetUsableForProducts(productIDs []string) ([]models.CampaignItem, error) {
	return s.itemRepo.ListActiveByProducts(productIDs, time.Now())
}

// ProductsOnPromotion 获取当前处于有效促销中的商品ID集合
// 命中缓存直接返回，未命中回源数据库并写回。
func (s *PromotionService) ProductsOnPromotion(ctx context.Context) ([]string, error) {
	if cache.Enabled() {
		var ids []string
		hit, err := cache.GetJSON(ctx, constants.CacheKeyPromoProducts, &ids)
		if err != nil {
			logger.Warnw("促销商品缓存读取失败", "error", err)
		} else if hit {
			return ids, nil
		}
	}

	ids, err := s.itemRepo.ListActiveProductIDs(time.Now())
	if err != nil {
		return nil, err
	}

	if cache.Enabled() {
		if err := cache.SetJSON(ctx, constants.CacheKeyPromoProducts, ids, promoProductsCacheTTL); err != nil {
			logger.Warnw("促销商品缓存写入失败", "error", err)
		}
	}
	return ids, nil
}

// RefreshProductsCache 重建促销商品集合缓存
func (s *PromotionService) RefreshProductsCache(ctx context.Context) error {
	if !cache.Enabled() {
		return nil
	}
	ids, err := s.itemRepo.ListActiveProductIDs(time.Now())
	if err != nil {
		return err
	}
	return cache.SetJSON(ctx, constants.CacheKeyPromoProducts, ids, promoProductsCacheTTL)
}

// InvalidateProductsCache 失效促销商品集合缓存
func (s *PromotionService) InvalidateProductsCache(ctx context.Context) error {
	if !cache.Enabled() {
		return nil
	}
	return cache.Del(ctx, constants.CacheKeyPromoProducts)
}

// ApplyToLines 对订单行批量核销促销并计算折后价
// 先整单校验再扣减配额，任一行不满足时整单失败且不产生任何扣减。
// 扣减阶段被并发抢占时回补已扣减的配额后返回失败。
func (s *PromotionService) ApplyToLines(lines []PromotionLine) ([]PricedLine, error) {
	if len(lines) == 0 {
		return []PricedLine{}, nil
	}

	productIDs := make([]string, 0, len(lines))
	required := make(map[string]int, len(lines))
	for _, line := range lines {
		productID := strings.TrimSpace(line.ProductID)
		if productID == "" || line.Quantity <= 0 {
			return nil, &LineError{ProductID: line.ProductID, Err: ErrPromotionLineInvalid}
		}
		if line.UnitPrice.Decimal.LessThan(decimal.Zero) {
			return nil, &LineError{ProductID: productID, Err: ErrPromotionLineInvalid}
		}
		if _, ok := required[productID]; !ok {
			productIDs = append(productIDs, productID)
		}
		required[productID] += line.Quantity
	}

	items, err := s.itemRepo.ListActiveByProducts(productIDs, time.Now())
	if err != nil {
		return nil, err
	}
	allocations := make(map[string]*models.CampaignItem, len(items))
	for idx := range items {
		item := &items[idx]
		if _, ok := allocations[item.ProductID]; !ok {
			allocations[item.ProductID] = item
		}
	}

	// 先整单校验，避免部分扣减后才发现后续行不满足
	for _, productID := range productIDs {
		item, ok := allocations[productID]
		if !ok {
			return nil, &LineError{ProductID: productID, Err: ErrNoValidPromotion}
		}
		quantity := required[productID]
		if item.PerOrderLimit > 0 && quantity > item.PerOrderLimit {
			return nil, &LineError{ProductID: productID, Err: ErrPromotionOrderLimit}
		}
		if item.RemainingQty < quantity {
			return nil, &LineError{ProductID: productID, Err: ErrPromotionInsufficient}
		}
	}

	type decremented struct {
		itemID   uint
		quantity int
	}
	applied := make([]decremented, 0, len(productIDs))
	for _, productID := range productIDs {
		item := allocations[productID]
		quantity := required[productID]
		rows, err := s.itemRepo.DecrementRemaining(item.ID, quantity)
		if err == nil && rows == 0 {
			err = ErrPromotionInsufficient
		}
		if err != nil {
			// 回补已扣减的配额，保证整单失败时不留下部分扣减
			for _, entry := range applied {
				if _, rollbackErr := s.itemRepo.IncrementRemaining(entry.itemID, entry.quantity); rollbackErr != nil {
					logger.Errorw("促销配额回补失败",
						"campaign_item_id", entry.itemID,
						"quantity", entry.quantity,
						"error", rollbackErr,
					)
				}
			}
			return nil, &LineError{ProductID: productID, Err: err}
		}
		applied = append(applied, decremented{itemID: item.ID, quantity: quantity})
	}

	priced := make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		productID := strings.TrimSpace(line.ProductID)
		item := allocations[productID]
		unit := discountedUnitPrice(line.UnitPrice, item.DiscountPercent, item.DiscountAmount)
		total := models.NewMoneyFromDecimal(unit.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity))))
		priced = append(priced, PricedLine{
			ProductID:           productID,
			Quantity:            line.Quantity,
			UnitPrice:           line.UnitPrice,
			DiscountedUnitPrice: unit,
			LineTotal:           total,
			CampaignID:          item.CampaignID,
			CampaignItemID:      item.ID,
		})
	}
	return priced, nil
}

// ReverseLines 冲正订单行的促销核销
// 只校验商品存在对应配额，回补不设上限，活动过期后仍可冲正。
func (s *PromotionService) ReverseLines(lines []PromotionLine) error {
	if len(lines) == 0 {
		return nil
	}

	productIDs := make([]string, 0, len(lines))
	restore := make(map[string]int, len(lines))
	for _, line := range lines {
		productID := strings.TrimSpace(line.ProductID)
		if productID == "" || line.Quantity <= 0 {
			return &LineError{ProductID: line.ProductID, Err: ErrPromotionLineInvalid}
		}
		if _, ok := restore[productID]; !ok {
			productIDs = append(productIDs, productID)
		}
		restore[productID] += line.Quantity
	}

	items, err := s.itemRepo.ListByProducts(productIDs)
	if err != nil {
		return err
	}
	allocations := make(map[string]*models.CampaignItem, len(items))
	for idx := range items {
		item := &items[idx]
		if _, ok := allocations[item.ProductID]; !ok {
			allocations[item.ProductID] = item
		}
	}

	for _, productID := range productIDs {
		item, ok := allocations[productID]
		if !ok {
			return &LineError{ProductID: productID, Err: ErrNoValidPromotion}
		}
		if _, err := s.itemRepo.IncrementRemaining(item.ID, restore[productID]); err != nil {
			return err
		}
	}
	return nil
}
