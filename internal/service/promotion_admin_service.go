package service

import (
	"strings"
	"time"

	"github.com/promo-next/internal/constants"
	"github.com/promo-next/internal/logger"
	"github.com/promo-next/internal/models"
	"github.com/promo-next/internal/queue"
	"github.com/promo-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PromotionAdminService 促销活动管理服务
type PromotionAdminService struct {
	campaignRepo repository.CampaignRepository
	itemRepo     repository.CampaignItemRepository
	queueClient  *queue.Client
}

// NewPromotionAdminService 创建促销活动管理服务
func NewPromotionAdminService(campaignRepo repository.CampaignRepository, itemRepo repository.CampaignItemRepository, queueClient *queue.Client) *PromotionAdminService {
	return &PromotionAdminService{
		campaignRepo: campaignRepo,
		itemRepo:     itemRepo,
		queueClient:  queueClient,
	}
}

// CampaignItemInput 促销配额明细输入
type CampaignItemInput struct {
	ProductID       string
	Quantity        int
	PerOrderLimit   int
	DiscountPercent int
	DiscountAmount  models.Money
}

// CreateCampaignInput 创建促销活动输入
type CreateCampaignInput struct {
	Code       string
	Name       string
	StartsAt   time.Time
	EndsAt     time.Time
	IsFeatured bool
	Items      []CampaignItemInput
}

// UpdateCampaignInput 更新促销活动输入
// Items 为全量替换语义，原有明细会被整组覆盖。
type UpdateCampaignInput struct {
	Code       string
	Name       string
	StartsAt   time.Time
	EndsAt     time.Time
	IsFeatured bool
	Items      []CampaignItemInput
}

func validateCampaignItems(inputs []CampaignItemInput) error {
	if len(inputs) == 0 {
		return ErrCampaignItemInvalid
	}
	seen := make(map[string]struct{}, len(inputs))
	for _, input := range inputs {
		productID := strings.TrimSpace(input.ProductID)
		if productID == "" {
			return ErrCampaignItemInvalid
		}
		if _, ok := seen[productID]; ok {
			return ErrCampaignItemInvalid
		}
		seen[productID] = struct{}{}
		if input.Quantity <= 0 || input.PerOrderLimit < 0 {
			return ErrCampaignItemInvalid
		}
		if input.DiscountPercent != 0 &&
			(input.DiscountPercent < constants.DiscountPercentMin || input.DiscountPercent > constants.DiscountPercentMax) {
			return ErrCampaignItemInvalid
		}
		if input.DiscountAmount.Decimal.LessThan(decimal.Zero) {
			return ErrCampaignItemInvalid
		}
		if input.DiscountPercent == 0 && input.DiscountAmount.Decimal.IsZero() {
			return ErrCampaignItemInvalid
		}
	}
	return nil
}

func buildCampaignItems(campaignID uint, inputs []CampaignItemInput) []models.CampaignItem {
	items := make([]models.CampaignItem, 0, len(inputs))
	for _, input := range inputs {
		items = append(items, models.CampaignItem{
			CampaignID:      campaignID,
			ProductID:       strings.TrimSpace(input.ProductID),
			RemainingQty:    input.Quantity,
			PerOrderLimit:   input.PerOrderLimit,
			DiscountPercent: input.DiscountPercent,
			DiscountAmount:  input.DiscountAmount,
		})
	}
	return items
}

// Create 创建促销活动及其配额明细
// 活动与明细在同一事务内落库，任一失败整体回滚。
func (s *PromotionAdminService) Create(input CreateCampaignInput) (*models.Campaign, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, ErrCampaignInvalid
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCampaignInvalid
	}
	if input.StartsAt.IsZero() || input.EndsAt.IsZero() || !input.EndsAt.After(input.StartsAt) {
		return nil, ErrCampaignInvalid
	}
	if err := validateCampaignItems(input.Items); err != nil {
		return nil, err
	}

	exist, err := s.campaignRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrCampaignDuplicate
	}

	campaign := &models.Campaign{
		Code:       code,
		Name:       name,
		StartsAt:   input.StartsAt,
		EndsAt:     input.EndsAt,
		IsFeatured: input.IsFeatured,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		campaignRepo := s.campaignRepo.WithTx(tx)
		itemRepo := s.itemRepo.WithTx(tx)
		if err := campaignRepo.Create(campaign); err != nil {
			return err
		}
		return itemRepo.CreateBatch(buildCampaignItems(campaign.ID, input.Items))
	})
	if err != nil {
		return nil, ErrCampaignCreateFailed
	}

	s.notifyProductsChanged("campaign_create")
	return s.campaignRepo.GetByIDWithItems(campaign.ID)
}

// Update 更新促销活动
// 明细按全量替换处理，旧明细删除后重建，剩余数量随之重置。
func (s *PromotionAdminService) Update(id uint, input UpdateCampaignInput) (*models.Campaign, error) {
	if id == 0 {
		return nil, ErrCampaignInvalid
	}
	existing, err := s.campaignRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCampaignNotFound
	}

	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, ErrCampaignInvalid
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCampaignInvalid
	}
	if input.StartsAt.IsZero() || input.EndsAt.IsZero() || !input.EndsAt.After(input.StartsAt) {
		return nil, ErrCampaignInvalid
	}
	if err := validateCampaignItems(input.Items); err != nil {
		return nil, err
	}

	if code != existing.Code {
		dup, err := s.campaignRepo.GetByCode(code)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, ErrCampaignDuplicate
		}
	}

	existing.Code = code
	existing.Name = name
	existing.StartsAt = input.StartsAt
	existing.EndsAt = input.EndsAt
	existing.IsFeatured = input.IsFeatured

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		campaignRepo := s.campaignRepo.WithTx(tx)
		itemRepo := s.itemRepo.WithTx(tx)
		if err := campaignRepo.Update(existing); err != nil {
			return err
		}
		if err := itemRepo.DeleteByCampaign(existing.ID); err != nil {
			return err
		}
		return itemRepo.CreateBatch(buildCampaignItems(existing.ID, input.Items))
	})
	if err != nil {
		return nil, ErrCampaignUpdateFailed
	}

	s.notifyProductsChanged("campaign_update")
	return s.campaignRepo.GetByIDWithItems(existing.ID)
}

// Delete 删除促销活动及其配额明细
func (s *PromotionAdminService) Delete(id uint) error {
	if id == 0 {
		return ErrCampaignInvalid
	}
	existing, err := s.campaignRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCampaignNotFound
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		campaignRepo := s.campaignRepo.WithTx(tx)
		itemRepo := s.itemRepo.WithTx(tx)
		if err := itemRepo.DeleteByCampaign(id); err != nil {
			return err
		}
		return campaignRepo.Delete(id)
	})
	if err != nil {
		return ErrCampaignDeleteFailed
	}

	s.notifyProductsChanged("campaign_delete")
	return nil
}

// Get 获取促销活动详情（含配额明细）
func (s *PromotionAdminService) Get(id uint) (*models.Campaign, error) {
	if id == 0 {
		return nil, ErrCampaignInvalid
	}
	campaign, err := s.campaignRepo.GetByIDWithItems(id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

// List 获取促销活动列表
func (s *PromotionAdminService) List(filter repository.CampaignListFilter) ([]models.Campaign, int64, error) {
	return s.campaignRepo.List(filter)
}

// notifyProductsChanged 管理端变更后触发促销商品缓存重建
func (s *PromotionAdminService) notifyProductsChanged(reason string) {
	if !s.queueClient.Enabled() {
		return
	}
	if err := s.queueClient.EnqueuePromoRefreshProducts(queue.PromoRefreshProductsPayload{Reason: reason}); err != nil {
		logger.Warnw("促销商品缓存重建任务入队失败", "reason", reason, "error", err)
	}
}
