package repository

import (
	"time"

	"github.com/promo-next/internal/models"

	"gorm.io/gorm"
)

// CampaignItemRepository 促销配额明细数据访问接口
type CampaignItemRepository interface {
	ListByCampaign(campaignID uint) ([]models.CampaignItem, error)
	CreateBatch(items []models.CampaignItem) error
	DeleteByCampaign(campaignID uint) error
	GetActiveByProduct(productID string, now time.Time) (*models.CampaignItem, error)
	ListActiveByProducts(productIDs []string, now time.Time) ([]models.CampaignItem, error)
	ListActiveProductIDs(now time.Time) ([]string, error)
	ListByProducts(productIDs []string) ([]models.CampaignItem, error)
	DecrementRemaining(id uint, quantity int) (int64, error)
	IncrementRemaining(id uint, quantity int) (int64, error)
	WithTx(tx *gorm.DB) *GormCampaignItemRepository
}

// GormCampaignItemRepository GORM 实现
type GormCampaignItemRepository struct {
	db *gorm.DB
}

// NewCampaignItemRepository 创建促销配额明细仓库
func NewCampaignItemRepository(db *gorm.DB) *GormCampaignItemRepository {
	return &GormCampaignItemRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCampaignItemRepository) WithTx(tx *gorm.DB) *GormCampaignItemRepository {
	if tx == nil {
		return r
	}
	return &GormCampaignItemRepository{db: tx}
}

// ListByCampaign 获取活动下全部配额明细
func (r *GormCampaignItemRepository) ListByCampaign(campaignID uint) ([]models.CampaignItem, error) {
	var items []models.CampaignItem
	if err := r.db.Where("campaign_id = ?", campaignID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CreateBatch 批量创建配额明细
func (r *GormCampaignItemRepository) CreateBatch(items []models.CampaignItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

// DeleteByCampaign 删除活动下全部配额明细
func (r *GormCampaignItemRepository) DeleteByCampaign(campaignID uint) error {
	return r.db.Where("campaign_id = ?", campaignID).Delete(&models.CampaignItem{}).Error
}

// activeJoin 联表父活动并限定活动窗口包含当前时间。
// 窗口字段在父活动上而数量字段在明细上，可用性必须联表判定。
func (r *GormCampaignItemRepository) activeJoin(now time.Time) *gorm.DB {
	return r.db.Model(&models.CampaignItem{}).
		Joins("JOIN campaigns ON campaigns.id = campaign_items.campaign_id").
		Where("campaigns.deleted_at IS NULL").
		Where("campaigns.starts_at <= ? AND campaigns.ends_at >= ?", now, now)
}

// GetActiveByProduct 获取商品当前可用的配额明细（取第一条）
func (r *GormCampaignItemRepository) GetActiveByProduct(productID string, now time.Time) (*models.CampaignItem, error) {
	var items []models.CampaignItem
	if err := r.activeJoin(now).
		Where("campaign_items.product_id = ?", productID).
		Where("campaign_items.remaining_qty > 0").
		Order("campaign_items.id asc").
		Limit(1).
		Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// ListActiveByProducts 批量获取多个商品当前可用的配额明细
func (r *GormCampaignItemRepository) ListActiveByProducts(productIDs []string, now time.Time) ([]models.CampaignItem, error) {
	if len(productIDs) == 0 {
		return []models.CampaignItem{}, nil
	}
	var items []models.CampaignItem
	if err := r.activeJoin(now).
		Where("campaign_items.product_id IN ?", productIDs).
		Where("campaign_items.remaining_qty > 0").
		Order("campaign_items.id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListActiveProductIDs 获取当前处于有效促销中的商品ID集合
func (r *GormCampaignItemRepository) ListActiveProductIDs(now time.Time) ([]string, error) {
	var ids []string
	if err := r.activeJoin(now).
		Distinct("campaign_items.product_id").
		Pluck("campaign_items.product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListByProducts 按商品批量获取配额明细（不限活动窗口）
// 冲正路径使用：活动过期后仍允许回补已核销的数量。
func (r *GormCampaignItemRepository) ListByProducts(productIDs []string) ([]models.CampaignItem, error) {
	if len(productIDs) == 0 {
		return []models.CampaignItem{}, nil
	}
	var items []models.CampaignItem
	if err := r.db.
		Where("product_id IN ?", productIDs).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DecrementRemaining 原子扣减剩余促销数量
// remaining_qty >= quantity 守卫保证并发下不会超卖或减成负数。
func (r *GormCampaignItemRepository) DecrementRemaining(id uint, quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, nil
	}
	result := r.db.Model(&models.CampaignItem{}).
		Where("id = ?", id).
		Where("remaining_qty >= ?", quantity).
		UpdateColumn("remaining_qty", gorm.Expr("remaining_qty - ?", quantity))
	return result.RowsAffected, result.Error
}

// IncrementRemaining 原子回补剩余促销数量
// 冲正按原量无条件回补，不校验初始额度。
func (r *GormCampaignItemRepository) IncrementRemaining(id uint, quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, nil
	}
	result := r.db.Model(&models.CampaignItem{}).
		Where("id = ?", id).
		UpdateColumn("remaining_qty", gorm.Expr("remaining_qty + ?", quantity))
	return result.RowsAffected, result.Error
}
