package repository

import (
	"errors"

	"github.com/promo-next/internal/models"

	"gorm.io/gorm"
)

// VoucherUsageRepository 优惠码使用台账数据访问接口
type VoucherUsageRepository interface {
	Get(voucherID uint, customerID string) (*models.VoucherUsage, error)
	ListByCustomer(customerID string) ([]models.VoucherUsage, error)
	Create(usage *models.VoucherUsage) error
	IncrementUseCount(voucherID uint, customerID string, perUserLimit int) (int64, error)
	DecrementUseCount(voucherID uint, customerID string) (int64, error)
	DeleteIfDrained(voucherID uint, customerID string) error
	WithTx(tx *gorm.DB) *GormVoucherUsageRepository
}

// GormVoucherUsageRepository GORM 实现
type GormVoucherUsageRepository struct {
	db *gorm.DB
}

// NewVoucherUsageRepository 创建优惠码使用台账仓库
func NewVoucherUsageRepository(db *gorm.DB) *GormVoucherUsageRepository {
	return &GormVoucherUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVoucherUsageRepository) WithTx(tx *gorm.DB) *GormVoucherUsageRepository {
	if tx == nil {
		return r
	}
	return &GormVoucherUsageRepository{db: tx}
}

// Get 获取客户在某优惠码上的台账记录
func (r *GormVoucherUsageRepository) Get(voucherID uint, customerID string) (*models.VoucherUsage, error) {
	var usage models.VoucherUsage
	if err := r.db.
		Where("voucher_id = ? AND customer_id = ?", voucherID, customerID).
		First(&usage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &usage, nil
}

// ListByCustomer 获取客户全部台账记录
func (r *GormVoucherUsageRepository) ListByCustomer(customerID string) ([]models.VoucherUsage, error) {
	var usages []models.VoucherUsage
	if err := r.db.Where("customer_id = ?", customerID).Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

// Create 创建台账记录
func (r *GormVoucherUsageRepository) Create(usage *models.VoucherUsage) error {
	return r.db.Create(usage).Error
}

// IncrementUseCount 原子递增使用次数
// 设置了每客户上限时带 use_count < limit 守卫，并发下不会超过上限。
func (r *GormVoucherUsageRepository) IncrementUseCount(voucherID uint, customerID string, perUserLimit int) (int64, error) {
	query := r.db.Model(&models.VoucherUsage{}).
		Where("voucher_id = ? AND customer_id = ?", voucherID, customerID)
	if perUserLimit > 0 {
		query = query.Where("use_count < ?", perUserLimit)
	}
	result := query.UpdateColumn("use_count", gorm.Expr("use_count + 1"))
	return result.RowsAffected, result.Error
}

// DecrementUseCount 原子递减使用次数（use_count > 0 守卫，不会减成负数）
func (r *GormVoucherUsageRepository) DecrementUseCount(voucherID uint, customerID string) (int64, error) {
	result := r.db.Model(&models.VoucherUsage{}).
		Where("voucher_id = ? AND customer_id = ?", voucherID, customerID).
		Where("use_count > 0").
		UpdateColumn("use_count", gorm.Expr("use_count - 1"))
	return result.RowsAffected, result.Error
}

// DeleteIfDrained 使用次数归零后移除台账记录
func (r *GormVoucherUsageRepository) DeleteIfDrained(voucherID uint, customerID string) error {
	return r.db.
		Where("voucher_id = ? AND customer_id = ? AND use_count <= 0", voucherID, customerID).
		Delete(&models.VoucherUsage{}).Error
}
