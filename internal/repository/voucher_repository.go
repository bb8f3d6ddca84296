package repository

import (
	"errors"
	"time"

	"github.com/promo-next/internal/models"

	"gorm.io/gorm"
)

// VoucherRepository 优惠码数据访问接口
type VoucherRepository interface {
	GetByID(id uint) (*models.Voucher, error)
	GetByCode(code string) (*models.Voucher, error)
	ListByIDs(ids []uint) ([]models.Voucher, error)
	ListActive(now time.Time) ([]models.Voucher, error)
	Create(voucher *models.Voucher) error
	Update(voucher *models.Voucher) error
	Delete(id uint) error
	List(filter VoucherListFilter) ([]models.Voucher, int64, error)
	DecrementRemaining(id uint) (int64, error)
	IncrementRemaining(id uint) (int64, error)
	WithTx(tx *gorm.DB) *GormVoucherRepository
}

// GormVoucherRepository GORM 实现
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewVoucherRepository 创建优惠码仓库
func NewVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVoucherRepository) WithTx(tx *gorm.DB) *GormVoucherRepository {
	if tx == nil {
		return r
	}
	return &GormVoucherRepository{db: tx}
}

// GetByID 根据ID获取优惠码
func (r *GormVoucherRepository) GetByID(id uint) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.db.First(&voucher, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// GetByCode 根据编码获取优惠码
func (r *GormVoucherRepository) GetByCode(code string) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.db.Where("code = ?", code).First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// ListByIDs 批量获取优惠码
func (r *GormVoucherRepository) ListByIDs(ids []uint) ([]models.Voucher, error) {
	if len(ids) == 0 {
		return []models.Voucher{}, nil
	}
	var vouchers []models.Voucher
	if err := r.db.Where("id IN ?", ids).Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

// ListActive 获取处于有效期内的优惠码
func (r *GormVoucherRepository) ListActive(now time.Time) ([]models.Voucher, error) {
	var vouchers []models.Voucher
	if err := r.db.
		Where("starts_at <= ? AND ends_at >= ?", now, now).
		Order("id asc").
		Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

// Create 创建优惠码
func (r *GormVoucherRepository) Create(voucher *models.Voucher) error {
	return r.db.Create(voucher).Error
}

// Update 更新优惠码
func (r *GormVoucherRepository) Update(voucher *models.Voucher) error {
	return r.db.Save(voucher).Error
}

// Delete 删除优惠码
func (r *GormVoucherRepository) Delete(id uint) error {
	return r.db.Delete(&models.Voucher{}, id).Error
}

// List 获取优惠码列表
func (r *GormVoucherRepository) List(filter VoucherListFilter) ([]models.Voucher, int64, error) {
	var vouchers []models.Voucher
	query := r.db.Model(&models.Voucher{})

	if filter.ID > 0 {
		query = query.Where("id = ?", filter.ID)
	}
	if filter.Code != "" {
		query = query.Where("code = ?", filter.Code)
	}
	if filter.Scope != "" {
		query = query.Where("scope = ?", filter.Scope)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&vouchers).Error; err != nil {
		return nil, 0, err
	}
	return vouchers, total, nil
}

// DecrementRemaining 原子扣减剩余总次数
// 仅对设置了总量上限的优惠码生效，剩余为 0 时不会扣减（返回影响行数 0）。
func (r *GormVoucherRepository) DecrementRemaining(id uint) (int64, error) {
	result := r.db.Model(&models.Voucher{}).
		Where("id = ?", id).
		Where("remaining_uses IS NOT NULL AND remaining_uses > 0").
		UpdateColumn("remaining_uses", gorm.Expr("remaining_uses - 1"))
	return result.RowsAffected, result.Error
}

// IncrementRemaining 原子回补剩余总次数
// 冲正路径不设上限回补（与扣减对称，不校验原始额度）。
func (r *GormVoucherRepository) IncrementRemaining(id uint) (int64, error) {
	result := r.db.Model(&models.Voucher{}).
		Where("id = ?", id).
		Where("remaining_uses IS NOT NULL").
		UpdateColumn("remaining_uses", gorm.Expr("remaining_uses + 1"))
	return result.RowsAffected, result.Error
}
