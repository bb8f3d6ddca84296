package models

import (
	"time"

	"gorm.io/gorm"
)

// Voucher 优惠码（整单折扣）
type Voucher struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                        // 主键
	Code           string         `gorm:"uniqueIndex;not null" json:"code"`                            // 优惠码（用户输入，唯一）
	Name           string         `gorm:"not null" json:"name"`                                        // 展示名称
	StartsAt       time.Time      `gorm:"index;not null" json:"starts_at"`                             // 生效时间
	EndsAt         time.Time      `gorm:"index;not null" json:"ends_at"`                               // 失效时间（必须晚于生效时间）
	RemainingUses  *int           `json:"remaining_uses"`                                              // 剩余总可用次数（NULL 表示不限量）
	PerUserLimit   int            `gorm:"not null;default:0" json:"per_user_limit"`                    // 每客户使用上限（0 表示不限制）
	MinOrderAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_order_amount"` // 使用门槛（订单最低金额）
	DiscountType   string         `gorm:"not null" json:"discount_type"`                               // 折扣类型（percent/fixed，二选一）
	DiscountPercent int           `gorm:"not null;default:0" json:"discount_percent"`                  // 折扣比例（1-99，仅 percent 类型）
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 折扣金额（仅 fixed 类型）
	Scope          string         `gorm:"not null" json:"scope"`                                       // 适用范围（invoice/shipping）
	Usages         []VoucherUsage `gorm:"foreignKey:VoucherID" json:"usages,omitempty"`                // 使用台账
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间
}

// TableName 指定表名
func (Voucher) TableName() string {
	return "vouchers"
}

// IsCapped 判断是否设置了总量上限
func (v *Voucher) IsCapped() bool {
	return v != nil && v.RemainingUses != nil
}

// InWindow 判断时间点是否处于有效期内
func (v *Voucher) InWindow(now time.Time) bool {
	if v == nil {
		return false
	}
	return !now.Before(v.StartsAt) && !now.After(v.EndsAt)
}
