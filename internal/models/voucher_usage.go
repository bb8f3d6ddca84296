package models

import (
	"time"
)

// VoucherUsage 优惠码使用台账（每客户一条，记录累计使用次数）
type VoucherUsage struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                              // 主键
	VoucherID  uint      `gorm:"uniqueIndex:idx_voucher_customer;not null" json:"voucher_id"`       // 优惠码ID
	CustomerID string    `gorm:"uniqueIndex:idx_voucher_customer;not null" json:"customer_id"`      // 客户ID（外部系统提供，不透明字符串）
	UseCount   int       `gorm:"not null;default:0" json:"use_count"`                               // 累计使用次数（不会为负）
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt  time.Time `gorm:"index" json:"updated_at"`                                           // 更新时间
}

// TableName 指定表名
func (VoucherUsage) TableName() string {
	return "voucher_usages"
}
