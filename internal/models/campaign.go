package models

import (
	"time"

	"gorm.io/gorm"
)

// Campaign 促销活动（时间窗口内的营销事件，包含若干商品配额）
type Campaign struct {
	ID         uint           `gorm:"primarykey" json:"id"`             // 主键
	Code       string         `gorm:"uniqueIndex;not null" json:"code"` // 活动编码（唯一）
	Name       string         `gorm:"not null" json:"name"`             // 活动名称
	StartsAt   time.Time      `gorm:"index;not null" json:"starts_at"`  // 开始时间
	EndsAt     time.Time      `gorm:"index;not null" json:"ends_at"`    // 结束时间
	IsFeatured bool           `gorm:"not null;default:false" json:"is_featured"` // 是否首页推广（不影响核销逻辑）
	Items      []CampaignItem `gorm:"foreignKey:CampaignID" json:"items,omitempty"` // 商品配额明细
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`          // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`          // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间
}

// TableName 指定表名
func (Campaign) TableName() string {
	return "campaigns"
}
