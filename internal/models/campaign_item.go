package models

import (
	"time"
)

// CampaignItem 促销配额明细（商品级促销库存，归属于某个活动）
//
// 剩余数量与单笔上限落在明细上，而有效期落在父活动上：
// 明细是否可用需要联表校验父活动窗口。
type CampaignItem struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                          // 主键
	CampaignID      uint      `gorm:"index;not null" json:"campaign_id"`                             // 所属活动ID
	ProductID       string    `gorm:"index;not null" json:"product_id"`                              // 商品ID（外部目录服务提供，不校验存在性）
	RemainingQty    int       `gorm:"not null;default:0" json:"remaining_qty"`                       // 剩余促销数量（核销递减，冲正递增，不会为负）
	PerOrderLimit   int       `gorm:"not null;default:0" json:"per_order_limit"`                     // 单笔订单数量上限
	DiscountPercent int       `gorm:"not null;default:0" json:"discount_percent"`                    // 折扣比例（0 表示无，1-99）
	DiscountAmount  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`  // 折扣金额（0 表示无）
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt       time.Time `gorm:"index" json:"updated_at"`                                       // 更新时间
}

// TableName 指定表名
func (CampaignItem) TableName() string {
	return "campaign_items"
}
