package queue

import (
	"encoding/json"

	"github.com/promo-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskVoucherReverse 优惠码冲正补偿任务
	TaskVoucherReverse = constants.TaskVoucherReverse
	// TaskPromoRefreshProducts 促销商品缓存重建任务
	TaskPromoRefreshProducts = constants.TaskPromoRefreshProducts
)

// VoucherReversePayload 优惠码冲正补偿任务载荷
// 批量核销失败后用于回退已核销的前缀。
type VoucherReversePayload struct {
	CustomerID string `json:"customer_id"`
	VoucherIDs []uint `json:"voucher_ids"`
}

// PromoRefreshProductsPayload 促销商品缓存重建任务载荷
type PromoRefreshProductsPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewVoucherReverseTask 创建优惠码冲正补偿任务
func NewVoucherReverseTask(payload VoucherReversePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVoucherReverse, body), nil
}

// NewPromoRefreshProductsTask 创建促销商品缓存重建任务
func NewPromoRefreshProductsTask(payload PromoRefreshProductsPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPromoRefreshProducts, body), nil
}
