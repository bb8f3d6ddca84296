package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/promo-next/internal/logger"
	"github.com/promo-next/internal/provider"
	"github.com/promo-next/internal/queue"
	"github.com/promo-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskVoucherReverse, c.handleVoucherReverse)
	mux.HandleFunc(queue.TaskPromoRefreshProducts, c.handlePromoRefreshProducts)
}

// handleVoucherReverse 回退批量核销失败后残留的已核销前缀
// 冲正对缺失台账静默跳过，任务重复投递也是安全的。
func (c *Consumer) handleVoucherReverse(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_voucher_reverse_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.VoucherReversePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_voucher_reverse_unmarshal_failed", "error", err)
		return err
	}
	if payload.CustomerID == "" || len(payload.VoucherIDs) == 0 {
		logger.Debugw("worker_voucher_reverse_skip_invalid_payload",
			"customer_id", payload.CustomerID,
			"voucher_count", len(payload.VoucherIDs),
		)
		return nil
	}
	if c.VoucherService == nil {
		logger.Warnw("worker_voucher_reverse_skip_service_nil", "customer_id", payload.CustomerID)
		return nil
	}
	if err := c.VoucherService.Reverse(payload.CustomerID, payload.VoucherIDs); err != nil {
		if errors.Is(err, service.ErrVoucherNotFound) {
			logger.Debugw("worker_voucher_reverse_skip_voucher_not_found",
				"customer_id", payload.CustomerID,
				"error", err,
			)
			return nil
		}
		logger.Warnw("worker_voucher_reverse_failed",
			"customer_id", payload.CustomerID,
			"voucher_count", len(payload.VoucherIDs),
			"error", err,
		)
		return err
	}
	return nil
}

// handlePromoRefreshProducts 重建促销商品集合缓存
func (c *Consumer) handlePromoRefreshProducts(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_promo_refresh_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PromoRefreshProductsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_promo_refresh_unmarshal_failed", "error", err)
		return err
	}
	if c.PromotionService == nil {
		logger.Warnw("worker_promo_refresh_skip_service_nil", "reason", payload.Reason)
		return nil
	}
	if err := c.PromotionService.RefreshProductsCache(ctx); err != nil {
		logger.Warnw("worker_promo_refresh_failed", "reason", payload.Reason, "error", err)
		return err
	}
	return nil
}
