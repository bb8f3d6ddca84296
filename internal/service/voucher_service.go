package service

import (
	"time"

	"github.com/promo-next/internal/logger"
	"github.com/promo-next/internal/models"
	"github.com/promo-next/internal/repository"
)

// VoucherService 优惠码核销服务
type VoucherService struct {
	voucherRepo repository.VoucherRepository
	usageRepo   repository.VoucherUsageRepository
}

// NewVoucherService 创建优惠码核销服务
func NewVoucherService(voucherRepo repository.VoucherRepository, usageRepo repository.VoucherUsageRepository) *VoucherService {
	return &VoucherService{
		voucherRepo: voucherRepo,
		usageRepo:   usageRepo,
	}
}

// ListUsable 获取客户当前可用的优惠码
// 过滤掉总量耗尽与该客户已达使用上限的优惠码。
func (s *VoucherService) ListUsable(customerID string) ([]models.Voucher, error) {
	now := time.Now()
	vouchers, err := s.voucherRepo.ListActive(now)
	if err != nil {
		return nil, err
	}

	usages, err := s.usageRepo.ListByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	used := make(map[uint]int, len(usages))
	for _, usage := range usages {
		used[usage.VoucherID] = usage.UseCount
	}

	usable := make([]models.Voucher, 0, len(vouchers))
	for _, voucher := range vouchers {
		if voucher.IsCapped() && *voucher.RemainingUses <= 0 {
			continue
		}
		if voucher.PerUserLimit > 0 && used[voucher.ID] >= voucher.PerUserLimit {
			continue
		}
		usable = append(usable, voucher)
	}
	return usable, nil
}

// Redeem 批量核销优惠码
// 按调用方给定顺序逐个处理，遇到失败立即停止。失败时已核销的
// 前缀不回滚，随返回值一并交还，由调用方决定补偿。
func (s *VoucherService) Redeem(customerID string, voucherIDs []uint) ([]models.Voucher, error) {
	applied := make([]models.Voucher, 0, len(voucherIDs))
	now := time.Now()

	for _, id := range voucherIDs {
		voucher, err := s.redeemOne(customerID, id, now)
		if err != nil {
			logger.Warnw("优惠码核销失败",
				"voucher_id", id,
				"customer_id", customerID,
				"applied", len(applied),
				"error", err,
			)
			return applied, &RedeemError{VoucherID: id, Err: err}
		}
		applied = append(applied, *voucher)
	}
	return applied, nil
}

func (s *VoucherService) redeemOne(customerID string, id uint, now time.Time) (*models.Voucher, error) {
	voucher, err := s.voucherRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, ErrVoucherNotFound
	}
	if !voucher.InWindow(now) {
		return nil, ErrVoucherExpired
	}
	if voucher.IsCapped() && *voucher.RemainingUses <= 0 {
		return nil, ErrVoucherExhausted
	}

	usage, err := s.usageRepo.Get(voucher.ID, customerID)
	if err != nil {
		return nil, err
	}
	if usage != nil && voucher.PerUserLimit > 0 && usage.UseCount >= voucher.PerUserLimit {
		return nil, ErrVoucherPerUserLimit
	}

	if usage == nil {
		if err := s.usageRepo.Create(&models.VoucherUsage{
			VoucherID:  voucher.ID,
			CustomerID: customerID,
			UseCount:   1,
		}); err != nil {
			// 并发首次核销可能撞上 (voucher_id, customer_id) 唯一索引，
			// 回查确认台账已存在后改走守卫递增路径
			existing, getErr := s.usageRepo.Get(voucher.ID, customerID)
			if getErr != nil || existing == nil {
				return nil, err
			}
			rows, incErr := s.usageRepo.IncrementUseCount(voucher.ID, customerID, voucher.PerUserLimit)
			if incErr != nil {
				return nil, incErr
			}
			if rows == 0 {
				return nil, ErrVoucherPerUserLimit
			}
		}
	} else {
		rows, err := s.usageRepo.IncrementUseCount(voucher.ID, customerID, voucher.PerUserLimit)
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			// 并发下其他请求抢先占满了该客户的额度
			return nil, ErrVoucherPerUserLimit
		}
	}

	if voucher.IsCapped() {
		rows, err := s.voucherRepo.DecrementRemaining(voucher.ID)
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			// 总量扣减失败，退回刚写入的台账增量
			if _, rollbackErr := s.usageRepo.DecrementUseCount(voucher.ID, customerID); rollbackErr != nil {
				logger.Errorw("优惠码台账回退失败",
					"voucher_id", voucher.ID,
					"customer_id", customerID,
					"error", rollbackErr,
				)
			} else if err := s.usageRepo.DeleteIfDrained(voucher.ID, customerID); err != nil {
				logger.Errorw("优惠码台账清理失败",
					"voucher_id", voucher.ID,
					"customer_id", customerID,
					"error", err,
				)
			}
			return nil, ErrVoucherExhausted
		}
	}

	updated, err := s.voucherRepo.GetByID(voucher.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrVoucherNotFound
	}
	return updated, nil
}

// Reverse 批量冲正优惠码核销
// 客户没有对应台账记录时静默跳过，保证冲正可重复执行。
func (s *VoucherService) Reverse(customerID string, voucherIDs []uint) error {
	for _, id := range voucherIDs {
		if err := s.reverseOne(customerID, id); err != nil {
			return &RedeemError{VoucherID: id, Err: err}
		}
	}
	return nil
}

func (s *VoucherService) reverseOne(customerID string, id uint) error {
	voucher, err := s.voucherRepo.GetByID(id)
	if err != nil {
		return err
	}
	if voucher == nil {
		return ErrVoucherNotFound
	}

	rows, err := s.usageRepo.DecrementUseCount(voucher.ID, customerID)
	if err != nil {
		return err
	}
	if rows == 0 {
		// 无台账或已清零，视为本客户未核销过
		return nil
	}
	if err := s.usageRepo.DeleteIfDrained(voucher.ID, customerID); err != nil {
		return err
	}

	if voucher.IsCapped() {
		if _, err := s.voucherRepo.IncrementRemaining(voucher.ID); err != nil {
			return err
		}
	}
	return nil
}
