package provider

import (
	"github.com/promo-next/internal/cache"
	"github.com/promo-next/internal/config"
	"github.com/promo-next/internal/logger"
	"github.com/promo-next/internal/models"
	"github.com/promo-next/internal/queue"
	"github.com/promo-next/internal/repository"
	"github.com/promo-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	VoucherRepo      repository.VoucherRepository
	VoucherUsageRepo repository.VoucherUsageRepository
	CampaignRepo     repository.CampaignRepository
	CampaignItemRepo repository.CampaignItemRepository

	// Services
	VoucherService        *service.VoucherService
	VoucherAdminService   *service.VoucherAdminService
	PromotionService      *service.PromotionService
	PromotionAdminService *service.PromotionAdminService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.VoucherRepo = repository.NewVoucherRepository(db)
	c.VoucherUsageRepo = repository.NewVoucherUsageRepository(db)
	c.CampaignRepo = repository.NewCampaignRepository(db)
	c.CampaignItemRepo = repository.NewCampaignItemRepository(db)
}

func (c *Container) initServices() {
	c.VoucherService = service.NewVoucherService(c.VoucherRepo, c.VoucherUsageRepo)
	c.VoucherAdminService = service.NewVoucherAdminService(c.VoucherRepo)
	c.PromotionService = service.NewPromotionService(c.CampaignRepo, c.CampaignItemRepo)
	c.PromotionAdminService = service.NewPromotionAdminService(c.CampaignRepo, c.CampaignItemRepo, c.QueueClient)
}
