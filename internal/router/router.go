package router

import (
	"fmt"
	"strings"

	"github.com/promo-next/internal/cache"
	"github.com/promo-next/internal/config"
	adminhandlers "github.com/promo-next/internal/http/handlers/admin"
	publichandlers "github.com/promo-next/internal/http/handlers/public"
	"github.com/promo-next/internal/logger"
	"github.com/promo-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "promo"
	}
	redisClient := cache.Client()
	redeemRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:redeem", redisPrefix),
		WindowSeconds: cfg.Security.RedeemRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.RedeemRateLimit.MaxAttempts,
		Message:       "error.redeem_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 优惠码核销接口
		vouchers := apiV1.Group("/vouchers")
		{
			vouchers.GET("/usable", publicHandler.GetUsableVouchers)
			vouchers.POST("/redeem", RateLimitMiddleware(redisClient, redeemRule, KeyByIPAndHeader("X-Customer-ID")), publicHandler.RedeemVouchers)
			vouchers.POST("/reverse", publicHandler.ReverseVouchers)
		}

		// 促销核销接口
		promotions := apiV1.Group("/promotions")
		{
			promotions.GET("/products", publicHandler.GetPromotionProducts)
			promotions.GET("/products/:product_id", publicHandler.GetUsablePromotion)
			promotions.POST("/query", publicHandler.GetUsablePromotions)
			promotions.POST("/apply", RateLimitMiddleware(redisClient, redeemRule, KeyByIP), publicHandler.ApplyPromotions)
			promotions.POST("/reverse", publicHandler.ReversePromotions)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 优惠码管理
			admin.POST("/vouchers", adminHandler.CreateVoucher)
			admin.GET("/vouchers", adminHandler.GetAdminVouchers)
			admin.GET("/vouchers/:id", adminHandler.GetAdminVoucher)
			admin.PUT("/vouchers/:id", adminHandler.UpdateVoucher)
			admin.DELETE("/vouchers/:id", adminHandler.DeleteVoucher)

			// 促销活动管理
			admin.POST("/campaigns", adminHandler.CreateCampaign)
			admin.GET("/campaigns", adminHandler.GetAdminCampaigns)
			admin.GET("/campaigns/:id", adminHandler.GetAdminCampaign)
			admin.PUT("/campaigns/:id", adminHandler.UpdateCampaign)
			admin.DELETE("/campaigns/:id", adminHandler.DeleteCampaign)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
