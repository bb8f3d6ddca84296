package constants

// 折扣类型常量
const (
	DiscountTypePercent = "percent"
	DiscountTypeFixed   = "fixed"
)

// 折扣比例边界（百分比折扣永远不会是 100%）
const (
	DiscountPercentMin = 1
	DiscountPercentMax = 99
)

// 优惠码适用范围常量
const (
	VoucherScopeInvoice  = "invoice"
	VoucherScopeShipping = "shipping"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskVoucherReverse       = "voucher:reverse"
	TaskPromoRefreshProducts = "promo:refresh_products"
)

// 缓存键常量
const (
	CacheKeyPromoProducts = "promo:products"
)
