package repository

// VoucherListFilter 查询优惠码列表的过滤条件
type VoucherListFilter struct {
	ID       uint
	Code     string
	Scope    string
	Page     int
	PageSize int
}

// CampaignListFilter 查询促销活动列表的过滤条件
type CampaignListFilter struct {
	ID         uint
	Code       string
	IsFeatured *bool
	WithItems  bool
	Page       int
	PageSize   int
}
