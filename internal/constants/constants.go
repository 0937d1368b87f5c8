package constants

// 用户角色常量
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// 支付状态常量
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// 订单状态常量
const (
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// 支付方式常量
const (
	PaymentMethodEsewa = "esewa"
)

// 商品排序常量
const (
	ProductSortPriceAsc  = "price-asc"
	ProductSortPriceDesc = "price-desc"
	ProductSortNewest    = "newest"
	ProductSortRating    = "rating"
)

// 异步任务类型常量
const (
	TaskOrderTimeoutCancel = "order:timeout_cancel"
	QueueDefault           = "default"
)

// 评分边界常量
const (
	RatingMin = 1
	RatingMax = 5
)
