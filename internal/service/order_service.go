package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sneakerhead-api/internal/cache"
	"github.com/sneakerhead-api/internal/constants"
	"github.com/sneakerhead-api/internal/logger"
	"github.com/sneakerhead-api/internal/models"
	"github.com/sneakerhead-api/internal/queue"
	"github.com/sneakerhead-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	cartRepo      repository.CartRepository
	queueClient   *queue.Client
	expireMinutes int
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, cartRepo repository.CartRepository, queueClient *queue.Client, expireMinutes int) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		cartRepo:      cartRepo,
		queueClient:   queueClient,
		expireMinutes: expireMinutes,
	}
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID             uint
	Items              []CreateOrderItem
	ShippingAddress    string
	ShippingCity       string
	ShippingPostalCode string
	ShippingCountry    string
	PaymentMethod      string
	// ClaimedTotal 客户端展示的总额，非空时与服务端重算结果比对
	ClaimedTotal *decimal.Decimal
}

// CreateOrderItem 创建订单项输入
type CreateOrderItem struct {
	ProductID uint
	Quantity  int
	Size      string
	Color     string
}

// allowedTransitions 订单状态机，不在表内的流转一律拒绝
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped:   true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
		constants.OrderStatusCancelled: true,
	},
}

// mergeOrderItems 合并重复的 (商品, 尺码, 颜色) 行
func mergeOrderItems(items []CreateOrderItem) []CreateOrderItem {
	type variantKey struct {
		productID uint
		size      string
		color     string
	}
	merged := make([]CreateOrderItem, 0, len(items))
	index := make(map[variantKey]int, len(items))
	for _, item := range items {
		key := variantKey{
			productID: item.ProductID,
			size:      strings.TrimSpace(item.Size),
			color:     strings.TrimSpace(item.Color),
		}
		if i, ok := index[key]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[key] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// CreateOrder 创建订单
// 校验、计价、扣库存、建单、清除已购购物车变体在同一事务内完成
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 || len(input.Items) == 0 {
		return nil, ErrInvalidOrderItem
	}
	for _, item := range input.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, ErrInvalidOrderItem
		}
	}
	if strings.TrimSpace(input.ShippingAddress) == "" ||
		strings.TrimSpace(input.ShippingCity) == "" ||
		strings.TrimSpace(input.ShippingCountry) == "" {
		return nil, ErrInvalidOrderItem
	}

	items := mergeOrderItems(input.Items)

	productIDs := make([]uint, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.productRepo.ListByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	productByID := make(map[uint]*models.Product, len(products))
	for i := range products {
		productByID[products[i].ID] = &products[i]
	}

	total := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(items))
	now := time.Now()
	for _, item := range items {
		product, ok := productByID[item.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		if product.CountInStock < item.Quantity {
			return nil, ErrInsufficientStock
		}
		unit := product.UnitPrice()
		total = total.Add(unit.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     unit,
			Size:      strings.TrimSpace(item.Size),
			Color:     strings.TrimSpace(item.Color),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if input.ClaimedTotal != nil && !input.ClaimedTotal.Equal(total) {
		return nil, ErrOrderAmountMismatch
	}

	paymentMethod := strings.TrimSpace(input.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = constants.PaymentMethodEsewa
	}

	order := &models.Order{
		UserID:             input.UserID,
		TotalAmount:        models.NewMoneyFromDecimal(total),
		ShippingAddress:    strings.TrimSpace(input.ShippingAddress),
		ShippingCity:       strings.TrimSpace(input.ShippingCity),
		ShippingPostalCode: strings.TrimSpace(input.ShippingPostalCode),
		ShippingCountry:    strings.TrimSpace(input.ShippingCountry),
		PaymentMethod:      paymentMethod,
		PaymentStatus:      constants.PaymentStatusPending,
		OrderStatus:        constants.OrderStatusProcessing,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		for _, item := range orderItems {
			affected, err := productRepo.ReserveStock(item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrInsufficientStock
			}
		}

		if err := orderRepo.Create(order, orderItems); err != nil {
			return err
		}

		// 只清除本单覆盖的变体，未下单的购物车行保留
		for _, item := range orderItems {
			if err := cartRepo.DeleteVariant(input.UserID, item.ProductID, item.Size, item.Color); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, ErrInsufficientStock
		}
		logger.Errorw("order_create_failed", "user_id", input.UserID, "error", err)
		return nil, ErrOrderCreateFailed
	}

	s.invalidateProductCaches(order)

	expireMinutes := s.expireMinutes
	if expireMinutes <= 0 {
		expireMinutes = 30
	}
	if s.queueClient != nil {
		if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{
			OrderID: order.ID,
		}, time.Duration(expireMinutes)*time.Minute); err != nil {
			logger.Errorw("order_enqueue_timeout_cancel_failed",
				"order_id", order.ID,
				"error", err,
			)
		}
	}

	full, err := s.orderRepo.GetByID(order.ID)
	if err == nil && full != nil {
		return full, nil
	}
	return order, nil
}

// GetOrder 获取订单详情，非本人且非管理员时拒绝
func (s *OrderService) GetOrder(orderID, userID uint, isAdmin bool) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !isAdmin && order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

// ListMyOrders 用户订单列表
func (s *OrderService) ListMyOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.UserID == 0 {
		return nil, 0, ErrNotFound
	}
	return s.orderRepo.ListByUser(filter)
}

// ListAdmin 管理端订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// UpdateStatus 管理端更新订单状态
// delivered 自动盖送达时间戳，cancelled 回补库存
func (s *OrderService) UpdateStatus(orderID uint, newStatus string) (*models.Order, error) {
	newStatus = strings.ToLower(strings.TrimSpace(newStatus))
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if !allowedTransitions[order.OrderStatus][newStatus] {
		return nil, ErrInvalidStatusTransition
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if newStatus == constants.OrderStatusDelivered {
		updates["delivered_at"] = time.Now()
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		if err := orderRepo.UpdateStatus(orderID, newStatus, updates); err != nil {
			return err
		}
		if newStatus == constants.OrderStatusCancelled {
			return s.restockItems(tx, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if newStatus == constants.OrderStatusCancelled {
		s.invalidateProductCaches(order)
	}
	return s.orderRepo.GetByID(orderID)
}

// CancelExpiredOrder 超时取消未支付订单，由队列 worker 调用
// 已支付或已非 processing 状态的订单不处理，可安全重入
func (s *OrderService) CancelExpiredOrder(orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}
	if order.OrderStatus != constants.OrderStatusProcessing {
		return nil
	}
	if order.PaymentStatus == constants.PaymentStatusCompleted {
		return nil
	}

	cancelled := false
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		updates := map[string]interface{}{
			"updated_at":     time.Now(),
			"payment_status": constants.PaymentStatusFailed,
		}
		affected, err := orderRepo.CancelIfAwaitingPayment(orderID, updates)
		if err != nil {
			return err
		}
		// 读取后支付已完成或状态已变，放弃取消
		if affected == 0 {
			return nil
		}
		cancelled = true
		return s.restockItems(tx, order)
	})
	if err != nil {
		return err
	}
	if !cancelled {
		return nil
	}
	s.invalidateProductCaches(order)
	logger.Infow("order_timeout_cancelled", "order_id", orderID)
	return nil
}

// invalidateProductCaches 库存变化后清掉相关商品的详情与列表缓存
func (s *OrderService) invalidateProductCaches(order *models.Order) {
	if order == nil || !cache.Enabled() {
		return
	}
	ctx := context.Background()
	for _, item := range order.Items {
		if err := cache.DelProductDetail(ctx, item.ProductID); err != nil {
			logger.Warnw("product_detail_cache_del_failed", "product_id", item.ProductID, "error", err)
		}
	}
	if err := cache.InvalidateProductLists(ctx); err != nil {
		logger.Warnw("product_list_cache_invalidate_failed", "error", err)
	}
}

func (s *OrderService) restockItems(tx *gorm.DB, order *models.Order) error {
	productRepo := s.productRepo.WithTx(tx)
	for _, item := range order.Items {
		if _, err := productRepo.ReleaseStock(item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}
