package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sneakerhead-api/internal/constants"
	"github.com/sneakerhead-api/internal/models"
	"github.com/sneakerhead-api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	return NewOrderService(orderRepo, productRepo, cartRepo, nil, 30), db
}

func createOrderTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Username:     fmt.Sprintf("runner_%d", time.Now().UnixNano()),
		Email:        fmt.Sprintf("runner_%d@example.com", time.Now().UnixNano()),
		PasswordHash: "hash",
		Role:         constants.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createOrderTestProduct(t *testing.T, db *gorm.DB, name string, price float64, discount *float64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:         name,
		Description:  "test sneaker",
		Price:        models.NewMoneyFromFloat(price),
		ImageURL:     "/uploads/test.jpg",
		Brand:        "Nike",
		Category:     "Running",
		CountInStock: stock,
	}
	if discount != nil {
		dp := models.NewMoneyFromFloat(*discount)
		product.DiscountPrice = &dp
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestCreateOrderComputesTotalServerSide(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := createOrderTestUser(t, db)
	discount := 90.0
	p1 := createOrderTestProduct(t, db, "AJ1", 120, &discount, 10)
	p2 := createOrderTestProduct(t, db, "Dunk Low", 80, nil, 5)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID: user.ID,
		Items: []CreateOrderItem{
			{ProductID: p1.ID, Quantity: 2, Size: "9"},
			{ProductID: p2.ID, Quantity: 1, Size: "10"},
		},
		ShippingAddress: "Thamel Marg 12",
		ShippingCity:    "Kathmandu",
		ShippingCountry: "Nepal",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	// 折扣价 90×2 + 原价 80×1
	if !order.TotalAmount.Decimal.Equal(decimal.RequireFromString("260")) {
		t.Fatalf("unexpected total: %s", order.TotalAmount.String())
	}
	if order.OrderStatus != constants.OrderStatusProcessing {
		t.Fatalf("unexpected order status: %s", order.OrderStatus)
	}
	if order.PaymentStatus != constants.PaymentStatusPending {
		t.Fatalf("unexpected payment status: %s", order.PaymentStatus)
	}
	if order.PaymentMethod != constants.PaymentMethodEsewa {
		t.Fatalf("unexpected payment method: %s", order.PaymentMethod)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}

	var stored models.Product
	if err := db.First(&stored, p1.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if stored.CountInStock != 8 {
		t.Fatalf("expected stock 8, got %d", stored.CountInStock)
	}
}

func TestCreateOrderMergesDuplicateLines(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := createOrderTestUser(t, db)
	product := createOrderTestProduct(t, db, "Samba OG", 100, nil, 10)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID: user.ID,
		Items: []CreateOrderItem{
			{ProductID: product.ID, Quantity: 1, Size: "9", Color: "Black"},
			{ProductID: product.ID, Quantity: 2, Size: "9", Color: "Black"},
			{ProductID: product.ID, Quantity: 1, Size: "10", Color: "Black"},
		},
		ShippingAddress: "Thamel Marg 12",
		ShippingCity:    "Kathmandu",
		ShippingCountry: "Nepal",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	if len(order.Items) != 2 {
		t.Fatalf("duplicate variant lines should merge, got %d items", len(order.Items))
	}
	quantities := map[string]int{}
	for _, item := range order.Items {
		quantities[item.Size] = item.Quantity
	}
	if quantities["9"] != 3 || quantities["10"] != 1 {
		t.Fatalf("unexpected merged quantities: %v", quantities)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.RequireFromString("400")) {
		t.Fatalf("unexpected total: %s", order.TotalAmount.String())
	}
}

func TestCreateOrderClaimedTotalMismatch(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := createOrderTestUser(t, db)
	product := createOrderTestProduct(t, db, "Samba", 100, nil, 10)

	claimed := decimal.RequireFromString("95")
	_, err := svc.CreateOrder(CreateOrderInput{
		UserID:          user.ID,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "Lakeside Rd",
		ShippingCity:    "Pokhara",
		ShippingCountry: "Nepal",
		ClaimedTotal:    &claimed,
	})
	if !errors.Is(err, ErrOrderAmountMismatch) {
		t.Fatalf("expected ErrOrderAmountMismatch, got: %v", err)
	}

	var stored models.Product
	if err := db.First(&stored, product.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if stored.CountInStock != 10 {
		t.Fatalf("stock should be untouched, got %d", stored.CountInStock)
	}
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := createOrderTestUser(t, db)
	p1 := createOrderTestProduct(t, db, "AF1", 110, nil, 10)
	p2 := createOrderTestProduct(t, db, "Chuck 70", 75, nil, 1)

	_, err := svc.CreateOrder(CreateOrderInput{
		UserID: user.ID,
		Items: []CreateOrderItem{
			{ProductID: p1.ID, Quantity: 3},
			{ProductID: p2.ID, Quantity: 2},
		},
		ShippingAddress: "New Road",
		ShippingCity:    "Kathmandu",
		ShippingCountry: "Nepal",
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got: %v", err)
	}

	var stored models.Product
	if err := db.First(&stored, p1.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if stored.CountInStock != 10 {
		t.Fatalf("reserve should be rolled back, got stock %d", stored.CountInStock)
	}

	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("no order should exist, got %d", count)
	}
}

func TestCreateOrderClearsCart(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := createOrderTestUser(t, db)
	product := createOrderTestProduct(t, db, "Old Skool", 68, nil, 10)
	other := createOrderTestProduct(t, db, "Chuck 70", 85, nil, 10)

	ordered := models.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  2,
		Size:      "9",
	}
	if err := db.Create(&ordered).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}
	// 同商品不同尺码与另一商品均不在本单内
	kept := []models.CartItem{
		{UserID: user.ID, ProductID: product.ID, Quantity: 1, Size: "10"},
		{UserID: user.ID, ProductID: other.ID, Quantity: 1, Size: "9"},
	}
	for i := range kept {
		if err := db.Create(&kept[i]).Error; err != nil {
			t.Fatalf("create cart item failed: %v", err)
		}
	}

	if _, err := svc.CreateOrder(CreateOrderInput{
		UserID:          user.ID,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 2, Size: "9"}},
		ShippingAddress: "Patan Durbar Square",
		ShippingCity:    "Lalitpur",
		ShippingCountry: "Nepal",
	}); err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	var count int64
	if err := db.Model(&models.CartItem{}).Where("id = ?", ordered.ID).Count(&count).Error; err != nil {
		t.Fatalf("count cart items failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("ordered variant should be removed from cart, got %d rows", count)
	}

	var remaining []models.CartItem
	if err := db.Where("user_id = ?", user.ID).Find(&remaining).Error; err != nil {
		t.Fatalf("load cart items failed: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("unordered cart rows should survive, got %d rows", len(remaining))
	}
	for _, item := range remaining {
		if item.ProductID == product.ID && item.Size == "9" {
			t.Fatalf("ordered variant still present in cart")
		}
	}
}

func TestCreateOrderContendedStock(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	first := createOrderTestUser(t, db)
	second := createOrderTestUser(t, db)
	product := createOrderTestProduct(t, db, "AJ4 Bred", 210, nil, 5)

	if _, err := svc.CreateOrder(CreateOrderInput{
		UserID:          first.ID,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 3}},
		ShippingAddress: "Thamel Marg 12",
		ShippingCity:    "Kathmandu",
		ShippingCountry: "Nepal",
	}); err != nil {
		t.Fatalf("first CreateOrder error: %v", err)
	}

	_, err := svc.CreateOrder(CreateOrderInput{
		UserID:          second.ID,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 3}},
		ShippingAddress: "Lakeside Rd",
		ShippingCity:    "Pokhara",
		ShippingCountry: "Nepal",
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("second CreateOrder should fail with ErrInsufficientStock, got: %v", err)
	}

	var stored models.Product
	if err := db.First(&stored, product.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if stored.CountInStock != 2 {
		t.Fatalf("expected final stock 2, got %d", stored.CountInStock)
	}

	var orderCount int64
	if err := db.Model(&models.Order{}).Where("user_id = ?", second.ID).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("losing placement must create no order, got %d", orderCount)
	}
}

func TestCreateOrderRejectsInvalidInput(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := createOrderTestUser(t, db)
	product := createOrderTestProduct(t, db, "Gel-Kayano", 178, nil, 5)

	cases := []CreateOrderInput{
		{UserID: user.ID, ShippingAddress: "a", ShippingCity: "b", ShippingCountry: "c"},
		{UserID: user.ID, Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 0}}, ShippingAddress: "a", ShippingCity: "b", ShippingCountry: "c"},
		{UserID: user.ID, Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 1}}, ShippingCity: "b", ShippingCountry: "c"},
	}
	for i, input := range cases {
		if _, err := svc.CreateOrder(input); !errors.Is(err, ErrInvalidOrderItem) {
			t.Fatalf("case %d: expected ErrInvalidOrderItem, got: %v", i, err)
		}
	}
}

func TestGetOrderOwnership(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	owner := createOrderTestUser(t, db)
	other := createOrderTestUser(t, db)
	product := createOrderTestProduct(t, db, "NB 550", 125, nil, 5)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          owner.ID,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "Baneshwor",
		ShippingCity:    "Kathmandu",
		ShippingCountry: "Nepal",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	if _, err := svc.GetOrder(order.ID, other.ID, false); !errors.Is(err, ErrNotOrderOwner) {
		t.Fatalf("expected ErrNotOrderOwner, got: %v", err)
	}
	if _, err := svc.GetOrder(order.ID, other.ID, true); err != nil {
		t.Fatalf("admin should see any order, got: %v", err)
	}
	if _, err := svc.GetOrder(order.ID, owner.ID, false); err != nil {
		t.Fatalf("owner should see own order, got: %v", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := createOrderTestUser(t, db)
	product := createOrderTestProduct(t, db, "Suede Classic", 82, nil, 5)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          user.ID,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "Chabahil",
		ShippingCity:    "Kathmandu",
		ShippingCountry: "Nepal",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	// processing 不能直接 delivered
	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusDelivered); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got: %v", err)
	}

	shipped, err := svc.UpdateStatus(order.ID, constants.OrderStatusShipped)
	if err != nil {
		t.Fatalf("UpdateStatus shipped error: %v", err)
	}
	if shipped.OrderStatus != constants.OrderStatusShipped {
		t.Fatalf("unexpected status: %s", shipped.OrderStatus)
	}

	delivered, err := svc.UpdateStatus(order.ID, constants.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("UpdateStatus delivered error: %v", err)
	}
	if delivered.DeliveredAt == nil {
		t.Fatalf("delivered_at should be stamped")
	}

	// delivered 是终态
	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusCancelled); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition from delivered, got: %v", err)
	}
}

func TestUpdateStatusCancelRestocks(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := createOrderTestUser(t, db)
	product := createOrderTestProduct(t, db, "Ultraboost", 165, nil, 10)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          user.ID,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 4}},
		ShippingAddress: "Jawalakhel",
		ShippingCity:    "Lalitpur",
		ShippingCountry: "Nepal",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusCancelled); err != nil {
		t.Fatalf("UpdateStatus cancelled error: %v", err)
	}

	var stored models.Product
	if err := db.First(&stored, product.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if stored.CountInStock != 10 {
		t.Fatalf("expected restocked to 10, got %d", stored.CountInStock)
	}
}

func TestCancelExpiredOrder(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := createOrderTestUser(t, db)
	product := createOrderTestProduct(t, db, "Dunk Panda", 120, nil, 6)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          user.ID,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: "Boudha",
		ShippingCity:    "Kathmandu",
		ShippingCountry: "Nepal",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	if err := svc.CancelExpiredOrder(order.ID); err != nil {
		t.Fatalf("CancelExpiredOrder error: %v", err)
	}

	reloaded, err := svc.GetOrder(order.ID, user.ID, false)
	if err != nil {
		t.Fatalf("GetOrder error: %v", err)
	}
	if reloaded.OrderStatus != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", reloaded.OrderStatus)
	}
	if reloaded.PaymentStatus != constants.PaymentStatusFailed {
		t.Fatalf("expected payment failed, got %s", reloaded.PaymentStatus)
	}

	var stored models.Product
	if err := db.First(&stored, product.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if stored.CountInStock != 6 {
		t.Fatalf("expected restocked to 6, got %d", stored.CountInStock)
	}

	// 重入应当无副作用
	if err := svc.CancelExpiredOrder(order.ID); err != nil {
		t.Fatalf("second CancelExpiredOrder error: %v", err)
	}
	if err := db.First(&stored, product.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if stored.CountInStock != 6 {
		t.Fatalf("stock should not change on replay, got %d", stored.CountInStock)
	}
}

func TestInvalidateProductCachesWithoutRedis(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := createOrderTestUser(t, db)
	product := createOrderTestProduct(t, db, "Gazelle Indoor", 110, nil, 5)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          user.ID,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "Jawalakhel",
		ShippingCity:    "Lalitpur",
		ShippingCountry: "Nepal",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	// 未配置 redis 时应当静默跳过
	svc.invalidateProductCaches(order)
	svc.invalidateProductCaches(nil)
}

func TestCancelExpiredOrderSkipsPaidOrder(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := createOrderTestUser(t, db)
	product := createOrderTestProduct(t, db, "Kayano 30", 178, nil, 6)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          user.ID,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "Kalanki",
		ShippingCity:    "Kathmandu",
		ShippingCountry: "Nepal",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("payment_status", constants.PaymentStatusCompleted).Error; err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	if err := svc.CancelExpiredOrder(order.ID); err != nil {
		t.Fatalf("CancelExpiredOrder error: %v", err)
	}

	reloaded, err := svc.GetOrder(order.ID, user.ID, false)
	if err != nil {
		t.Fatalf("GetOrder error: %v", err)
	}
	if reloaded.OrderStatus != constants.OrderStatusProcessing {
		t.Fatalf("paid order should stay processing, got %s", reloaded.OrderStatus)
	}
}
