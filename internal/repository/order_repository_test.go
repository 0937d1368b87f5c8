package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/sneakerhead-api/internal/constants"
	"github.com/sneakerhead-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOrderRepositoryTest(t *testing.T) (*GormOrderRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewOrderRepository(db), db
}

func seedOrder(t *testing.T, db *gorm.DB, paymentStatus string) *models.Order {
	t.Helper()
	user := &models.User{
		Username:     fmt.Sprintf("buyer_%d", time.Now().UnixNano()),
		Email:        fmt.Sprintf("buyer_%d@example.com", time.Now().UnixNano()),
		PasswordHash: "hash",
		Role:         constants.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	order := &models.Order{
		UserID:          user.ID,
		TotalAmount:     models.NewMoneyFromFloat(100),
		ShippingAddress: "Thamel Marg 12",
		ShippingCity:    "Kathmandu",
		ShippingCountry: "Nepal",
		PaymentMethod:   constants.PaymentMethodEsewa,
		PaymentStatus:   paymentStatus,
		OrderStatus:     constants.OrderStatusProcessing,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestCancelIfAwaitingPayment(t *testing.T) {
	repo, db := setupOrderRepositoryTest(t)
	order := seedOrder(t, db, constants.PaymentStatusPending)

	affected, err := repo.CancelIfAwaitingPayment(order.ID, map[string]interface{}{
		"payment_status": constants.PaymentStatusFailed,
	})
	if err != nil {
		t.Fatalf("CancelIfAwaitingPayment error: %v", err)
	}
	if affected != 1 {
		t.Fatalf("pending order should cancel, affected=%d", affected)
	}

	var stored models.Order
	if err := db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.OrderStatus != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", stored.OrderStatus)
	}
	if stored.PaymentStatus != constants.PaymentStatusFailed {
		t.Fatalf("expected payment failed, got %s", stored.PaymentStatus)
	}

	// 已取消的订单再次取消不更新任何行
	affected, err = repo.CancelIfAwaitingPayment(order.ID, nil)
	if err != nil {
		t.Fatalf("CancelIfAwaitingPayment error: %v", err)
	}
	if affected != 0 {
		t.Fatalf("cancelled order should not cancel again, affected=%d", affected)
	}
}

func TestCancelIfAwaitingPaymentSkipsPaidOrder(t *testing.T) {
	repo, db := setupOrderRepositoryTest(t)
	order := seedOrder(t, db, constants.PaymentStatusCompleted)

	affected, err := repo.CancelIfAwaitingPayment(order.ID, map[string]interface{}{
		"payment_status": constants.PaymentStatusFailed,
	})
	if err != nil {
		t.Fatalf("CancelIfAwaitingPayment error: %v", err)
	}
	if affected != 0 {
		t.Fatalf("paid order must not cancel, affected=%d", affected)
	}

	var stored models.Order
	if err := db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.OrderStatus != constants.OrderStatusProcessing {
		t.Fatalf("paid order should stay processing, got %s", stored.OrderStatus)
	}
	if stored.PaymentStatus != constants.PaymentStatusCompleted {
		t.Fatalf("payment status must stay completed, got %s", stored.PaymentStatus)
	}
}
