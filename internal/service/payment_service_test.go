package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sneakerhead-api/internal/config"
	"github.com/sneakerhead-api/internal/constants"
	"github.com/sneakerhead-api/internal/models"
	"github.com/sneakerhead-api/internal/payment/esewa"
	"github.com/sneakerhead-api/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPaymentServiceTest(t *testing.T, verifyURL string) (*PaymentService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:payment_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	models.DB = db
	cfg := &config.EsewaConfig{
		GatewayURL:   "https://uat.esewa.com.np/epay/main",
		VerifyURL:    verifyURL,
		MerchantCode: "EPAYTEST",
		SuccessURL:   "https://shop.example.com/payment/success",
		FailureURL:   "https://shop.example.com/payment/failure",
		RefPrefix:    "SNEAKERHEAD",
		TimeoutMS:    2000,
	}
	return NewPaymentService(cfg, repository.NewOrderRepository(db)), db
}

func createPaymentTestOrder(t *testing.T, db *gorm.DB, userID uint, total float64) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:          userID,
		TotalAmount:     models.NewMoneyFromFloat(total),
		ShippingAddress: "Thamel Marg 12",
		ShippingCity:    "Kathmandu",
		ShippingCountry: "Nepal",
		PaymentMethod:   constants.PaymentMethodEsewa,
		PaymentStatus:   constants.PaymentStatusPending,
		OrderStatus:     constants.OrderStatusProcessing,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestCreateEsewaPayment(t *testing.T) {
	svc, db := setupPaymentServiceTest(t, "https://uat.esewa.com.np/epay/transrec")
	order := createPaymentTestOrder(t, db, 1, 260)

	payment, err := svc.CreateEsewaPayment(order.ID, 1)
	if err != nil {
		t.Fatalf("CreateEsewaPayment error: %v", err)
	}
	if payment.PaymentURL != "https://uat.esewa.com.np/epay/main" {
		t.Fatalf("unexpected payment url: %s", payment.PaymentURL)
	}
	if payment.Params["amt"] != "260.00" || payment.Params["tAmt"] != "260.00" {
		t.Fatalf("unexpected amounts: %+v", payment.Params)
	}
	if orderID, err := esewa.ParseMerchantRef(payment.MerchantRef); err != nil || orderID != order.ID {
		t.Fatalf("merchant ref should encode order id, got id=%d err=%v", orderID, err)
	}
}

func TestCreateEsewaPaymentWrongUser(t *testing.T) {
	svc, db := setupPaymentServiceTest(t, "https://uat.esewa.com.np/epay/transrec")
	order := createPaymentTestOrder(t, db, 1, 100)

	if _, err := svc.CreateEsewaPayment(order.ID, 2); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got: %v", err)
	}
}

func TestCreateEsewaPaymentNotPending(t *testing.T) {
	svc, db := setupPaymentServiceTest(t, "https://uat.esewa.com.np/epay/transrec")
	order := createPaymentTestOrder(t, db, 1, 100)
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("payment_status", constants.PaymentStatusCompleted).Error; err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	if _, err := svc.CreateEsewaPayment(order.ID, 1); !errors.Is(err, ErrOrderNotPending) {
		t.Fatalf("expected ErrOrderNotPending, got: %v", err)
	}
}

func TestVerifyCallbackCompletesPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<response><response_code>Success</response_code></response>"))
	}))
	defer server.Close()

	svc, db := setupPaymentServiceTest(t, server.URL)
	order := createPaymentTestOrder(t, db, 1, 260)
	ref := esewa.BuildMerchantRef("SNEAKERHEAD", order.ID)

	updated, err := svc.VerifyCallback(context.Background(), VerifyCallbackInput{
		MerchantRef: ref,
		Amount:      "260.00",
		RefID:       "0007XYZ",
	})
	if err != nil {
		t.Fatalf("VerifyCallback error: %v", err)
	}
	if updated.PaymentStatus != constants.PaymentStatusCompleted {
		t.Fatalf("expected completed, got %s", updated.PaymentStatus)
	}
	if updated.PaymentID != "0007XYZ" {
		t.Fatalf("expected ref id stored, got %q", updated.PaymentID)
	}
}

func TestVerifyCallbackIdempotent(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("Success"))
	}))
	defer server.Close()

	svc, db := setupPaymentServiceTest(t, server.URL)
	order := createPaymentTestOrder(t, db, 1, 100)
	ref := esewa.BuildMerchantRef("SNEAKERHEAD", order.ID)
	input := VerifyCallbackInput{MerchantRef: ref, Amount: "100.00", RefID: "REF001"}

	if _, err := svc.VerifyCallback(context.Background(), input); err != nil {
		t.Fatalf("first VerifyCallback error: %v", err)
	}
	replayed, err := svc.VerifyCallback(context.Background(), input)
	if err != nil {
		t.Fatalf("replayed VerifyCallback error: %v", err)
	}
	if replayed.PaymentStatus != constants.PaymentStatusCompleted {
		t.Fatalf("expected completed, got %s", replayed.PaymentStatus)
	}
	if calls != 1 {
		t.Fatalf("gateway should be queried once, got %d", calls)
	}

	// 已完成订单携带其它 refId 视为异常回调
	if _, err := svc.VerifyCallback(context.Background(), VerifyCallbackInput{
		MerchantRef: ref, Amount: "100.00", RefID: "REF002",
	}); !errors.Is(err, ErrPaymentRefMismatch) {
		t.Fatalf("expected ErrPaymentRefMismatch, got: %v", err)
	}
}

func TestVerifyCallbackGatewayRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("failure"))
	}))
	defer server.Close()

	svc, db := setupPaymentServiceTest(t, server.URL)
	order := createPaymentTestOrder(t, db, 1, 100)
	ref := esewa.BuildMerchantRef("SNEAKERHEAD", order.ID)

	if _, err := svc.VerifyCallback(context.Background(), VerifyCallbackInput{
		MerchantRef: ref, Amount: "100.00", RefID: "REF001",
	}); !errors.Is(err, ErrPaymentVerifyFailed) {
		t.Fatalf("expected ErrPaymentVerifyFailed, got: %v", err)
	}

	var stored models.Order
	if err := db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.PaymentStatus != constants.PaymentStatusFailed {
		t.Fatalf("expected payment failed, got %s", stored.PaymentStatus)
	}
}

func TestVerifyCallbackInvalidInput(t *testing.T) {
	svc, db := setupPaymentServiceTest(t, "https://uat.esewa.com.np/epay/transrec")
	order := createPaymentTestOrder(t, db, 1, 100)
	ref := esewa.BuildMerchantRef("SNEAKERHEAD", order.ID)

	if _, err := svc.VerifyCallback(context.Background(), VerifyCallbackInput{
		MerchantRef: ref, Amount: "100.00",
	}); !errors.Is(err, ErrPaymentRefRequired) {
		t.Fatalf("expected ErrPaymentRefRequired, got: %v", err)
	}

	if _, err := svc.VerifyCallback(context.Background(), VerifyCallbackInput{
		MerchantRef: "garbage", Amount: "100.00", RefID: "REF001",
	}); !errors.Is(err, ErrPaymentRefMismatch) {
		t.Fatalf("expected ErrPaymentRefMismatch, got: %v", err)
	}

	if _, err := svc.VerifyCallback(context.Background(), VerifyCallbackInput{
		MerchantRef: "SNEAKERHEAD-99999-1700000000", Amount: "100.00", RefID: "REF001",
	}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got: %v", err)
	}
}

func TestVerifyCallbackSkipVerify(t *testing.T) {
	svc, db := setupPaymentServiceTest(t, "http://127.0.0.1:1/unreachable")
	svc.cfg.SkipVerify = true
	order := createPaymentTestOrder(t, db, 1, 100)
	ref := esewa.BuildMerchantRef("SNEAKERHEAD", order.ID)

	updated, err := svc.VerifyCallback(context.Background(), VerifyCallbackInput{
		MerchantRef: ref, Amount: "100.00", RefID: "REF001",
	})
	if err != nil {
		t.Fatalf("VerifyCallback error: %v", err)
	}
	if updated.PaymentStatus != constants.PaymentStatusCompleted {
		t.Fatalf("expected completed, got %s", updated.PaymentStatus)
	}
}
