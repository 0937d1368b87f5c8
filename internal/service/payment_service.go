package service

import (
	"context"
	"strings"
	"time"

	"github.com/sneakerhead-api/internal/config"
	"github.com/sneakerhead-api/internal/constants"
	"github.com/sneakerhead-api/internal/logger"
	"github.com/sneakerhead-api/internal/models"
	"github.com/sneakerhead-api/internal/payment/esewa"
	"github.com/sneakerhead-api/internal/repository"
)

// PaymentService 支付服务，封装 eSewa 收银台跳转与回调核验
type PaymentService struct {
	cfg       *config.EsewaConfig
	orderRepo repository.OrderRepository
}

// NewPaymentService 创建支付服务
func NewPaymentService(cfg *config.EsewaConfig, orderRepo repository.OrderRepository) *PaymentService {
	return &PaymentService{
		cfg:       cfg,
		orderRepo: orderRepo,
	}
}

// EsewaPayment 收银台跳转数据
type EsewaPayment struct {
	PaymentURL  string            `json:"payment_url"`
	MerchantRef string            `json:"merchant_ref"`
	Params      map[string]string `json:"params"`
}

// VerifyCallbackInput 支付回调输入
type VerifyCallbackInput struct {
	MerchantRef string // oid
	Amount      string // amt
	RefID       string // refId
}

func (s *PaymentService) gatewayConfig() *esewa.Config {
	return &esewa.Config{
		GatewayURL:   s.cfg.GatewayURL,
		VerifyURL:    s.cfg.VerifyURL,
		MerchantCode: s.cfg.MerchantCode,
		SuccessURL:   s.cfg.SuccessURL,
		FailureURL:   s.cfg.FailureURL,
		RefPrefix:    s.cfg.RefPrefix,
		Timeout:      time.Duration(s.cfg.TimeoutMS) * time.Millisecond,
	}
}

// CreateEsewaPayment 为订单生成收银台表单参数
// 仅限本人、处理中且未支付的订单
func (s *PaymentService) CreateEsewaPayment(orderID, userID uint) (*EsewaPayment, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.OrderStatus != constants.OrderStatusProcessing ||
		order.PaymentStatus != constants.PaymentStatusPending {
		return nil, ErrOrderNotPending
	}

	result, err := esewa.CreatePayment(s.gatewayConfig(), esewa.CreateInput{
		OrderID: order.ID,
		Amount:  order.TotalAmount.String(),
	})
	if err != nil {
		return nil, err
	}
	return &EsewaPayment{
		PaymentURL:  result.PaymentURL,
		MerchantRef: result.MerchantRef,
		Params:      result.Params,
	}, nil
}

// VerifyCallback 处理支付成功回调
// 先向网关核验交易再落库，重复回调同一 refId 幂等返回
func (s *PaymentService) VerifyCallback(ctx context.Context, input VerifyCallbackInput) (*models.Order, error) {
	refID := strings.TrimSpace(input.RefID)
	if refID == "" {
		return nil, ErrPaymentRefRequired
	}

	orderID, err := esewa.ParseMerchantRef(input.MerchantRef)
	if err != nil {
		return nil, ErrPaymentRefMismatch
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if order.PaymentStatus == constants.PaymentStatusCompleted {
		if order.PaymentID == refID {
			return order, nil
		}
		return nil, ErrPaymentRefMismatch
	}
	if order.OrderStatus == constants.OrderStatusCancelled {
		return nil, ErrOrderNotPending
	}

	amount := strings.TrimSpace(input.Amount)
	if amount == "" {
		amount = order.TotalAmount.String()
	}

	verifyErr := error(nil)
	if s.cfg.SkipVerify {
		logger.Warnw("esewa_verify_skipped", "order_id", orderID, "ref_id", refID)
	} else {
		verifyErr = esewa.VerifyTransaction(ctx, s.gatewayConfig(), esewa.VerifyInput{
			MerchantRef: strings.TrimSpace(input.MerchantRef),
			Amount:      amount,
			RefID:       refID,
		})
	}
	if verifyErr != nil {
		logger.Warnw("esewa_verify_failed",
			"order_id", orderID,
			"ref_id", refID,
			"error", verifyErr,
		)
		if uerr := s.orderRepo.UpdatePayment(orderID, constants.PaymentStatusFailed, ""); uerr != nil {
			logger.Errorw("order_payment_mark_failed_error", "order_id", orderID, "error", uerr)
		}
		return nil, ErrPaymentVerifyFailed
	}

	if err := s.orderRepo.UpdatePayment(orderID, constants.PaymentStatusCompleted, refID); err != nil {
		return nil, err
	}
	logger.Infow("order_payment_completed", "order_id", orderID, "ref_id", refID)
	return s.orderRepo.GetByID(orderID)
}
