package public

import (
	"github.com/sneakerhead-api/internal/http/response"
	"github.com/sneakerhead-api/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateEsewaPayment 生成 eSewa 支付跳转参数,由前端以表单提交到网关。
func (h *Handler) CreateEsewaPayment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.PaymentService.CreateEsewaPayment(orderID, userID)
	if err != nil {
		respondWithMappedError(c, err, paymentErrorRules, response.CodeInternal, "failed to create payment")
		return
	}

	response.Success(c, payment)
}

type esewaCallbackRequest struct {
	MerchantRef string `form:"oid" json:"oid"`
	Amount      string `form:"amt" json:"amt"`
	RefID       string `form:"refId" json:"refId"`
}

// EsewaCallback 支付成功回跳:回源网关核验后才落支付状态,可安全重放。
func (h *Handler) EsewaCallback(c *gin.Context) {
	var req esewaCallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid callback parameters", err)
		return
	}
	if req.MerchantRef == "" {
		req.MerchantRef = c.Query("oid")
	}
	if req.Amount == "" {
		req.Amount = c.Query("amt")
	}
	if req.RefID == "" {
		req.RefID = c.Query("refId")
	}

	order, err := h.PaymentService.VerifyCallback(c.Request.Context(), service.VerifyCallbackInput{
		MerchantRef: req.MerchantRef,
		Amount:      req.Amount,
		RefID:       req.RefID,
	})
	if err != nil {
		respondWithMappedError(c, err, paymentErrorRules, response.CodeInternal, "payment callback failed")
		return
	}

	response.Success(c, order)
}
