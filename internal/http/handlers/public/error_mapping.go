package public

import (
	"errors"

	"github.com/sneakerhead-api/internal/http/response"
	"github.com/sneakerhead-api/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var authErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, msg: "invalid email address"},
	{target: service.ErrEmailExists, code: response.CodeBadRequest, msg: "email already registered"},
	{target: service.ErrUsernameExists, code: response.CodeBadRequest, msg: "username already taken"},
	{target: service.ErrWeakPassword, code: response.CodeBadRequest, msg: "password does not meet requirements"},
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, msg: "invalid email or password"},
}

var productErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, msg: "cart item not found"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, msg: "invalid quantity"},
	{target: service.ErrInsufficientStock, code: response.CodeBadRequest, msg: "insufficient stock"},
}

var orderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidOrderItem, code: response.CodeBadRequest, msg: "invalid order item"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrInsufficientStock, code: response.CodeBadRequest, msg: "insufficient stock"},
	{target: service.ErrOrderAmountMismatch, code: response.CodeBadRequest, msg: "order amount mismatch"},
	{target: service.ErrQueueUnavailable, code: response.CodeInternal, msg: "order scheduling unavailable"},
}

var orderFetchErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrNotOrderOwner, code: response.CodeForbidden, msg: "not your order"},
}

var paymentErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderNotPending, code: response.CodeBadRequest, msg: "order is not awaiting payment"},
	{target: service.ErrPaymentRefRequired, code: response.CodeBadRequest, msg: "payment reference required"},
	{target: service.ErrPaymentRefMismatch, code: response.CodeBadRequest, msg: "payment reference mismatch"},
	{target: service.ErrPaymentVerifyFailed, code: response.CodeBadRequest, msg: "payment verification failed"},
}

var reviewErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrInvalidRating, code: response.CodeBadRequest, msg: "rating must be between 1 and 5"},
	{target: service.ErrReviewExists, code: response.CodeBadRequest, msg: "you have already reviewed this product"},
}
