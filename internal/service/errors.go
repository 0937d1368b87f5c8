package service

import "errors"

// 业务错误定义，handler 层据此映射为响应码
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailExists        = errors.New("email already exists")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrProfileEmpty       = errors.New("profile update is empty")

	ErrProductNotFound  = errors.New("product not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("invalid quantity")

	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidOrderItem        = errors.New("invalid order item")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrOrderAmountMismatch     = errors.New("order amount mismatch")
	ErrOrderCreateFailed       = errors.New("order create failed")
	ErrNotOrderOwner           = errors.New("not order owner")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrOrderNotPending         = errors.New("order not awaiting payment")
	ErrQueueUnavailable        = errors.New("queue unavailable")

	ErrPaymentRefRequired  = errors.New("payment reference required")
	ErrPaymentRefMismatch  = errors.New("payment reference mismatch")
	ErrPaymentVerifyFailed = errors.New("payment verify failed")

	ErrInvalidRating = errors.New("invalid rating")
	ErrReviewExists  = errors.New("review already exists")
)
