package admin

import (
	"github.com/sneakerhead-api/internal/http/response"
	"github.com/sneakerhead-api/internal/service"
)

type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

var productAdminErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
}

var orderAdminErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrInvalidStatusTransition, code: response.CodeBadRequest, msg: "invalid order status transition"},
}
