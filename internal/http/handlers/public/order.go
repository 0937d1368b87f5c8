package public

import (
	"strconv"

	"github.com/sneakerhead-api/internal/constants"
	"github.com/sneakerhead-api/internal/http/handlers/shared"
	"github.com/sneakerhead-api/internal/http/response"
	"github.com/sneakerhead-api/internal/repository"
	"github.com/sneakerhead-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createOrderItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type createOrderRequest struct {
	Items           []createOrderItemRequest `json:"items" binding:"required,min=1"`
	ShippingAddress string                   `json:"shipping_address" binding:"required"`
	City            string                   `json:"city" binding:"required"`
	PostalCode      string                   `json:"postal_code"`
	Country         string                   `json:"country" binding:"required"`
	PaymentMethod   string                   `json:"payment_method"`
	TotalAmount     *decimal.Decimal         `json:"total_amount"`
}

// CreateOrder 下单:金额以服务端计算为准,客户端金额仅做一致性校验。
func (h *Handler) CreateOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	input := service.CreateOrderInput{
		UserID:             userID,
		ShippingAddress:    req.ShippingAddress,
		ShippingCity:       req.City,
		ShippingPostalCode: req.PostalCode,
		ShippingCountry:    req.Country,
		PaymentMethod:      req.PaymentMethod,
		ClaimedTotal:       req.TotalAmount,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
	}

	order, err := h.OrderService.CreateOrder(input)
	if err != nil {
		respondWithMappedError(c, err, orderCreateErrorRules, response.CodeInternal, "failed to create order")
		return
	}

	response.Success(c, order)
}

// ListMyOrders 当前用户订单列表。
func (h *Handler) ListMyOrders(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListMyOrders(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list orders", err)
		return
	}

	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder 订单详情,仅返回本人订单。
func (h *Handler) GetOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	role, _ := c.Get("role")
	isAdmin := role == constants.RoleAdmin

	order, err := h.OrderService.GetOrder(orderID, userID, isAdmin)
	if err != nil {
		respondWithMappedError(c, err, orderFetchErrorRules, response.CodeInternal, "failed to load order")
		return
	}

	response.Success(c, order)
}
