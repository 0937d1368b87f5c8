package admin

import (
	"strconv"
	"strings"
	"time"

	"github.com/sneakerhead-api/internal/http/handlers/shared"
	"github.com/sneakerhead-api/internal/http/response"
	"github.com/sneakerhead-api/internal/repository"

	"github.com/gin-gonic/gin"
)

func parseOrderListFilter(c *gin.Context) repository.OrderListFilter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		OrderStatus:   strings.TrimSpace(c.Query("order_status")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
	}

	if raw := c.Query("user_id"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.UserID = uint(v)
		}
	}
	if raw := c.Query("created_from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if raw := c.Query("created_to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedTo = &t
		}
	}
	return filter
}

// ListOrders 管理端订单列表,支持按用户/状态/时间段过滤
func (h *Handler) ListOrders(c *gin.Context) {
	filter := parseOrderListFilter(c)

	orders, total, err := h.OrderService.ListAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list orders", err)
		return
	}

	response.SuccessWithPage(c, orders, response.NewPagination(filter.Page, filter.PageSize, total))
}

// GetOrder 管理端订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.OrderService.GetOrder(orderID, 0, true)
	if err != nil {
		respondWithMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "failed to load order")
		return
	}

	response.Success(c, order)
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus 推进订单状态,仅允许既定的状态流转
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	order, err := h.OrderService.UpdateStatus(orderID, req.Status)
	if err != nil {
		respondWithMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "failed to update order status")
		return
	}

	response.Success(c, order)
}
