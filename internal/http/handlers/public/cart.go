package public

import (
	"github.com/sneakerhead-api/internal/http/response"
	"github.com/sneakerhead-api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCart 当前用户购物车,附带合计金额。
func (h *Handler) GetCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	summary, err := h.CartService.List(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load cart", err)
		return
	}

	response.Success(c, summary)
}

type addCartItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// AddCartItem 加入购物车,同规格商品累加数量。
func (h *Handler) AddCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	item, err := h.CartService.AddItem(service.AddItemInput{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "failed to add cart item")
		return
	}

	response.Success(c, item)
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// UpdateCartItem 修改购物车条目数量。
func (h *Handler) UpdateCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	item, err := h.CartService.UpdateQuantity(userID, itemID, req.Quantity)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "failed to update cart item")
		return
	}

	response.Success(c, item)
}

// DeleteCartItem 删除购物车单个条目。
func (h *Handler) DeleteCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.CartService.RemoveItem(userID, itemID); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "failed to delete cart item")
		return
	}

	response.SuccessWithMsg(c, "cart item removed", nil)
}

// ClearCart 清空购物车。
func (h *Handler) ClearCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	if err := h.CartService.Clear(userID); err != nil {
		respondError(c, response.CodeInternal, "failed to clear cart", err)
		return
	}

	response.SuccessWithMsg(c, "cart cleared", nil)
}
