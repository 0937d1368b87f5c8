package admin

import (
	"strconv"
	"strings"

	"github.com/sneakerhead-api/internal/http/handlers/shared"
	"github.com/sneakerhead-api/internal/http/response"
	"github.com/sneakerhead-api/internal/repository"
	"github.com/sneakerhead-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type saveProductRequest struct {
	Name          string           `json:"name" binding:"required"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price" binding:"required"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	ImageURL      string           `json:"image_url"`
	Brand         string           `json:"brand" binding:"required"`
	Category      string           `json:"category" binding:"required"`
	CountInStock  int              `json:"count_in_stock"`
	IsFeatured    bool             `json:"is_featured"`
	IsNew         bool             `json:"is_new"`
	Sizes         []string         `json:"sizes"`
	Colors        []string         `json:"colors"`
}

func (r saveProductRequest) toInput() service.SaveProductInput {
	return service.SaveProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		ImageURL:      r.ImageURL,
		Brand:         r.Brand,
		Category:      r.Category,
		CountInStock:  r.CountInStock,
		IsFeatured:    r.IsFeatured,
		IsNew:         r.IsNew,
		Sizes:         r.Sizes,
		Colors:        r.Colors,
	}
}

// ListProducts 管理端商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	result, err := h.ProductService.List(c.Request.Context(), repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Category: strings.TrimSpace(c.Query("category")),
		Brand:    strings.TrimSpace(c.Query("brand")),
		Search:   strings.TrimSpace(c.Query("search")),
		Sort:     strings.TrimSpace(c.Query("sort")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list products", err)
		return
	}

	response.SuccessWithPage(c, result.Products, response.NewPagination(result.Page, result.PageSize, result.Total))
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req saveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	product, err := h.ProductService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, response.CodeInternal, "failed to create product", err)
		return
	}

	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req saveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	product, err := h.ProductService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondWithMappedError(c, err, productAdminErrorRules, response.CodeInternal, "failed to update product")
		return
	}

	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.ProductService.Delete(c.Request.Context(), id); err != nil {
		respondWithMappedError(c, err, productAdminErrorRules, response.CodeInternal, "failed to delete product")
		return
	}

	response.SuccessWithMsg(c, "product deleted", nil)
}
