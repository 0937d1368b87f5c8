package public

import (
	"strconv"
	"strings"

	"github.com/sneakerhead-api/internal/http/handlers/shared"
	"github.com/sneakerhead-api/internal/http/response"
	"github.com/sneakerhead-api/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func parseProductListFilter(c *gin.Context) repository.ProductListFilter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "12"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	filter := repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Category: strings.TrimSpace(c.Query("category")),
		Brand:    strings.TrimSpace(c.Query("brand")),
		Search:   strings.TrimSpace(c.Query("search")),
		Sort:     strings.TrimSpace(c.Query("sort")),
	}

	if raw := c.Query("min_price"); raw != "" {
		if v, err := decimal.NewFromString(raw); err == nil && !v.IsNegative() {
			filter.MinPrice = &v
		}
	}
	if raw := c.Query("max_price"); raw != "" {
		if v, err := decimal.NewFromString(raw); err == nil && !v.IsNegative() {
			filter.MaxPrice = &v
		}
	}
	if raw := c.Query("featured"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.Featured = &v
		}
	}
	if raw := c.Query("new"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.New = &v
		}
	}
	return filter
}

// ListProducts 商品列表,支持分类/品牌/关键词/价格区间筛选与排序。
func (h *Handler) ListProducts(c *gin.Context) {
	filter := parseProductListFilter(c)

	result, err := h.ProductService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list products", err)
		return
	}

	response.SuccessWithPage(c, result.Products, response.NewPagination(result.Page, result.PageSize, result.Total))
}

// GetProduct 商品详情,包含评价列表。
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.ProductService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "failed to load product")
		return
	}

	response.Success(c, product)
}

// ListFeaturedProducts 精选商品。
func (h *Handler) ListFeaturedProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))

	products, err := h.ProductService.ListFeatured(limit)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list featured products", err)
		return
	}

	response.Success(c, products)
}

// ListNewArrivals 新品上架。
func (h *Handler) ListNewArrivals(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))

	products, err := h.ProductService.ListNewArrivals(limit)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list new arrivals", err)
		return
	}

	response.Success(c, products)
}

// ListRecommendedProducts 商品详情页推荐,同分类或同品牌按评分取前若干条。
func (h *Handler) ListRecommendedProducts(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "4"))

	products, err := h.ProductService.ListRecommended(c.Request.Context(), id, limit)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "failed to list recommendations")
		return
	}

	response.Success(c, products)
}

// ListBrands 所有在售品牌。
func (h *Handler) ListBrands(c *gin.Context) {
	brands, err := h.ProductService.ListBrands()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list brands", err)
		return
	}

	response.Success(c, brands)
}

// ListCategories 所有商品分类。
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.ProductService.ListCategories()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list categories", err)
		return
	}

	response.Success(c, categories)
}
