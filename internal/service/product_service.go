package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sneakerhead-api/internal/cache"
	"github.com/sneakerhead-api/internal/logger"
	"github.com/sneakerhead-api/internal/models"
	"github.com/sneakerhead-api/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品业务服务
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ProductListResult 商品列表结果
type ProductListResult struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// List 商品列表，命中缓存时直接返回
func (s *ProductService) List(ctx context.Context, filter repository.ProductListFilter) (*ProductListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	signature := buildListSignature(filter)
	if cache.Enabled() {
		var cached ProductListResult
		hit, err := cache.GetProductList(ctx, signature, &cached)
		if err != nil {
			logger.Warnw("product_list_cache_read_failed", "error", err)
		}
		if hit {
			return &cached, nil
		}
	}

	products, total, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}
	result := &ProductListResult{
		Products: products,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if cache.Enabled() {
		if err := cache.SetProductList(ctx, signature, result); err != nil {
			logger.Warnw("product_list_cache_write_failed", "error", err)
		}
	}
	return result, nil
}

// GetByID 商品详情（含评价），命中缓存时直接返回
func (s *ProductService) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	if id == 0 {
		return nil, ErrProductNotFound
	}
	if cache.Enabled() {
		var cached models.Product
		hit, err := cache.GetProductDetail(ctx, id, &cached)
		if err != nil {
			logger.Warnw("product_detail_cache_read_failed", "product_id", id, "error", err)
		}
		if hit {
			return &cached, nil
		}
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if cache.Enabled() {
		if err := cache.SetProductDetail(ctx, id, product); err != nil {
			logger.Warnw("product_detail_cache_write_failed", "product_id", id, "error", err)
		}
	}
	return product, nil
}

// ListFeatured 精选商品
func (s *ProductService) ListFeatured(limit int) ([]models.Product, error) {
	return s.repo.ListFeatured(limit)
}

// ListNewArrivals 新品列表
func (s *ProductService) ListNewArrivals(limit int) ([]models.Product, error) {
	return s.repo.ListNewArrivals(limit)
}

// ListRecommended 商品详情页的关联推荐
func (s *ProductService) ListRecommended(ctx context.Context, productID uint, limit int) ([]models.Product, error) {
	product, err := s.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRecommended(product.ID, product.Category, product.Brand, limit)
}

// ListBrands 品牌列表
func (s *ProductService) ListBrands() ([]string, error) {
	return s.repo.ListBrands()
}

// ListCategories 分类列表
func (s *ProductService) ListCategories() ([]string, error) {
	return s.repo.ListCategories()
}

// SaveProductInput 创建/更新商品输入
type SaveProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	ImageURL      string
	Brand         string
	Category      string
	CountInStock  int
	IsFeatured    bool
	IsNew         bool
	Sizes         []string
	Colors        []string
}

// Create 创建商品（管理端）
func (s *ProductService) Create(ctx context.Context, input SaveProductInput) (*models.Product, error) {
	product := &models.Product{}
	applyProductInput(product, input)
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	s.invalidateListCache(ctx)
	return product, nil
}

// Update 更新商品（管理端）
func (s *ProductService) Update(ctx context.Context, id uint, input SaveProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	applyProductInput(product, input)
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, id)
	return product, nil
}

// Delete 删除商品（管理端）
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidateCache(ctx, id)
	return nil
}

func (s *ProductService) invalidateCache(ctx context.Context, id uint) {
	if !cache.Enabled() {
		return
	}
	if err := cache.DelProductDetail(ctx, id); err != nil {
		logger.Warnw("product_detail_cache_del_failed", "product_id", id, "error", err)
	}
	s.invalidateListCache(ctx)
}

func (s *ProductService) invalidateListCache(ctx context.Context) {
	if !cache.Enabled() {
		return
	}
	if err := cache.InvalidateProductLists(ctx); err != nil {
		logger.Warnw("product_list_cache_invalidate_failed", "error", err)
	}
}

func applyProductInput(product *models.Product, input SaveProductInput) {
	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.Price = models.NewMoneyFromDecimal(input.Price)
	if input.DiscountPrice != nil && input.DiscountPrice.IsPositive() {
		dp := models.NewMoneyFromDecimal(*input.DiscountPrice)
		product.DiscountPrice = &dp
	} else {
		product.DiscountPrice = nil
	}
	product.ImageURL = strings.TrimSpace(input.ImageURL)
	product.Brand = strings.TrimSpace(input.Brand)
	product.Category = strings.TrimSpace(input.Category)
	product.CountInStock = input.CountInStock
	product.IsFeatured = input.IsFeatured
	product.IsNew = input.IsNew
	product.Sizes = models.StringArray(input.Sizes)
	product.Colors = models.StringArray(input.Colors)
}

func buildListSignature(filter repository.ProductListFilter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "p%d:s%d", filter.Page, filter.PageSize)
	if filter.Category != "" {
		fmt.Fprintf(&b, ":c=%s", filter.Category)
	}
	if filter.Brand != "" {
		fmt.Fprintf(&b, ":b=%s", filter.Brand)
	}
	if filter.Search != "" {
		fmt.Fprintf(&b, ":q=%s", filter.Search)
	}
	if filter.MinPrice != nil {
		fmt.Fprintf(&b, ":min=%s", filter.MinPrice.String())
	}
	if filter.MaxPrice != nil {
		fmt.Fprintf(&b, ":max=%s", filter.MaxPrice.String())
	}
	if filter.Featured != nil {
		fmt.Fprintf(&b, ":f=%t", *filter.Featured)
	}
	if filter.New != nil {
		fmt.Fprintf(&b, ":n=%t", *filter.New)
	}
	if filter.Sort != "" {
		fmt.Fprintf(&b, ":o=%s", filter.Sort)
	}
	return b.String()
}
