package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sneakerhead-api/internal/constants"
	"github.com/sneakerhead-api/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	GetByID(id uint) (*models.Product, error)
	ListByIDs(ids []uint) ([]models.Product, error)
	ListFeatured(limit int) ([]models.Product, error)
	ListNewArrivals(limit int) ([]models.Product, error)
	ListRecommended(productID uint, category, brand string, limit int) ([]models.Product, error)
	ListBrands() ([]string, error)
	ListCategories() ([]string, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error
	ReserveStock(productID uint, quantity int) (int64, error)
	ReleaseStock(productID uint, quantity int) (int64, error)
	UpdateRatingStats(productID uint, rating float64, numReviews int) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

// effectivePriceSQL 实际售价：有折扣价时按折扣价计
const effectivePriceSQL = "CASE WHEN discount_price IS NOT NULL AND discount_price > 0 THEN discount_price ELSE price END"

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 商品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	var products []models.Product

	query := r.db.Model(&models.Product{})
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if brand := strings.TrimSpace(filter.Brand); brand != "" {
		query = query.Where("brand = ?", brand)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		condition, argCount := buildKeywordLikeCondition(r.db, []string{"name", "description", "brand"})
		query = query.Where(condition, repeatLikeArgs(like, argCount)...)
	}
	if filter.MinPrice != nil {
		query = query.Where(fmt.Sprintf("(%s) >= ?", effectivePriceSQL), *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where(fmt.Sprintf("(%s) <= ?", effectivePriceSQL), *filter.MaxPrice)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}
	if filter.New != nil {
		query = query.Where("is_new = ?", *filter.New)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order(buildProductOrder(filter.Sort)).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func buildProductOrder(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case constants.ProductSortPriceAsc:
		return effectivePriceSQL + " ASC, id ASC"
	case constants.ProductSortPriceDesc:
		return effectivePriceSQL + " DESC, id ASC"
	case constants.ProductSortRating:
		return "rating DESC, num_reviews DESC, id ASC"
	case constants.ProductSortNewest:
		return "created_at DESC, id DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

// GetByID 根据 ID 获取商品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Reviews", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC").Preload("User")
	}).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListByIDs 批量获取商品
func (r *GormProductRepository) ListByIDs(ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListFeatured 精选商品
func (r *GormProductRepository) ListFeatured(limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 8
	}
	var products []models.Product
	if err := r.db.Where("is_featured = ?", true).
		Order("rating DESC, created_at DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListNewArrivals 新品列表
func (r *GormProductRepository) ListNewArrivals(limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 8
	}
	var products []models.Product
	if err := r.db.Where("is_new = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListRecommended 同分类或同品牌的高评分商品，排除商品自身
func (r *GormProductRepository) ListRecommended(productID uint, category, brand string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 4
	}
	query := r.db.Model(&models.Product{}).Where("id != ?", productID)
	category = strings.TrimSpace(category)
	brand = strings.TrimSpace(brand)
	switch {
	case category != "" && brand != "":
		query = query.Where("category = ? OR brand = ?", category, brand)
	case category != "":
		query = query.Where("category = ?", category)
	case brand != "":
		query = query.Where("brand = ?", brand)
	}
	var products []models.Product
	if err := query.Order("rating DESC, num_reviews DESC, id ASC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListBrands 所有在售品牌
func (r *GormProductRepository) ListBrands() ([]string, error) {
	var brands []string
	if err := r.db.Model(&models.Product{}).
		Distinct("brand").
		Where("brand != ''").
		Order("brand ASC").
		Pluck("brand", &brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

// ListCategories 所有商品分类
func (r *GormProductRepository) ListCategories() ([]string, error) {
	var categories []string
	if err := r.db.Model(&models.Product{}).
		Distinct("category").
		Where("category != ''").
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 更新商品
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// Delete 删除商品
func (r *GormProductRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

// ReserveStock 扣减库存，库存不足时不更新任何行
func (r *GormProductRepository) ReserveStock(productID uint, quantity int) (int64, error) {
	if productID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock reserve params")
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND count_in_stock >= ?", productID, quantity).
		Update("count_in_stock", gorm.Expr("count_in_stock - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ReleaseStock 回补库存（订单取消或超时）
func (r *GormProductRepository) ReleaseStock(productID uint, quantity int) (int64, error) {
	if productID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock release params")
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("count_in_stock", gorm.Expr("count_in_stock + ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// UpdateRatingStats 更新评分聚合字段
func (r *GormProductRepository) UpdateRatingStats(productID uint, rating float64, numReviews int) error {
	if productID == 0 {
		return errors.New("invalid product id")
	}
	return r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating":      rating,
			"num_reviews": numReviews,
		}).Error
}
