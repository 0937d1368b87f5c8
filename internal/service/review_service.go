package service

import (
	"context"
	"strings"
	"time"

	"github.com/sneakerhead-api/internal/cache"
	"github.com/sneakerhead-api/internal/constants"
	"github.com/sneakerhead-api/internal/models"
	"github.com/sneakerhead-api/internal/repository"

	"gorm.io/gorm"
)

// ReviewService 商品评价服务
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

// NewReviewService 创建评价服务
func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

// CreateReviewInput 创建评价输入
type CreateReviewInput struct {
	UserID    uint
	ProductID uint
	Rating    int
	Comment   string
}

// Create 创建评价并更新商品评分聚合
// 每个用户对同一商品只能评价一次
func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput) (*models.Review, error) {
	if input.UserID == 0 {
		return nil, ErrNotFound
	}
	if input.Rating < constants.RatingMin || input.Rating > constants.RatingMax {
		return nil, ErrInvalidRating
	}

	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	existing, err := s.reviewRepo.GetByUserAndProduct(input.UserID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrReviewExists
	}

	now := time.Now()
	review := &models.Review{
		UserID:    input.UserID,
		ProductID: input.ProductID,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		reviewRepo := s.reviewRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		if err := reviewRepo.Create(review); err != nil {
			return err
		}
		avg, total, err := reviewRepo.AggregateByProduct(input.ProductID)
		if err != nil {
			return err
		}
		return productRepo.UpdateRatingStats(input.ProductID, avg, total)
	})
	if err != nil {
		return nil, err
	}

	if cache.Enabled() {
		_ = cache.DelProductDetail(ctx, input.ProductID)
	}
	return review, nil
}

// ListByProduct 商品评价列表
func (s *ReviewService) ListByProduct(filter repository.ReviewListFilter) ([]models.Review, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	return s.reviewRepo.ListByProduct(filter)
}
