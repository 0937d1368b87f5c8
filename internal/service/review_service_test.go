package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sneakerhead-api/internal/models"
	"github.com/sneakerhead-api/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupReviewServiceTest(t *testing.T) (*ReviewService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:review_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Review{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewReviewService(repository.NewReviewRepository(db), repository.NewProductRepository(db)), db
}

func createReviewTestProduct(t *testing.T, db *gorm.DB) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:         "AJ1 Retro",
		Description:  "test sneaker",
		Price:        models.NewMoneyFromFloat(185),
		ImageURL:     "/uploads/test.jpg",
		Brand:        "Nike",
		Category:     "Basketball",
		CountInStock: 5,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestCreateReviewUpdatesRatingStats(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	product := createReviewTestProduct(t, db)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateReviewInput{
		UserID: 1, ProductID: product.ID, Rating: 5, Comment: "Grail worthy.",
	}); err != nil {
		t.Fatalf("first review error: %v", err)
	}
	if _, err := svc.Create(ctx, CreateReviewInput{
		UserID: 2, ProductID: product.ID, Rating: 4, Comment: "Runs a bit narrow.",
	}); err != nil {
		t.Fatalf("second review error: %v", err)
	}

	var stored models.Product
	if err := db.First(&stored, product.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if stored.NumReviews != 2 {
		t.Fatalf("expected 2 reviews, got %d", stored.NumReviews)
	}
	if stored.Rating != 4.5 {
		t.Fatalf("expected rating 4.5, got %v", stored.Rating)
	}
}

func TestCreateReviewOncePerUser(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	product := createReviewTestProduct(t, db)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateReviewInput{
		UserID: 1, ProductID: product.ID, Rating: 4, Comment: "Solid.",
	}); err != nil {
		t.Fatalf("create review error: %v", err)
	}
	if _, err := svc.Create(ctx, CreateReviewInput{
		UserID: 1, ProductID: product.ID, Rating: 5, Comment: "Changed my mind.",
	}); !errors.Is(err, ErrReviewExists) {
		t.Fatalf("expected ErrReviewExists, got: %v", err)
	}
}

func TestCreateReviewValidation(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	product := createReviewTestProduct(t, db)
	ctx := context.Background()

	for _, rating := range []int{0, -1, 6} {
		if _, err := svc.Create(ctx, CreateReviewInput{
			UserID: 1, ProductID: product.ID, Rating: rating,
		}); !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("rating %d: expected ErrInvalidRating, got: %v", rating, err)
		}
	}

	if _, err := svc.Create(ctx, CreateReviewInput{
		UserID: 1, ProductID: 99999, Rating: 4,
	}); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got: %v", err)
	}
}

func TestListReviewsByProduct(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	product := createReviewTestProduct(t, db)
	ctx := context.Background()

	for userID := uint(1); userID <= 3; userID++ {
		user := models.User{
			Username:     fmt.Sprintf("reviewer_%d", userID),
			Email:        fmt.Sprintf("reviewer_%d@example.com", userID),
			PasswordHash: "hash",
		}
		if err := db.Create(&user).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
		if _, err := svc.Create(ctx, CreateReviewInput{
			UserID: user.ID, ProductID: product.ID, Rating: 4, Comment: "ok",
		}); err != nil {
			t.Fatalf("create review error: %v", err)
		}
	}

	reviews, total, err := svc.ListByProduct(repository.ReviewListFilter{ProductID: product.ID, Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("ListByProduct error: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected page of 2, got %d", len(reviews))
	}
}
