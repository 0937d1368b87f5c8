package public

import (
	"strconv"

	"github.com/sneakerhead-api/internal/http/handlers/shared"
	"github.com/sneakerhead-api/internal/http/response"
	"github.com/sneakerhead-api/internal/repository"
	"github.com/sneakerhead-api/internal/service"

	"github.com/gin-gonic/gin"
)

type createReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

// CreateReview 发表商品评价,每人每商品仅一条,成功后刷新商品评分。
func (h *Handler) CreateReview(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	review, err := h.ReviewService.Create(c.Request.Context(), service.CreateReviewInput{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondWithMappedError(c, err, reviewErrorRules, response.CodeInternal, "failed to create review")
		return
	}

	response.Success(c, review)
}

// ListProductReviews 商品评价列表。
func (h *Handler) ListProductReviews(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	reviews, total, err := h.ReviewService.ListByProduct(repository.ReviewListFilter{
		Page:      page,
		PageSize:  pageSize,
		ProductID: productID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list reviews", err)
		return
	}

	response.SuccessWithPage(c, reviews, response.NewPagination(page, pageSize, total))
}
