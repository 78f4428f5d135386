package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daengle/petcare-backend/internal/dto"
	"github.com/daengle/petcare-backend/internal/http/handlers/common"
	"github.com/daengle/petcare-backend/internal/service"
)

// ReviewHandler предоставляет HTTP слой для отзывов и рейтинга.
type ReviewHandler struct {
	reviews *service.ReviewService
}

// NewReviewHandler создаёт хэндлер.
func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// CreateReview обрабатывает POST /reservations/:id/reviews.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	reviewerID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	reservationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	review, err := h.reviews.PostReview(c.Request.Context(), reviewerID, reservationID, service.ReviewInput{
		Rating:    req.Rating,
		Keywords:  req.Keywords,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// UpdateReview обрабатывает PUT /reviews/:id.
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	reviewerID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	reviewID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	review, err := h.reviews.UpdateReview(c.Request.Context(), reviewerID, reviewID, service.ReviewInput{
		Rating:    req.Rating,
		Keywords:  req.Keywords,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteReview обрабатывает DELETE /reviews/:id.
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewerID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	reviewID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.reviews.DeleteReview(c.Request.Context(), reviewerID, reviewID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetReview обрабатывает GET /reviews/:id.
func (h *ReviewHandler) GetReview(c *gin.Context) {
	reviewID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	review, err := h.reviews.GetReview(c.Request.Context(), reviewID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// ListProviderReviews обрабатывает GET /providers/:id/reviews.
func (h *ReviewHandler) ListProviderReviews(c *gin.Context) {
	providerID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	reviews, total, err := h.reviews.ListProviderReviews(c.Request.Context(), providerID, limit, offset)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProviderReviewsResponse{
		Reviews: reviews,
		Pagination: dto.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(reviews) < total,
		},
	})
}

// ListMyReviews обрабатывает GET /reviews/my.
func (h *ReviewHandler) ListMyReviews(c *gin.Context) {
	reviewerID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	reviews, err := h.reviews.ListMyReviews(c.Request.Context(), reviewerID, limit, offset)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// GetProviderRating обрабатывает GET /providers/:id/rating. Возвращает
// рейтинг исполнителя вместе со счётчиками ключевых слов и значками.
func (h *ReviewHandler) GetProviderRating(c *gin.Context) {
	providerID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	meter, err := h.reviews.GetProviderMeter(c.Request.Context(), providerID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	keywords, err := h.reviews.ListProviderKeywords(c.Request.Context(), providerID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProviderRatingResponse{Meter: meter, Keywords: keywords})
}
