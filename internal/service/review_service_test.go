package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/daengle/petcare-backend/internal/filter"
	"github.com/daengle/petcare-backend/internal/models"
	"github.com/daengle/petcare-backend/internal/pkg/apperror"
	"github.com/daengle/petcare-backend/internal/repository"
)

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	if args.Error(0) == nil {
		review.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockReviewRepo) Update(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) GetByReservationID(ctx context.Context, reservationID uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Review, int, error) {
	args := m.Called(ctx, providerID, limit, offset)
	return args.Get(0).([]models.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) ListByReviewer(ctx context.Context, reviewerID uuid.UUID, limit, offset int) ([]models.Review, error) {
	args := m.Called(ctx, reviewerID, limit, offset)
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *mockReviewRepo) GetMeter(ctx context.Context, providerID uuid.UUID) (*models.DaengleMeter, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DaengleMeter), args.Error(1)
}

func (m *mockReviewRepo) ListKeywords(ctx context.Context, providerID uuid.UUID) ([]models.ProviderKeyword, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).([]models.ProviderKeyword), args.Error(1)
}

type mockReservationRepoForReview struct {
	mock.Mock
}

func (m *mockReservationRepoForReview) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func newReviewService() (*ReviewService, *mockReviewRepo, *mockReservationRepoForReview) {
	reviewRepo := new(mockReviewRepo)
	reservationRepo := new(mockReservationRepoForReview)
	svc := NewReviewService(reviewRepo, reservationRepo, filter.NewBanWordFilter())
	return svc, reviewRepo, reservationRepo
}

func completedReservation(userID, providerID uuid.UUID) *models.Reservation {
	return &models.Reservation{
		ID:          uuid.New(),
		UserID:      userID,
		ProviderID:  providerID,
		ServiceType: models.ServiceTypeCare,
		Status:      models.ReservationStatusCompleted,
	}
}

func TestReviewService_PostReview_Success(t *testing.T) {
	svc, reviewRepo, reservationRepo := newReviewService()
	ctx := context.Background()

	userID := uuid.New()
	providerID := uuid.New()
	reservation := completedReservation(userID, providerID)

	reservationRepo.On("GetByID", ctx, reservation.ID).Return(reservation, nil)
	reviewRepo.On("GetByReservationID", ctx, reservation.ID).Return(nil, repository.ErrReviewNotFound)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(nil)

	review, err := svc.PostReview(ctx, userID, reservation.ID, ReviewInput{
		Rating:   5,
		Keywords: []string{"внимательный"},
		Content:  "Отличный врач, всё объяснил",
	})

	assert.NoError(t, err)
	assert.NotNil(t, review)
	assert.Equal(t, providerID, review.ProviderID)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, models.ServiceTypeCare, review.ServiceType)
}

func TestReviewService_PostReview_InvalidRating(t *testing.T) {
	svc, _, _ := newReviewService()
	ctx := context.Background()

	_, err := svc.PostReview(ctx, uuid.New(), uuid.New(), ReviewInput{Rating: 0, Content: "нормально"})
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.PostReview(ctx, uuid.New(), uuid.New(), ReviewInput{Rating: 6, Content: "нормально"})
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestReviewService_PostReview_BannedWord(t *testing.T) {
	svc, _, _ := newReviewService()
	ctx := context.Background()

	_, err := svc.PostReview(ctx, uuid.New(), uuid.New(), ReviewInput{
		Rating:  1,
		Content: "это мошенник, не ходите",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "запрещённое слово")
}

func TestReviewService_PostReview_BannedKeyword(t *testing.T) {
	svc, _, _ := newReviewService()
	ctx := context.Background()

	_, err := svc.PostReview(ctx, uuid.New(), uuid.New(), ReviewInput{
		Rating:   1,
		Keywords: []string{"аккуратный", "мошенник"},
		Content:  "обычный приём, ничего особенного",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "ключевые слова")
}

func TestReviewService_PostReview_NotCompleted(t *testing.T) {
	svc, _, reservationRepo := newReviewService()
	ctx := context.Background()

	userID := uuid.New()
	reservation := completedReservation(userID, uuid.New())
	reservation.Status = models.ReservationStatusPaid

	reservationRepo.On("GetByID", ctx, reservation.ID).Return(reservation, nil)

	_, err := svc.PostReview(ctx, userID, reservation.ID, ReviewInput{Rating: 5, Content: "всё хорошо"})
	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestReviewService_PostReview_NotOwner(t *testing.T) {
	svc, _, reservationRepo := newReviewService()
	ctx := context.Background()

	reservation := completedReservation(uuid.New(), uuid.New())
	reservationRepo.On("GetByID", ctx, reservation.ID).Return(reservation, nil)

	_, err := svc.PostReview(ctx, uuid.New(), reservation.ID, ReviewInput{Rating: 5, Content: "всё хорошо"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestReviewService_PostReview_Duplicate(t *testing.T) {
	svc, reviewRepo, reservationRepo := newReviewService()
	ctx := context.Background()

	userID := uuid.New()
	reservation := completedReservation(userID, uuid.New())

	reservationRepo.On("GetByID", ctx, reservation.ID).Return(reservation, nil)
	reviewRepo.On("GetByReservationID", ctx, reservation.ID).Return(&models.Review{ID: uuid.New()}, nil)

	_, err := svc.PostReview(ctx, userID, reservation.ID, ReviewInput{Rating: 5, Content: "всё хорошо"})
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_UpdateReview_Success(t *testing.T) {
	svc, reviewRepo, _ := newReviewService()
	ctx := context.Background()

	reviewerID := uuid.New()
	existing := &models.Review{
		ID:         uuid.New(),
		ReviewerID: reviewerID,
		ProviderID: uuid.New(),
		Rating:     5,
		Content:    "сначала понравилось",
	}

	reviewRepo.On("GetByID", ctx, existing.ID).Return(existing, nil)
	reviewRepo.On("Update", ctx, mock.AnythingOfType("*models.Review")).Return(nil)

	updated, err := svc.UpdateReview(ctx, reviewerID, existing.ID, ReviewInput{
		Rating:  3,
		Content: "после второго визита впечатление хуже",
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, updated.Rating)
}

func TestReviewService_UpdateReview_NotAuthor(t *testing.T) {
	svc, reviewRepo, _ := newReviewService()
	ctx := context.Background()

	existing := &models.Review{ID: uuid.New(), ReviewerID: uuid.New()}
	reviewRepo.On("GetByID", ctx, existing.ID).Return(existing, nil)

	_, err := svc.UpdateReview(ctx, uuid.New(), existing.ID, ReviewInput{Rating: 3, Content: "впечатление хуже"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestReviewService_DeleteReview_Success(t *testing.T) {
	svc, reviewRepo, _ := newReviewService()
	ctx := context.Background()

	reviewerID := uuid.New()
	existing := &models.Review{ID: uuid.New(), ReviewerID: reviewerID}

	reviewRepo.On("GetByID", ctx, existing.ID).Return(existing, nil)
	reviewRepo.On("Delete", ctx, existing.ID).Return(nil)

	assert.NoError(t, svc.DeleteReview(ctx, reviewerID, existing.ID))
	reviewRepo.AssertExpectations(t)
}

func TestReviewService_DeleteReview_NotFound(t *testing.T) {
	svc, reviewRepo, _ := newReviewService()
	ctx := context.Background()

	id := uuid.New()
	reviewRepo.On("GetByID", ctx, id).Return(nil, repository.ErrReviewNotFound)

	err := svc.DeleteReview(ctx, uuid.New(), id)
	assert.ErrorIs(t, err, apperror.ErrReviewNotFound)
}

func TestReviewService_GetProviderMeter(t *testing.T) {
	svc, reviewRepo, _ := newReviewService()
	ctx := context.Background()

	providerID := uuid.New()
	meter := &models.DaengleMeter{ProviderID: providerID, Score: 80, Total: 160, Count: 2}
	reviewRepo.On("GetMeter", ctx, providerID).Return(meter, nil)

	got, err := svc.GetProviderMeter(ctx, providerID)
	assert.NoError(t, err)
	assert.Equal(t, 80, got.Score)
}

func TestReviewService_ListProviderReviews_DefaultLimit(t *testing.T) {
	svc, reviewRepo, _ := newReviewService()
	ctx := context.Background()

	providerID := uuid.New()
	reviewRepo.On("ListByProvider", ctx, providerID, 20, 0).Return([]models.Review{{ID: uuid.New()}}, 1, nil)

	reviews, total, err := svc.ListProviderReviews(ctx, providerID, 0, 0)
	assert.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.Equal(t, 1, total)
}
