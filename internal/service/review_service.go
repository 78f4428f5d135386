package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/daengle/petcare-backend/internal/models"
	"github.com/daengle/petcare-backend/internal/pkg/apperror"
	"github.com/daengle/petcare-backend/internal/repository"
	"github.com/daengle/petcare-backend/internal/validation"
)

// ReviewRepo описывает доступ к отзывам и рейтингу.
type ReviewRepo interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	GetByReservationID(ctx context.Context, reservationID uuid.UUID) (*models.Review, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Review, int, error)
	ListByReviewer(ctx context.Context, reviewerID uuid.UUID, limit, offset int) ([]models.Review, error)
	GetMeter(ctx context.Context, providerID uuid.UUID) (*models.DaengleMeter, error)
	ListKeywords(ctx context.Context, providerID uuid.UUID) ([]models.ProviderKeyword, error)
}

// ReservationRepoForReview проверяет бронирование перед записью отзыва.
type ReservationRepoForReview interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
}

// BanWordChecker проверяет текст на запрещённые слова.
type BanWordChecker interface {
	FindBannedWord(text string) string
	Contains(text string) bool
}

// ReviewService отвечает за отзывы: проверка прав и содержимого, запись
// отзыва вместе с обновлением рейтинга и счётчиков ключевых слов.
type ReviewService struct {
	reviews      ReviewRepo
	reservations ReservationRepoForReview
	banWords     BanWordChecker
	notifier     Notifier
}

// NewReviewService создаёт сервис отзывов.
func NewReviewService(reviews ReviewRepo, reservations ReservationRepoForReview, banWords BanWordChecker) *ReviewService {
	return &ReviewService{reviews: reviews, reservations: reservations, banWords: banWords}
}

// SetNotifier подключает доставку уведомлений.
func (s *ReviewService) SetNotifier(n Notifier) {
	s.notifier = n
}

// ReviewInput содержит содержимое отзыва.
type ReviewInput struct {
	Rating    int
	Keywords  []string
	Content   string
	ImageURLs []string
}

// PostReview создаёт отзыв по завершённому бронированию. Все проверки
// выполняются до какой-либо записи: при отказе состояние не меняется.
func (s *ReviewService) PostReview(ctx context.Context, reviewerID, reservationID uuid.UUID, input ReviewInput) (*models.Review, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	reservation, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, apperror.ErrReservationNotFound
		}
		return nil, err
	}

	if reservation.UserID != reviewerID {
		return nil, apperror.ErrForbidden
	}
	if reservation.Status != models.ReservationStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "отзыв можно оставить только после завершения услуги")
	}

	if _, err := s.reviews.GetByReservationID(ctx, reservationID); err == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "отзыв на это бронирование уже существует")
	} else if !errors.Is(err, repository.ErrReviewNotFound) {
		return nil, err
	}

	review := &models.Review{
		ReservationID: reservationID,
		ReviewerID:    reviewerID,
		ProviderID:    reservation.ProviderID,
		ServiceType:   reservation.ServiceType,
		Rating:        input.Rating,
		Keywords:      input.Keywords,
		Content:       input.Content,
		ImageURLs:     input.ImageURLs,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrReviewAlreadyExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "отзыв на это бронирование уже существует")
		}
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, reservation.ProviderID, "review.posted", map[string]interface{}{
			"review_id": review.ID.String(),
			"rating":    review.Rating,
		})
	}

	return review, nil
}

// UpdateReview изменяет отзыв автора. Разница оценок применяется к рейтингу
// в той же транзакции, что и запись отзыва.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewerID, reviewID uuid.UUID, input ReviewInput) (*models.Review, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	review, err := s.getOwnedReview(ctx, reviewerID, reviewID)
	if err != nil {
		return nil, err
	}

	review.Rating = input.Rating
	review.Keywords = input.Keywords
	review.Content = input.Content
	review.ImageURLs = input.ImageURLs

	if err := s.reviews.Update(ctx, review); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, apperror.ErrReviewNotFound
		}
		return nil, err
	}

	return review, nil
}

// DeleteReview удаляет отзыв автора и вычитает его из рейтинга.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewerID, reviewID uuid.UUID) error {
	if _, err := s.getOwnedReview(ctx, reviewerID, reviewID); err != nil {
		return err
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return apperror.ErrReviewNotFound
		}
		return err
	}

	return nil
}

// GetReview возвращает отзыв по идентификатору.
func (s *ReviewService) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, apperror.ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

// ListProviderReviews возвращает отзывы об исполнителе с общим количеством.
func (s *ReviewService) ListProviderReviews(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Review, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.reviews.ListByProvider(ctx, providerID, limit, offset)
}

// ListMyReviews возвращает отзывы, оставленные пользователем.
func (s *ReviewService) ListMyReviews(ctx context.Context, reviewerID uuid.UUID, limit, offset int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.reviews.ListByReviewer(ctx, reviewerID, limit, offset)
}

// GetProviderMeter возвращает рейтинг исполнителя.
func (s *ReviewService) GetProviderMeter(ctx context.Context, providerID uuid.UUID) (*models.DaengleMeter, error) {
	meter, err := s.reviews.GetMeter(ctx, providerID)
	if err != nil {
		if errors.Is(err, repository.ErrMeterNotFound) {
			return nil, apperror.ErrMeterNotFound
		}
		return nil, err
	}
	return meter, nil
}

// ListProviderKeywords возвращает счётчики ключевых слов исполнителя.
func (s *ReviewService) ListProviderKeywords(ctx context.Context, providerID uuid.UUID) ([]models.ProviderKeyword, error) {
	return s.reviews.ListKeywords(ctx, providerID)
}

// validateInput проверяет содержимое отзыва, включая запрещённые слова.
func (s *ReviewService) validateInput(input ReviewInput) error {
	if err := validation.ValidateStarRating(input.Rating); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateReviewContent(input.Content); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateReviewKeywords(input.Keywords); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateImageURLs(input.ImageURLs); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if s.banWords != nil {
		if word := s.banWords.FindBannedWord(input.Content); word != "" {
			return apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("текст отзыва содержит запрещённое слово: %s", word))
		}
		for _, keyword := range input.Keywords {
			if s.banWords.Contains(keyword) {
				return apperror.New(apperror.ErrCodeValidation, "ключевые слова содержат запрещённое слово")
			}
		}
	}

	return nil
}

// getOwnedReview загружает отзыв и проверяет авторство.
func (s *ReviewService) getOwnedReview(ctx context.Context, reviewerID, reviewID uuid.UUID) (*models.Review, error) {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, apperror.ErrReviewNotFound
		}
		return nil, err
	}
	if review.ReviewerID != reviewerID {
		return nil, apperror.ErrForbidden
	}
	return review, nil
}
