package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/daengle/petcare-backend/internal/models"
	"github.com/daengle/petcare-backend/internal/pkg/apperror"
	"github.com/daengle/petcare-backend/internal/repository"
)

// ReservationRepo описывает доступ к бронированиям.
type ReservationRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	MarkPaid(ctx context.Context, id uuid.UUID, amount float64) (*models.Reservation, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Reservation, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Reservation, error)
}

// ReservationService управляет оплатой и завершением бронирований.
type ReservationService struct {
	reservations ReservationRepo
	notifier     Notifier
}

// NewReservationService создаёт сервис бронирований.
func NewReservationService(reservations ReservationRepo) *ReservationService {
	return &ReservationService{reservations: reservations}
}

// SetNotifier подключает доставку уведомлений.
func (s *ReservationService) SetNotifier(n Notifier) {
	s.notifier = n
}

// GetReservation возвращает бронирование участнику сделки.
func (s *ReservationService) GetReservation(ctx context.Context, requesterID, id uuid.UUID) (*models.Reservation, error) {
	reservation, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(err)
	}
	if reservation.UserID != requesterID && reservation.ProviderID != requesterID {
		return nil, apperror.ErrForbidden
	}
	return reservation, nil
}

// Pay переводит бронирование владельца в статус paid.
func (s *ReservationService) Pay(ctx context.Context, userID, id uuid.UUID, amount float64) (*models.Reservation, error) {
	if amount <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма оплаты должна быть положительной")
	}

	reservation, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(err)
	}
	if reservation.UserID != userID {
		return nil, apperror.ErrForbidden
	}

	paid, err := s.reservations.MarkPaid(ctx, id, amount)
	if err != nil {
		return nil, s.mapErr(err)
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, paid.ProviderID, "reservation.paid", map[string]interface{}{
			"reservation_id": paid.ID.String(),
		})
	}

	return paid, nil
}

// Complete переводит оплаченное бронирование в completed. Завершает услугу
// исполнитель; после этого владелец может оставить отзыв.
func (s *ReservationService) Complete(ctx context.Context, providerID, id uuid.UUID) (*models.Reservation, error) {
	reservation, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(err)
	}
	if reservation.ProviderID != providerID {
		return nil, apperror.ErrForbidden
	}

	completed, err := s.reservations.MarkCompleted(ctx, id)
	if err != nil {
		return nil, s.mapErr(err)
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, completed.UserID, "reservation.completed", map[string]interface{}{
			"reservation_id": completed.ID.String(),
		})
	}

	return completed, nil
}

// Cancel отменяет бронирование участника сделки до завершения услуги.
func (s *ReservationService) Cancel(ctx context.Context, requesterID, id uuid.UUID) (*models.Reservation, error) {
	reservation, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(err)
	}
	if reservation.UserID != requesterID && reservation.ProviderID != requesterID {
		return nil, apperror.ErrForbidden
	}

	cancelled, err := s.reservations.Cancel(ctx, id)
	if err != nil {
		return nil, s.mapErr(err)
	}

	counterparty := cancelled.UserID
	if requesterID == cancelled.UserID {
		counterparty = cancelled.ProviderID
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, counterparty, "reservation.cancelled", map[string]interface{}{
			"reservation_id": cancelled.ID.String(),
		})
	}

	return cancelled, nil
}

// ListMyReservations возвращает бронирования владельца.
func (s *ReservationService) ListMyReservations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Reservation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.reservations.ListByUser(ctx, userID, limit, offset)
}

// ListProviderReservations возвращает бронирования исполнителя.
func (s *ReservationService) ListProviderReservations(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Reservation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.reservations.ListByProvider(ctx, providerID, limit, offset)
}

// mapErr переводит ошибки репозитория в ошибки приложения.
func (s *ReservationService) mapErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrReservationNotFound):
		return apperror.ErrReservationNotFound
	case errors.Is(err, repository.ErrReservationStale):
		return apperror.New(apperror.ErrCodeInvalidState, "статус бронирования не допускает эту операцию")
	default:
		return err
	}
}
