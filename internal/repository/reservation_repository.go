package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/daengle/petcare-backend/internal/models"
	"github.com/daengle/petcare-backend/internal/repository/common"
)

// ReservationRepository отвечает за бронирования услуг.
type ReservationRepository struct {
	db *sqlx.DB
}

// Ошибки уровня репозитория.
var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationStale    = errors.New("reservation status changed concurrently")
)

// NewReservationRepository создаёт новый экземпляр.
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `
	id, estimate_id, user_id, provider_id, service_type, schedule, amount, status,
	paid_at, completed_at, created_at, updated_at
`

// GetByID возвращает бронирование по идентификатору.
func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if err := r.db.GetContext(ctx, &reservation, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("reservation repository: get by id %w", err)
	}
	return &reservation, nil
}

// Create сохраняет бронирование.
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	query := `
		INSERT INTO reservations (estimate_id, user_id, provider_id, service_type, schedule, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		reservation.EstimateID,
		reservation.UserID,
		reservation.ProviderID,
		reservation.ServiceType,
		reservation.Schedule,
		reservation.Amount,
		reservation.Status,
	).Scan(&reservation.ID, &reservation.CreatedAt, &reservation.UpdatedAt); err != nil {
		return fmt.Errorf("reservation repository: insert reservation %w", err)
	}

	return nil
}

// MarkPaid переводит бронирование из pending в paid и сохраняет сумму оплаты.
func (r *ReservationRepository) MarkPaid(ctx context.Context, id uuid.UUID, amount float64) (*models.Reservation, error) {
	return r.transition(
		ctx,
		id,
		`UPDATE reservations
		 SET status = $1, amount = $2, paid_at = NOW(), updated_at = NOW()
		 WHERE id = $3 AND status = $4
		 RETURNING `+reservationColumns,
		models.ReservationStatusPaid, amount, id, models.ReservationStatusPending,
	)
}

// MarkCompleted переводит бронирование из paid в completed. Только после
// этого владелец может оставить отзыв.
func (r *ReservationRepository) MarkCompleted(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	return r.transition(
		ctx,
		id,
		`UPDATE reservations
		 SET status = $1, completed_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND status = $3
		 RETURNING `+reservationColumns,
		models.ReservationStatusCompleted, id, models.ReservationStatusPaid,
	)
}

// Cancel отменяет бронирование, пока услуга не завершена.
func (r *ReservationRepository) Cancel(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	return r.transition(
		ctx,
		id,
		`UPDATE reservations
		 SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND status IN ($3, $4)
		 RETURNING `+reservationColumns,
		models.ReservationStatusCancelled, id, models.ReservationStatusPending, models.ReservationStatusPaid,
	)
}

// transition выполняет условный переход статуса. Если строка не подошла под
// условие, различаем отсутствие бронирования и конкурентное изменение.
func (r *ReservationRepository) transition(ctx context.Context, id uuid.UUID, query string, args ...interface{}) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&reservation); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := common.GetByID[models.Reservation](ctx, r.db, "reservations", id, ErrReservationNotFound); getErr != nil {
				return nil, getErr
			}
			return nil, ErrReservationStale
		}
		return nil, fmt.Errorf("reservation repository: transition %w", err)
	}
	return &reservation, nil
}

// ListByUser возвращает бронирования владельца.
func (r *ReservationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Reservation, error) {
	return r.list(ctx, "user_id", userID, limit, offset)
}

// ListByProvider возвращает бронирования исполнителя.
func (r *ReservationRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Reservation, error) {
	return r.list(ctx, "provider_id", providerID, limit, offset)
}

func (r *ReservationRepository) list(ctx context.Context, field string, id uuid.UUID, limit, offset int) ([]models.Reservation, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(
		`SELECT `+reservationColumns+` FROM reservations WHERE %s = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		field,
	)

	var reservations []models.Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, id, limit, offset); err != nil {
		return nil, fmt.Errorf("reservation repository: list by %s %w", field, err)
	}
	return reservations, nil
}
