package models

import (
	"time"

	"github.com/google/uuid"
)

// Reservation связывает принятое предложение с оплатой и выполнением услуги.
// Отзыв можно оставить только на бронирование в статусе completed.
type Reservation struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	EstimateID  uuid.UUID  `db:"estimate_id" json:"estimate_id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	ProviderID  uuid.UUID  `db:"provider_id" json:"provider_id"`
	ServiceType string     `db:"service_type" json:"service_type"`
	Schedule    time.Time  `db:"schedule" json:"schedule"`
	Amount      *float64   `db:"amount" json:"amount,omitempty"`
	Status      string     `db:"status" json:"status"`
	PaidAt      *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
