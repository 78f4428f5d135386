package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Review представляет отзыв владельца питомца о выполненной услуге.
// На одно бронирование допускается не более одного отзыва.
type Review struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	ReservationID uuid.UUID      `db:"reservation_id" json:"reservation_id"`
	ReviewerID    uuid.UUID      `db:"reviewer_id" json:"reviewer_id"`
	ProviderID    uuid.UUID      `db:"provider_id" json:"provider_id"`
	ServiceType   string         `db:"service_type" json:"service_type"`
	Rating        int            `db:"rating" json:"rating"`
	Keywords      pq.StringArray `db:"keywords" json:"keywords"`
	Content       string         `db:"content" json:"content"`
	ImageURLs     pq.StringArray `db:"image_urls" json:"image_urls"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// ProviderKeyword хранит счётчик упоминаний ключевого слова в отзывах
// об исполнителе. BadgeAwarded фиксирует разовую выдачу значка и делает
// повторное пересечение порога идемпотентным.
type ProviderKeyword struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ProviderID   uuid.UUID `db:"provider_id" json:"provider_id"`
	Keyword      string    `db:"keyword" json:"keyword"`
	Count        int       `db:"count" json:"count"`
	BadgeAwarded bool      `db:"badge_awarded" json:"badge_awarded"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
