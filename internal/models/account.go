package models

import (
	"time"

	"github.com/google/uuid"
)

// Account описывает учётную запись: владельца питомца, ветеринара или грумера.
type Account struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

// Provider описывает профиль исполнителя (ветеринара или грумера).
// MeterScore — денормализованный рейтинг для витринных выборок, источником
// истины остаётся строка DaengleMeter.
type Provider struct {
	AccountID    uuid.UUID `db:"account_id" json:"account_id"`
	Role         string    `db:"role" json:"role"`
	Name         string    `db:"name" json:"name"`
	Address      string    `db:"address" json:"address"`
	Introduction *string   `db:"introduction" json:"introduction,omitempty"`
	ImageURL     *string   `db:"image_url" json:"image_url,omitempty"`
	MeterScore   int       `db:"meter_score" json:"meter_score"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Pet описывает питомца владельца.
type Pet struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	Breed     *string   `db:"breed" json:"breed,omitempty"`
	ImageURL  *string   `db:"image_url" json:"image_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Session хранит refresh токен пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	AccountID    uuid.UUID `db:"account_id" json:"account_id"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
