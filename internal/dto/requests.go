package dto

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest — тело запроса регистрации.
type RegisterRequest struct {
	Email        string  `json:"email" binding:"required"`
	Username     string  `json:"username" binding:"required"`
	Password     string  `json:"password" binding:"required"`
	Role         string  `json:"role" binding:"required"`
	ProviderName string  `json:"provider_name"`
	Address      string  `json:"address"`
	Introduction *string `json:"introduction"`
}

// LoginRequest — тело запроса входа.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest — тело запроса обновления токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateEstimateRequest — тело запроса создания заявки.
type CreateEstimateRequest struct {
	PetID        uuid.UUID  `json:"pet_id" binding:"required"`
	ServiceType  string     `json:"service_type" binding:"required"`
	ProviderID   *uuid.UUID `json:"provider_id"`
	Address      string     `json:"address" binding:"required"`
	ReservedDate time.Time  `json:"reserved_date" binding:"required"`
	Symptoms     *string    `json:"symptoms"`
	Requirements *string    `json:"requirements"`
}

// CreateQuoteRequest — тело предложения исполнителя.
type CreateQuoteRequest struct {
	ReservedDate time.Time `json:"reserved_date" binding:"required"`
	Diagnosis    *string   `json:"diagnosis"`
	Cause        *string   `json:"cause"`
	Treatment    *string   `json:"treatment"`
}

// ReviewRequest — тело создания или изменения отзыва.
type ReviewRequest struct {
	Rating    int      `json:"rating" binding:"required"`
	Keywords  []string `json:"keywords"`
	Content   string   `json:"content" binding:"required"`
	ImageURLs []string `json:"image_urls"`
}

// PayReservationRequest — тело оплаты бронирования.
type PayReservationRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// UpdateProviderRequest — тело изменения профиля исполнителя.
type UpdateProviderRequest struct {
	Name         string  `json:"name" binding:"required"`
	Address      string  `json:"address" binding:"required"`
	Introduction *string `json:"introduction"`
	ImageURL     *string `json:"image_url"`
}

// CreatePetRequest — тело добавления питомца.
type CreatePetRequest struct {
	Name     string  `json:"name" binding:"required"`
	Breed    *string `json:"breed"`
	ImageURL *string `json:"image_url"`
}
