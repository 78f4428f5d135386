package dto

import (
	"github.com/daengle/petcare-backend/internal/models"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// TokenResponse — пара токенов после входа или обновления.
type TokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Account      *models.Account `json:"account,omitempty"`
}

// EstimateResponse — заявка вместе с предложениями исполнителей.
// Предложения видны только владельцу заявки.
type EstimateResponse struct {
	*models.Estimate
	Quotes []models.Estimate `json:"quotes,omitempty"`
}

// AcceptQuoteResponse — результат принятия предложения: принятое предложение
// и созданное бронирование.
type AcceptQuoteResponse struct {
	Quote       *models.Estimate    `json:"quote"`
	Reservation *models.Reservation `json:"reservation"`
}

// ProviderReviewsResponse — отзывы об исполнителе с пагинацией.
type ProviderReviewsResponse struct {
	Reviews    []models.Review `json:"reviews"`
	Pagination Pagination      `json:"pagination"`
}

// ProviderRatingResponse — рейтинг исполнителя со счётчиками ключевых слов.
type ProviderRatingResponse struct {
	Meter    *models.DaengleMeter     `json:"meter"`
	Keywords []models.ProviderKeyword `json:"keywords"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}
