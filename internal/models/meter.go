package models

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/daengle/petcare-backend/internal/pkg/apperror"
)

// DaengleMeter хранит инкрементально обновляемый рейтинг исполнителя.
// Score всегда равен округлённому среднему очков всех живых отзывов;
// Total и Count позволяют применять изменения без пересчёта истории.
type DaengleMeter struct {
	ProviderID uuid.UUID `db:"provider_id" json:"provider_id"`
	Score      int       `db:"score" json:"score"`
	Total      int       `db:"total" json:"total"`
	Count      int       `db:"count" json:"count"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// NewDaengleMeter создаёт пустой рейтинг для нового исполнителя.
func NewDaengleMeter(providerID uuid.UUID) *DaengleMeter {
	return &DaengleMeter{ProviderID: providerID}
}

// ScoreOfRating переводит оценку в звёздах (1-5) в очки рейтинга (20-100).
func ScoreOfRating(rating int) int {
	return rating * 20
}

// ApplyNewReview учитывает новый отзыв.
func (m *DaengleMeter) ApplyNewReview(rating int) {
	m.Total += ScoreOfRating(rating)
	m.Count++
	m.recalculate()
}

// ApplyModifiedReview учитывает изменение оценки существующего отзыва.
func (m *DaengleMeter) ApplyModifiedReview(oldRating, newRating int) {
	m.Total += ScoreOfRating(newRating) - ScoreOfRating(oldRating)
	m.recalculate()
}

// ApplyDeletedReview учитывает удаление отзыва.
func (m *DaengleMeter) ApplyDeletedReview(rating int) error {
	if m.Count == 0 {
		return apperror.New(apperror.ErrCodeInvalidState, "нельзя удалить отзыв: счётчик отзывов уже равен нулю")
	}

	m.Total -= ScoreOfRating(rating)
	m.Count--
	m.recalculate()
	return nil
}

// recalculate пересчитывает Score из накопленных Total и Count.
func (m *DaengleMeter) recalculate() {
	if m.Count == 0 {
		m.Score = 0
		m.Total = 0
		return
	}
	m.Score = int(math.Round(float64(m.Total) / float64(m.Count)))
}
