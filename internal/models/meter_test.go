package models

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreOfRating(t *testing.T) {
	assert.Equal(t, 20, ScoreOfRating(1))
	assert.Equal(t, 60, ScoreOfRating(3))
	assert.Equal(t, 100, ScoreOfRating(5))
}

func TestDaengleMeter_FirstReview(t *testing.T) {
	meter := NewDaengleMeter(uuid.New())

	meter.ApplyNewReview(5)

	assert.Equal(t, 100, meter.Score)
	assert.Equal(t, 100, meter.Total)
	assert.Equal(t, 1, meter.Count)
}

func TestDaengleMeter_ModifiedReview(t *testing.T) {
	meter := NewDaengleMeter(uuid.New())
	meter.ApplyNewReview(5)

	meter.ApplyModifiedReview(5, 3)

	assert.Equal(t, 60, meter.Score)
	assert.Equal(t, 60, meter.Total)
	assert.Equal(t, 1, meter.Count)
}

func TestDaengleMeter_DeletedReview(t *testing.T) {
	meter := NewDaengleMeter(uuid.New())
	meter.ApplyNewReview(3)

	require.NoError(t, meter.ApplyDeletedReview(3))

	assert.Equal(t, 0, meter.Score)
	assert.Equal(t, 0, meter.Total)
	assert.Equal(t, 0, meter.Count)
}

func TestDaengleMeter_DeleteFromEmpty(t *testing.T) {
	meter := NewDaengleMeter(uuid.New())

	err := meter.ApplyDeletedReview(5)

	assert.Error(t, err)
	assert.Equal(t, 0, meter.Count)
}

func TestDaengleMeter_ScoreIsRoundedAverage(t *testing.T) {
	meter := NewDaengleMeter(uuid.New())

	meter.ApplyNewReview(5) // 100
	meter.ApplyNewReview(4) // 80
	meter.ApplyNewReview(4) // 80

	// (100 + 80 + 80) / 3 = 86.67 -> 87
	assert.Equal(t, 87, meter.Score)
	assert.Equal(t, 260, meter.Total)
	assert.Equal(t, 3, meter.Count)
}

// Инкрементальные изменения должны давать тот же результат, что и полный
// пересчёт по множеству живых отзывов.
func TestDaengleMeter_IncrementalEqualsRecompute(t *testing.T) {
	meter := NewDaengleMeter(uuid.New())

	ratings := []int{5, 2, 4, 1, 3, 5, 4}
	for _, r := range ratings {
		meter.ApplyNewReview(r)
	}

	// Изменяем второй отзыв 2 -> 4 и удаляем четвёртый (1).
	meter.ApplyModifiedReview(2, 4)
	require.NoError(t, meter.ApplyDeletedReview(1))

	live := []int{5, 4, 4, 3, 5, 4}
	total := 0
	for _, r := range live {
		total += ScoreOfRating(r)
	}
	expected := int(math.Round(float64(total) / float64(len(live))))

	assert.Equal(t, expected, meter.Score)
	assert.Equal(t, total, meter.Total)
	assert.Equal(t, len(live), meter.Count)
}

func TestDaengleMeter_DeleteLastReviewResetsTotal(t *testing.T) {
	meter := NewDaengleMeter(uuid.New())
	meter.ApplyNewReview(5)
	meter.ApplyNewReview(1)

	require.NoError(t, meter.ApplyDeletedReview(5))
	require.NoError(t, meter.ApplyDeletedReview(1))

	assert.Equal(t, 0, meter.Score)
	assert.Equal(t, 0, meter.Total)
	assert.Equal(t, 0, meter.Count)
}
