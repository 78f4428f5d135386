package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("owner@example.com"))
	assert.NoError(t, ValidateEmail("Vet.Clinic+1@mail.ru"))

	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("no-at-sign"))
	assert.Error(t, ValidateEmail("two@@example.com"))
	assert.Error(t, ValidateEmail("user@localhost"))
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("pet_owner_1"))

	assert.Error(t, ValidateUsername(""))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername("1starts_with_digit"))
	assert.Error(t, ValidateUsername("has spaces"))
	assert.Error(t, ValidateUsername(strings.Repeat("a", MaxUsernameLength+1)))
}

func TestValidateReservedDate(t *testing.T) {
	assert.NoError(t, ValidateReservedDate(time.Now().Add(24*time.Hour)))

	assert.Error(t, ValidateReservedDate(time.Time{}))
	assert.Error(t, ValidateReservedDate(time.Now().Add(-time.Hour)))
}

func TestValidateStarRating(t *testing.T) {
	for rating := MinStarRating; rating <= MaxStarRating; rating++ {
		assert.NoError(t, ValidateStarRating(rating))
	}

	assert.Error(t, ValidateStarRating(0))
	assert.Error(t, ValidateStarRating(6))
	assert.Error(t, ValidateStarRating(-1))
}

func TestValidateReviewContent(t *testing.T) {
	assert.NoError(t, ValidateReviewContent("Отличный груминг, собака довольна"))

	assert.Error(t, ValidateReviewContent(""))
	assert.Error(t, ValidateReviewContent("   "))
	assert.Error(t, ValidateReviewContent("abc"))
	assert.Error(t, ValidateReviewContent(strings.Repeat("о", MaxReviewContentLength+1)))
}

func TestValidateReviewKeywords(t *testing.T) {
	assert.NoError(t, ValidateReviewKeywords(nil))
	assert.NoError(t, ValidateReviewKeywords([]string{"аккуратный", "пунктуальный"}))

	assert.Error(t, ValidateReviewKeywords([]string{"a", "b", "c", "d", "e", "f"}))
	assert.Error(t, ValidateReviewKeywords([]string{"добрый", "Добрый"}))
	assert.Error(t, ValidateReviewKeywords([]string{"  "}))
}

func TestValidateImageURLs(t *testing.T) {
	assert.NoError(t, ValidateImageURLs(nil))
	assert.NoError(t, ValidateImageURLs([]string{"https://cdn.example.com/photo.jpg"}))

	many := make([]string, MaxReviewImages+1)
	for i := range many {
		many[i] = "https://cdn.example.com/photo.jpg"
	}
	assert.Error(t, ValidateImageURLs(many))
	assert.Error(t, ValidateImageURLs([]string{"ftp://cdn.example.com/photo.jpg"}))
	assert.Error(t, ValidateImageURLs([]string{""}))
}

func TestValidateQuoteFields(t *testing.T) {
	diagnosis := "дерматит"
	assert.NoError(t, ValidateQuoteFields(&diagnosis, nil, nil))
	assert.NoError(t, ValidateQuoteFields(nil, nil, nil))

	long := strings.Repeat("x", MaxDiagnosisLength+1)
	assert.Error(t, ValidateQuoteFields(&long, nil, nil))
}
