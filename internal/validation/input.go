package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength     = 3
	MaxUsernameLength     = 30
	MaxAddressLength      = 200
	MaxSymptomsLength     = 2000
	MaxRequirementsLength = 2000
	MaxDiagnosisLength    = 2000
	MinReviewContentLength = 5
	MaxReviewContentLength = 2000
	MaxReviewKeywords      = 5
	MaxReviewImages        = 10
	MaxImageURLLength      = 500
	MinStarRating          = 1
	MaxStarRating          = 5
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	if len(username) > 0 && unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateAddress проверяет адрес оказания услуги.
func ValidateAddress(address string) error {
	if strings.TrimSpace(address) == "" {
		return fmt.Errorf("адрес обязателен")
	}
	return ValidateLength("адрес", address, 0, MaxAddressLength)
}

// ValidateReservedDate проверяет желаемую дату услуги.
func ValidateReservedDate(reservedDate time.Time) error {
	if reservedDate.IsZero() {
		return fmt.Errorf("дата услуги обязательна")
	}
	if reservedDate.Before(time.Now()) {
		return fmt.Errorf("дата услуги не может быть в прошлом")
	}
	return nil
}

// ValidateSymptoms проверяет описание симптомов в заявке на лечение.
func ValidateSymptoms(symptoms *string) error {
	if symptoms != nil && *symptoms != "" {
		return ValidateLength("описание симптомов", strings.TrimSpace(*symptoms), 0, MaxSymptomsLength)
	}
	return nil
}

// ValidateRequirements проверяет пожелания к услуге.
func ValidateRequirements(requirements *string) error {
	if requirements != nil && *requirements != "" {
		return ValidateLength("пожелания", strings.TrimSpace(*requirements), 0, MaxRequirementsLength)
	}
	return nil
}

// ValidateQuoteFields проверяет поля предложения исполнителя.
func ValidateQuoteFields(diagnosis, cause, treatment *string) error {
	for field, value := range map[string]*string{
		"диагноз":      diagnosis,
		"причина":      cause,
		"план лечения": treatment,
	} {
		if value == nil || strings.TrimSpace(*value) == "" {
			continue
		}
		if err := ValidateLength(field, strings.TrimSpace(*value), 0, MaxDiagnosisLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStarRating проверяет оценку отзыва.
func ValidateStarRating(rating int) error {
	if rating < MinStarRating || rating > MaxStarRating {
		return fmt.Errorf("рейтинг должен быть от %d до %d", MinStarRating, MaxStarRating)
	}
	return nil
}

// ValidateReviewContent проверяет текст отзыва.
func ValidateReviewContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("текст отзыва обязателен")
	}
	return ValidateLength("текст отзыва", strings.TrimSpace(content), MinReviewContentLength, MaxReviewContentLength)
}

// ValidateReviewKeywords проверяет ключевые слова отзыва.
func ValidateReviewKeywords(keywords []string) error {
	if len(keywords) > MaxReviewKeywords {
		return fmt.Errorf("количество ключевых слов не может превышать %d", MaxReviewKeywords)
	}

	seen := make(map[string]bool)
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			return fmt.Errorf("ключевое слово не может быть пустым")
		}

		keywordLower := strings.ToLower(keyword)
		if seen[keywordLower] {
			return fmt.Errorf("ключевое слово '%s' указано дважды", keyword)
		}
		seen[keywordLower] = true
	}

	return nil
}

// ValidateImageURLs проверяет список ссылок на изображения отзыва.
func ValidateImageURLs(imageURLs []string) error {
	if len(imageURLs) > MaxReviewImages {
		return fmt.Errorf("количество изображений не может превышать %d", MaxReviewImages)
	}

	for _, link := range imageURLs {
		link = strings.TrimSpace(link)
		if err := ValidateLength("ссылка на изображение", link, 1, MaxImageURLLength); err != nil {
			return err
		}

		parsedURL, err := url.Parse(link)
		if err != nil {
			return fmt.Errorf("некорректный формат URL изображения")
		}

		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" && parsedURL.Scheme != "" {
			return fmt.Errorf("ссылка на изображение должна начинаться с http:// или https://")
		}
	}

	return nil
}
