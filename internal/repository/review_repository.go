package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/daengle/petcare-backend/internal/models"
	"github.com/daengle/petcare-backend/internal/repository/common"
)

// ReviewRepository отвечает за отзывы, рейтинг исполнителей и счётчики
// ключевых слов. Запись отзыва и все вытекающие изменения рейтинга
// выполняются одной транзакцией: либо применяется всё, либо ничего.
type ReviewRepository struct {
	db *sqlx.DB
}

// Ошибки уровня репозитория.
var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("review for reservation already exists")
	ErrMeterNotFound       = errors.New("meter not found")
)

// NewReviewRepository создаёт новый экземпляр.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `
	id, reservation_id, reviewer_id, provider_id, service_type, rating, keywords,
	content, image_urls, created_at, updated_at
`

// GetByID возвращает отзыв по идентификатору.
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("review repository: get by id %w", err)
	}
	return &review, nil
}

// GetByReservationID возвращает отзыв по бронированию.
func (r *ReviewRepository) GetByReservationID(ctx context.Context, reservationID uuid.UUID) (*models.Review, error) {
	var review models.Review
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE reservation_id = $1`
	if err := r.db.GetContext(ctx, &review, query, reservationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("review repository: get by reservation %w", err)
	}
	return &review, nil
}

// Create сохраняет отзыв и применяет его к рейтингу исполнителя: строка
// рейтинга блокируется FOR UPDATE, прибавляется новый отзыв, инкрементируются
// счётчики ключевых слов и обновляется денормализованный score исполнителя.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO reviews (reservation_id, reviewer_id, provider_id, service_type, rating, keywords, content, image_urls)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at
		`

		if err := tx.QueryRowxContext(
			ctx,
			query,
			review.ReservationID,
			review.ReviewerID,
			review.ProviderID,
			review.ServiceType,
			review.Rating,
			review.Keywords,
			review.Content,
			review.ImageURLs,
		).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt); err != nil {
			if isUniqueViolation(err) {
				return ErrReviewAlreadyExists
			}
			return fmt.Errorf("review repository: insert review %w", err)
		}

		meter, err := getMeterForUpdate(ctx, tx, review.ProviderID)
		if err != nil {
			return err
		}

		meter.ApplyNewReview(review.Rating)

		if err := saveMeter(ctx, tx, meter); err != nil {
			return err
		}

		for _, keyword := range review.Keywords {
			if err := applyKeywordDelta(ctx, tx, review.ProviderID, keyword, 1); err != nil {
				return err
			}
		}

		return refreshProviderScore(ctx, tx, review.ProviderID, meter.Score)
	})
}

// Update изменяет отзыв и применяет разницу оценок к рейтингу. Счётчики
// ключевых слов корректируются на разницу между старым и новым набором.
func (r *ReviewRepository) Update(ctx context.Context, review *models.Review) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var old models.Review
		lockQuery := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1 FOR UPDATE`
		if err := tx.QueryRowxContext(ctx, lockQuery, review.ID).StructScan(&old); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("review repository: lock review %w", err)
		}

		query := `
			UPDATE reviews
			SET rating = $1, keywords = $2, content = $3, image_urls = $4, updated_at = NOW()
			WHERE id = $5
			RETURNING updated_at
		`
		if err := tx.QueryRowxContext(
			ctx,
			query,
			review.Rating,
			review.Keywords,
			review.Content,
			review.ImageURLs,
			review.ID,
		).Scan(&review.UpdatedAt); err != nil {
			return fmt.Errorf("review repository: update review %w", err)
		}

		meter, err := getMeterForUpdate(ctx, tx, old.ProviderID)
		if err != nil {
			return err
		}

		meter.ApplyModifiedReview(old.Rating, review.Rating)

		if err := saveMeter(ctx, tx, meter); err != nil {
			return err
		}

		removed, added := keywordDiff(old.Keywords, review.Keywords)
		for _, keyword := range removed {
			if err := applyKeywordDelta(ctx, tx, old.ProviderID, keyword, -1); err != nil {
				return err
			}
		}
		for _, keyword := range added {
			if err := applyKeywordDelta(ctx, tx, old.ProviderID, keyword, 1); err != nil {
				return err
			}
		}

		return refreshProviderScore(ctx, tx, old.ProviderID, meter.Score)
	})
}

// Delete удаляет отзыв и вычитает его из рейтинга исполнителя.
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var old models.Review
		lockQuery := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1 FOR UPDATE`
		if err := tx.QueryRowxContext(ctx, lockQuery, id).StructScan(&old); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("review repository: lock review %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id); err != nil {
			return fmt.Errorf("review repository: delete review %w", err)
		}

		meter, err := getMeterForUpdate(ctx, tx, old.ProviderID)
		if err != nil {
			return err
		}

		if err := meter.ApplyDeletedReview(old.Rating); err != nil {
			return err
		}

		if err := saveMeter(ctx, tx, meter); err != nil {
			return err
		}

		for _, keyword := range old.Keywords {
			if err := applyKeywordDelta(ctx, tx, old.ProviderID, keyword, -1); err != nil {
				return err
			}
		}

		return refreshProviderScore(ctx, tx, old.ProviderID, meter.Score)
	})
}

// ListByProvider возвращает отзывы об исполнителе с пагинацией.
func (r *ReviewRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Review, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reviews WHERE provider_id = $1`, providerID); err != nil {
		return nil, 0, fmt.Errorf("review repository: count by provider %w", err)
	}

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE provider_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, providerID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("review repository: list by provider %w", err)
	}

	return reviews, total, nil
}

// ListByReviewer возвращает отзывы, оставленные пользователем.
func (r *ReviewRepository) ListByReviewer(ctx context.Context, reviewerID uuid.UUID, limit, offset int) ([]models.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE reviewer_id = $1
		ORDER BY created_at DESC
	`
	args := []interface{}{reviewerID}
	argIndex := 2

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, offset)
	}

	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, fmt.Errorf("review repository: list by reviewer %w", err)
	}
	return reviews, nil
}

// GetMeter возвращает текущий рейтинг исполнителя.
func (r *ReviewRepository) GetMeter(ctx context.Context, providerID uuid.UUID) (*models.DaengleMeter, error) {
	var meter models.DaengleMeter
	query := `SELECT provider_id, score, total, count, updated_at FROM meters WHERE provider_id = $1`
	if err := r.db.GetContext(ctx, &meter, query, providerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMeterNotFound
		}
		return nil, fmt.Errorf("review repository: get meter %w", err)
	}
	return &meter, nil
}

// ListKeywords возвращает счётчики ключевых слов исполнителя.
func (r *ReviewRepository) ListKeywords(ctx context.Context, providerID uuid.UUID) ([]models.ProviderKeyword, error) {
	query := `
		SELECT id, provider_id, keyword, count, badge_awarded, created_at, updated_at
		FROM provider_keywords
		WHERE provider_id = $1
		ORDER BY count DESC, keyword
	`

	var keywords []models.ProviderKeyword
	if err := r.db.SelectContext(ctx, &keywords, query, providerID); err != nil {
		return nil, fmt.Errorf("review repository: list keywords %w", err)
	}
	return keywords, nil
}

// getMeterForUpdate блокирует строку рейтинга на время транзакции.
func getMeterForUpdate(ctx context.Context, tx *sqlx.Tx, providerID uuid.UUID) (*models.DaengleMeter, error) {
	var meter models.DaengleMeter
	query := `SELECT provider_id, score, total, count, updated_at FROM meters WHERE provider_id = $1 FOR UPDATE`
	if err := tx.QueryRowxContext(ctx, query, providerID).StructScan(&meter); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMeterNotFound
		}
		return nil, fmt.Errorf("review repository: lock meter %w", err)
	}
	return &meter, nil
}

func saveMeter(ctx context.Context, tx *sqlx.Tx, meter *models.DaengleMeter) error {
	query := `
		UPDATE meters SET score = $1, total = $2, count = $3, updated_at = NOW()
		WHERE provider_id = $4
	`
	if _, err := tx.ExecContext(ctx, query, meter.Score, meter.Total, meter.Count, meter.ProviderID); err != nil {
		return fmt.Errorf("review repository: save meter %w", err)
	}
	return nil
}

// applyKeywordDelta изменяет счётчик ключевого слова. Значок выдаётся один
// раз при достижении порога; снятие отзывов значок не отзывает.
func applyKeywordDelta(ctx context.Context, tx *sqlx.Tx, providerID uuid.UUID, keyword string, delta int) error {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil
	}

	query := `
		INSERT INTO provider_keywords (provider_id, keyword, count)
		VALUES ($1, $2, GREATEST($3, 0))
		ON CONFLICT (provider_id, keyword)
		DO UPDATE SET count = GREATEST(provider_keywords.count + $3, 0), updated_at = NOW()
	`
	if _, err := tx.ExecContext(ctx, query, providerID, keyword, delta); err != nil {
		return fmt.Errorf("review repository: apply keyword delta %w", err)
	}

	awardQuery := `
		UPDATE provider_keywords
		SET badge_awarded = TRUE, updated_at = NOW()
		WHERE provider_id = $1 AND keyword = $2 AND count >= $3 AND badge_awarded = FALSE
	`
	if _, err := tx.ExecContext(ctx, awardQuery, providerID, keyword, models.KeywordBadgeThreshold); err != nil {
		return fmt.Errorf("review repository: award badge %w", err)
	}

	return nil
}

// refreshProviderScore обновляет денормализованный рейтинг в профиле
// исполнителя.
func refreshProviderScore(ctx context.Context, tx *sqlx.Tx, providerID uuid.UUID, score int) error {
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE providers SET meter_score = $1, updated_at = NOW() WHERE account_id = $2`,
		score,
		providerID,
	); err != nil {
		return fmt.Errorf("review repository: refresh provider score %w", err)
	}
	return nil
}

// keywordDiff возвращает слова, пропавшие из старого набора, и слова,
// появившиеся в новом.
func keywordDiff(oldKeywords, newKeywords []string) (removed, added []string) {
	oldSet := make(map[string]struct{}, len(oldKeywords))
	for _, k := range oldKeywords {
		oldSet[strings.ToLower(strings.TrimSpace(k))] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(newKeywords))
	for _, k := range newKeywords {
		newSet[strings.ToLower(strings.TrimSpace(k))] = struct{}{}
	}

	for k := range oldSet {
		if _, ok := newSet[k]; !ok {
			removed = append(removed, k)
		}
	}
	for k := range newSet {
		if _, ok := oldSet[k]; !ok {
			added = append(added, k)
		}
	}
	return removed, added
}

// isUniqueViolation распознаёт нарушение уникального ограничения Postgres.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
