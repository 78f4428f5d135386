package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/daengle/petcare-backend/internal/models"
	"github.com/daengle/petcare-backend/internal/repository/common"
)

// AccountRepository отвечает за учётные записи, профили исполнителей,
// питомцев и сессии.
type AccountRepository struct {
	db *sqlx.DB
}

// Ошибки уровня репозитория.
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrProviderNotFound = errors.New("provider not found")
	ErrPetNotFound      = errors.New("pet not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrEmailTaken       = errors.New("email already taken")
)

// NewAccountRepository создаёт новый экземпляр.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetByID возвращает аккаунт по идентификатору.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return common.GetByID[models.Account](ctx, r.db, "accounts", id, ErrAccountNotFound)
}

// GetByEmail возвращает аккаунт по email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return common.GetByField[models.Account](ctx, r.db, "accounts", "email", email, ErrAccountNotFound)
}

// Create сохраняет аккаунт.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (email, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		account.Email,
		account.Username,
		account.PasswordHash,
		account.Role,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("account repository: insert account %w", err)
	}

	return nil
}

// CreateProvider создаёт профиль исполнителя вместе с пустой строкой рейтинга.
// Рейтинг заводится сразу, чтобы запись первого отзыва не требовала вставки.
func (r *AccountRepository) CreateProvider(ctx context.Context, provider *models.Provider) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO providers (account_id, role, name, address, introduction, image_url)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at, updated_at
		`
		if err := tx.QueryRowxContext(
			ctx,
			query,
			provider.AccountID,
			provider.Role,
			provider.Name,
			provider.Address,
			provider.Introduction,
			provider.ImageURL,
		).Scan(&provider.CreatedAt, &provider.UpdatedAt); err != nil {
			return fmt.Errorf("account repository: insert provider %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO meters (provider_id, score, total, count) VALUES ($1, 0, 0, 0)`,
			provider.AccountID,
		); err != nil {
			return fmt.Errorf("account repository: insert meter %w", err)
		}

		return nil
	})
}

// GetProviderByID возвращает профиль исполнителя.
func (r *AccountRepository) GetProviderByID(ctx context.Context, accountID uuid.UUID) (*models.Provider, error) {
	return common.GetByField[models.Provider](ctx, r.db, "providers", "account_id", accountID, ErrProviderNotFound)
}

// UpdateProvider изменяет профиль исполнителя.
func (r *AccountRepository) UpdateProvider(ctx context.Context, provider *models.Provider) error {
	query := `
		UPDATE providers
		SET name = $1, address = $2, introduction = $3, image_url = $4, updated_at = NOW()
		WHERE account_id = $5
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(
		ctx,
		query,
		provider.Name,
		provider.Address,
		provider.Introduction,
		provider.ImageURL,
		provider.AccountID,
	).Scan(&provider.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProviderNotFound
		}
		return fmt.Errorf("account repository: update provider %w", err)
	}
	return nil
}

// ListProviders возвращает исполнителей по роли, отсортированных по рейтингу.
func (r *AccountRepository) ListProviders(ctx context.Context, role string, limit, offset int) ([]models.Provider, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT account_id, role, name, address, introduction, image_url, meter_score, created_at, updated_at
		FROM providers
		WHERE role = $1
		ORDER BY meter_score DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	var providers []models.Provider
	if err := r.db.SelectContext(ctx, &providers, query, role, limit, offset); err != nil {
		return nil, fmt.Errorf("account repository: list providers %w", err)
	}
	return providers, nil
}

// UpdateLastLogin фиксирует время последнего входа.
func (r *AccountRepository) UpdateLastLogin(ctx context.Context, accountID uuid.UUID) error {
	if _, err := r.db.ExecContext(
		ctx,
		`UPDATE accounts SET last_login_at = NOW() WHERE id = $1`,
		accountID,
	); err != nil {
		return fmt.Errorf("account repository: update last login %w", err)
	}
	return nil
}

// CreatePet сохраняет питомца.
func (r *AccountRepository) CreatePet(ctx context.Context, pet *models.Pet) error {
	query := `
		INSERT INTO pets (owner_id, name, breed, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx,
		query,
		pet.OwnerID,
		pet.Name,
		pet.Breed,
		pet.ImageURL,
	).Scan(&pet.ID, &pet.CreatedAt); err != nil {
		return fmt.Errorf("account repository: insert pet %w", err)
	}
	return nil
}

// GetPetByID возвращает питомца.
func (r *AccountRepository) GetPetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	return common.GetByID[models.Pet](ctx, r.db, "pets", id, ErrPetNotFound)
}

// ListPetsByOwner возвращает питомцев владельца.
func (r *AccountRepository) ListPetsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Pet, error) {
	query := `
		SELECT id, owner_id, name, breed, image_url, created_at
		FROM pets
		WHERE owner_id = $1
		ORDER BY created_at
	`

	var pets []models.Pet
	if err := r.db.SelectContext(ctx, &pets, query, ownerID); err != nil {
		return nil, fmt.Errorf("account repository: list pets %w", err)
	}
	return pets, nil
}

// CreateSession сохраняет refresh-сессию.
func (r *AccountRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (account_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx,
		query,
		session.AccountID,
		session.RefreshToken,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("account repository: insert session %w", err)
	}
	return nil
}

// GetSessionByToken возвращает сессию по refresh токену.
func (r *AccountRepository) GetSessionByToken(ctx context.Context, token string) (*models.Session, error) {
	return common.GetByField[models.Session](ctx, r.db, "sessions", "refresh_token", token, ErrSessionNotFound)
}

// DeleteSession удаляет сессию по refresh токену.
func (r *AccountRepository) DeleteSession(ctx context.Context, token string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, token)
	if err != nil {
		return fmt.Errorf("account repository: delete session %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("account repository: delete session rows affected %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteExpiredSessions удаляет истёкшие сессии.
func (r *AccountRepository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("account repository: delete expired sessions %w", err)
	}
	return result.RowsAffected()
}
