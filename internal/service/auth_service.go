package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/daengle/petcare-backend/internal/models"
	"github.com/daengle/petcare-backend/internal/pkg/apperror"
	"github.com/daengle/petcare-backend/internal/repository"
	"github.com/daengle/petcare-backend/internal/validation"
)

// AccountRepository описывает доступ к учётным записям, профилям и сессиям.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateLastLogin(ctx context.Context, accountID uuid.UUID) error
	CreateProvider(ctx context.Context, provider *models.Provider) error
	GetProviderByID(ctx context.Context, accountID uuid.UUID) (*models.Provider, error)
	CreateSession(ctx context.Context, session *models.Session) error
	GetSessionByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// AuthService отвечает за регистрацию и аутентификацию.
type AuthService struct {
	accounts AccountRepository
	tokens   *TokenManager
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(accounts AccountRepository, tokens *TokenManager) *AuthService {
	return &AuthService{accounts: accounts, tokens: tokens}
}

// RegisterInput содержит данные регистрации.
type RegisterInput struct {
	Email        string
	Username     string
	Password     string
	Role         string
	ProviderName string
	Address      string
	Introduction *string
}

// Register создаёт аккаунт. Для ролей vet и groomer дополнительно заводится
// профиль исполнителя с пустым рейтингом.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.Account, error) {
	if err := validation.ValidateEmail(input.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateUsername(input.Username); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if len(input.Password) < 8 {
		return nil, apperror.New(apperror.ErrCodeValidation, "пароль должен быть не менее 8 символов")
	}
	if _, ok := models.ValidRoles[input.Role]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимая роль")
	}

	isProvider := input.Role == models.RoleVet || input.Role == models.RoleGroomer
	if isProvider {
		if strings.TrimSpace(input.ProviderName) == "" {
			return nil, apperror.New(apperror.ErrCodeValidation, "имя исполнителя обязательно")
		}
		if err := validation.ValidateAddress(input.Address); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: hash password %w", err)
	}

	account := &models.Account{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: string(hash),
		Role:         input.Role,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperror.New(apperror.ErrCodeConflict, "email уже занят")
		}
		return nil, err
	}

	if isProvider {
		provider := &models.Provider{
			AccountID:    account.ID,
			Role:         input.Role,
			Name:         strings.TrimSpace(input.ProviderName),
			Address:      strings.TrimSpace(input.Address),
			Introduction: input.Introduction,
		}
		if err := s.accounts.CreateProvider(ctx, provider); err != nil {
			return nil, err
		}
	}

	return account, nil
}

// Login проверяет учётные данные и выпускает пару токенов.
func (s *AuthService) Login(ctx context.Context, email, password string, userAgent, ip *string) (*models.Account, *TokenPair, error) {
	account, err := s.accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, nil, apperror.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperror.ErrInvalidCredentials
	}

	pair, _, refreshExp, err := s.tokens.GeneratePair(account)
	if err != nil {
		return nil, nil, fmt.Errorf("auth service: generate tokens %w", err)
	}

	session := &models.Session{
		AccountID:    account.ID,
		RefreshToken: pair.RefreshToken,
		UserAgent:    userAgent,
		IPAddress:    ip,
		ExpiresAt:    refreshExp,
	}
	if err := s.accounts.CreateSession(ctx, session); err != nil {
		return nil, nil, err
	}

	if err := s.accounts.UpdateLastLogin(ctx, account.ID); err != nil {
		return nil, nil, err
	}

	return account, pair, nil
}

// Refresh обменивает refresh токен на новую пару. Старая сессия удаляется.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	session, err := s.accounts.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.accounts.DeleteSession(ctx, refreshToken)
		return nil, apperror.ErrUnauthorized
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil || accountID != session.AccountID {
		return nil, apperror.ErrUnauthorized
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	pair, _, refreshExp, err := s.tokens.GeneratePair(account)
	if err != nil {
		return nil, fmt.Errorf("auth service: generate tokens %w", err)
	}

	if err := s.accounts.DeleteSession(ctx, refreshToken); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return nil, err
	}

	newSession := &models.Session{
		AccountID:    account.ID,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    refreshExp,
	}
	if err := s.accounts.CreateSession(ctx, newSession); err != nil {
		return nil, err
	}

	return pair, nil
}

// Logout удаляет refresh-сессию.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.accounts.DeleteSession(ctx, refreshToken)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	return err
}

// GetAccount возвращает аккаунт по идентификатору.
func (s *AuthService) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, apperror.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}
