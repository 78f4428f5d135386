package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/daengle/petcare-backend/internal/models"
	"github.com/daengle/petcare-backend/internal/pkg/apperror"
	"github.com/daengle/petcare-backend/internal/repository"
	"github.com/daengle/petcare-backend/internal/validation"
)

// ProfileRepo описывает доступ к профилям исполнителей и питомцам.
type ProfileRepo interface {
	GetProviderByID(ctx context.Context, accountID uuid.UUID) (*models.Provider, error)
	UpdateProvider(ctx context.Context, provider *models.Provider) error
	ListProviders(ctx context.Context, role string, limit, offset int) ([]models.Provider, error)
	CreatePet(ctx context.Context, pet *models.Pet) error
	GetPetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
	ListPetsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Pet, error)
}

// ProfileService отвечает за профили исполнителей и питомцев.
type ProfileService struct {
	profiles ProfileRepo
}

// NewProfileService создаёт сервис профилей.
func NewProfileService(profiles ProfileRepo) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// GetProvider возвращает профиль исполнителя.
func (s *ProfileService) GetProvider(ctx context.Context, accountID uuid.UUID) (*models.Provider, error) {
	provider, err := s.profiles.GetProviderByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return nil, apperror.ErrProviderNotFound
		}
		return nil, err
	}
	return provider, nil
}

// UpdateProviderInput содержит изменяемые поля профиля.
type UpdateProviderInput struct {
	Name         string
	Address      string
	Introduction *string
	ImageURL     *string
}

// UpdateProvider изменяет профиль исполнителя.
func (s *ProfileService) UpdateProvider(ctx context.Context, accountID uuid.UUID, input UpdateProviderInput) (*models.Provider, error) {
	provider, err := s.GetProvider(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "имя исполнителя обязательно")
	}
	if err := validation.ValidateAddress(input.Address); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	provider.Name = strings.TrimSpace(input.Name)
	provider.Address = strings.TrimSpace(input.Address)
	provider.Introduction = input.Introduction
	provider.ImageURL = input.ImageURL

	if err := s.profiles.UpdateProvider(ctx, provider); err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return nil, apperror.ErrProviderNotFound
		}
		return nil, err
	}

	return provider, nil
}

// ListProviders возвращает исполнителей по виду услуги, отсортированных по
// рейтингу.
func (s *ProfileService) ListProviders(ctx context.Context, serviceType string, limit, offset int) ([]models.Provider, error) {
	if _, ok := models.ValidServiceTypes[serviceType]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый вид услуги")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.profiles.ListProviders(ctx, models.RoleForServiceType(serviceType), limit, offset)
}

// CreatePet добавляет питомца владельцу.
func (s *ProfileService) CreatePet(ctx context.Context, ownerID uuid.UUID, name string, breed, imageURL *string) (*models.Pet, error) {
	if err := validation.ValidateNonEmpty("имя питомца", name); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	pet := &models.Pet{
		OwnerID:  ownerID,
		Name:     strings.TrimSpace(name),
		Breed:    breed,
		ImageURL: imageURL,
	}

	if err := s.profiles.CreatePet(ctx, pet); err != nil {
		return nil, err
	}

	return pet, nil
}

// ListMyPets возвращает питомцев владельца.
func (s *ProfileService) ListMyPets(ctx context.Context, ownerID uuid.UUID) ([]models.Pet, error) {
	return s.profiles.ListPetsByOwner(ctx, ownerID)
}
