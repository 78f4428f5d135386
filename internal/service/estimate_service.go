package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/daengle/petcare-backend/internal/models"
	"github.com/daengle/petcare-backend/internal/pkg/apperror"
	"github.com/daengle/petcare-backend/internal/repository"
	"github.com/daengle/petcare-backend/internal/validation"
)

// EstimateRepo описывает доступ к заявкам и предложениям.
type EstimateRepo interface {
	Create(ctx context.Context, est *models.Estimate) error
	CreateQuote(ctx context.Context, quote *models.Estimate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Estimate, error)
	AcceptQuoteCascade(ctx context.Context, quoteID uuid.UUID) (*models.Estimate, error)
	RejectQuote(ctx context.Context, quoteID uuid.UUID) (*models.Estimate, error)
	CancelQuote(ctx context.Context, quoteID uuid.UUID) (*models.Estimate, error)
	CancelRootCascade(ctx context.Context, rootID uuid.UUID) (*models.Estimate, error)
	ListQuotes(ctx context.Context, rootID uuid.UUID) ([]models.Estimate, error)
	GetQuoteByProvider(ctx context.Context, rootID, providerID uuid.UUID) (*models.Estimate, error)
	HasAliveQuoteByProvider(ctx context.Context, rootID, providerID uuid.UUID) (bool, error)
	ListMyEstimates(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Estimate, error)
	ListOpenForProvider(ctx context.Context, providerID uuid.UUID, serviceType string, limit, offset int) ([]models.Estimate, error)
	ListQuotesByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Estimate, error)
}

// ReservationRepoForEstimate создаёт бронирование по принятому предложению.
type ReservationRepoForEstimate interface {
	Create(ctx context.Context, reservation *models.Reservation) error
}

// AccountRepoForEstimate проверяет питомцев и профили исполнителей.
type AccountRepoForEstimate interface {
	GetPetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
	GetProviderByID(ctx context.Context, accountID uuid.UUID) (*models.Provider, error)
}

// Notifier доставляет событие пользователю. Ошибки доставки не прерывают
// бизнес-операцию.
type Notifier interface {
	Notify(ctx context.Context, accountID uuid.UUID, event string, data map[string]interface{})
}

// EstimateService управляет жизненным циклом заявок: создание, предложения
// исполнителей, принятие с каскадом и отмены.
type EstimateService struct {
	estimates    EstimateRepo
	reservations ReservationRepoForEstimate
	accounts     AccountRepoForEstimate
	notifier     Notifier
}

// NewEstimateService создаёт сервис заявок.
func NewEstimateService(estimates EstimateRepo, reservations ReservationRepoForEstimate, accounts AccountRepoForEstimate) *EstimateService {
	return &EstimateService{estimates: estimates, reservations: reservations, accounts: accounts}
}

// SetNotifier подключает доставку уведомлений.
func (s *EstimateService) SetNotifier(n Notifier) {
	s.notifier = n
}

// CreateEstimateInput содержит данные новой заявки.
type CreateEstimateInput struct {
	PetID        uuid.UUID
	ServiceType  string
	ProviderID   *uuid.UUID
	Address      string
	ReservedDate time.Time
	Symptoms     *string
	Requirements *string
}

// CreateEstimate создаёт корневую заявку. Если указан исполнитель, заявка
// становится адресной (designation) и видна только ему.
func (s *EstimateService) CreateEstimate(ctx context.Context, userID uuid.UUID, input CreateEstimateInput) (*models.Estimate, error) {
	if _, ok := models.ValidServiceTypes[input.ServiceType]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый вид услуги")
	}
	if err := validation.ValidateAddress(input.Address); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateReservedDate(input.ReservedDate); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateSymptoms(input.Symptoms); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateRequirements(input.Requirements); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	pet, err := s.accounts.GetPetByID(ctx, input.PetID)
	if err != nil {
		if errors.Is(err, repository.ErrPetNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "питомец не найден")
		}
		return nil, err
	}
	if pet.OwnerID != userID {
		return nil, apperror.ErrForbidden
	}

	proposal := models.ProposalGeneral
	if input.ProviderID != nil {
		provider, err := s.accounts.GetProviderByID(ctx, *input.ProviderID)
		if err != nil {
			if errors.Is(err, repository.ErrProviderNotFound) {
				return nil, apperror.ErrProviderNotFound
			}
			return nil, err
		}
		if provider.Role != models.RoleForServiceType(input.ServiceType) {
			return nil, apperror.New(apperror.ErrCodeValidation, "исполнитель не оказывает этот вид услуги")
		}
		proposal = models.ProposalDesignation
	}

	est := &models.Estimate{
		UserID:       userID,
		ProviderID:   input.ProviderID,
		PetID:        input.PetID,
		ServiceType:  input.ServiceType,
		Proposal:     proposal,
		Status:       models.EstimateStatusNew,
		Address:      input.Address,
		ReservedDate: input.ReservedDate,
		Symptoms:     input.Symptoms,
		Requirements: input.Requirements,
	}

	if err := s.estimates.Create(ctx, est); err != nil {
		return nil, err
	}

	if proposal == models.ProposalDesignation && s.notifier != nil {
		s.notifier.Notify(ctx, *input.ProviderID, "estimate.designated", map[string]interface{}{
			"estimate_id":  est.ID.String(),
			"service_type": est.ServiceType,
		})
	}

	return est, nil
}

// CreateQuoteInput содержит данные предложения исполнителя.
type CreateQuoteInput struct {
	ReservedDate time.Time
	Diagnosis    *string
	Cause        *string
	Treatment    *string
}

// CreateQuote подаёт предложение исполнителя по заявке. Адресную заявку может
// взять только назначенный исполнитель; повторное живое предложение одного
// исполнителя запрещено.
func (s *EstimateService) CreateQuote(ctx context.Context, providerID, rootID uuid.UUID, input CreateQuoteInput) (*models.Estimate, error) {
	root, err := s.getRoot(ctx, rootID)
	if err != nil {
		return nil, err
	}

	if root.IsTerminal() {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "заявка уже закрыта")
	}

	provider, err := s.accounts.GetProviderByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return nil, apperror.ErrProviderNotFound
		}
		return nil, err
	}
	if provider.Role != models.RoleForServiceType(root.ServiceType) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "заявка не относится к вашему виду услуг")
	}

	if root.Proposal == models.ProposalDesignation && (root.ProviderID == nil || *root.ProviderID != providerID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "адресная заявка назначена другому исполнителю")
	}

	hasAlive, err := s.estimates.HasAliveQuoteByProvider(ctx, rootID, providerID)
	if err != nil {
		return nil, err
	}
	if hasAlive {
		return nil, apperror.New(apperror.ErrCodeConflict, "вы уже подали предложение по этой заявке")
	}

	if err := validation.ValidateReservedDate(input.ReservedDate); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateQuoteFields(input.Diagnosis, input.Cause, input.Treatment); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	// Предложение рождается сразу в waiting: оно уже ждёт решения владельца.
	quote := &models.Estimate{
		ParentID:     &root.ID,
		UserID:       root.UserID,
		ProviderID:   &providerID,
		PetID:        root.PetID,
		ServiceType:  root.ServiceType,
		Proposal:     root.Proposal,
		Status:       models.EstimateStatusWaiting,
		Address:      root.Address,
		ReservedDate: input.ReservedDate,
		Diagnosis:    input.Diagnosis,
		Cause:        input.Cause,
		Treatment:    input.Treatment,
	}

	if err := s.estimates.CreateQuote(ctx, quote); err != nil {
		return nil, s.mapEstimateErr(err)
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, root.UserID, "quote.created", map[string]interface{}{
			"estimate_id": root.ID.String(),
			"quote_id":    quote.ID.String(),
		})
	}

	return quote, nil
}

// AcceptQuote принимает предложение от имени владельца заявки. Принятие
// атомарно: корень и предложение получают accepted, остальные живые
// предложения отклоняются, создаётся бронирование. Выигрывает первый вызов.
func (s *EstimateService) AcceptQuote(ctx context.Context, userID, quoteID uuid.UUID) (*models.Estimate, *models.Reservation, error) {
	quote, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, nil, err
	}
	if quote.UserID != userID {
		return nil, nil, apperror.ErrForbidden
	}

	accepted, err := s.estimates.AcceptQuoteCascade(ctx, quoteID)
	if err != nil {
		return nil, nil, s.mapEstimateErr(err)
	}

	reservation := &models.Reservation{
		EstimateID:  *accepted.ParentID,
		UserID:      accepted.UserID,
		ProviderID:  *accepted.ProviderID,
		ServiceType: accepted.ServiceType,
		Schedule:    accepted.ReservedDate,
		Status:      models.ReservationStatusPending,
	}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		return nil, nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, *accepted.ProviderID, "quote.accepted", map[string]interface{}{
			"quote_id":       accepted.ID.String(),
			"reservation_id": reservation.ID.String(),
		})
	}

	return accepted, reservation, nil
}

// RejectQuote отклоняет предложение от имени владельца заявки.
func (s *EstimateService) RejectQuote(ctx context.Context, userID, quoteID uuid.UUID) (*models.Estimate, error) {
	quote, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.UserID != userID {
		return nil, apperror.ErrForbidden
	}

	rejected, err := s.estimates.RejectQuote(ctx, quoteID)
	if err != nil {
		return nil, s.mapEstimateErr(err)
	}

	if s.notifier != nil && rejected.ProviderID != nil {
		s.notifier.Notify(ctx, *rejected.ProviderID, "quote.rejected", map[string]interface{}{
			"quote_id": rejected.ID.String(),
		})
	}

	return rejected, nil
}

// CancelEstimate отменяет корневую заявку владельца вместе со всеми живыми
// предложениями.
func (s *EstimateService) CancelEstimate(ctx context.Context, userID, rootID uuid.UUID) (*models.Estimate, error) {
	root, err := s.getRoot(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if root.UserID != userID {
		return nil, apperror.ErrForbidden
	}

	cancelled, err := s.estimates.CancelRootCascade(ctx, rootID)
	if err != nil {
		return nil, s.mapEstimateErr(err)
	}

	return cancelled, nil
}

// CancelQuote отзывает предложение исполнителя. Если это было последнее живое
// предложение, вместе с ним отменяется и корневая заявка.
func (s *EstimateService) CancelQuote(ctx context.Context, providerID, quoteID uuid.UUID) (*models.Estimate, error) {
	quote, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.ProviderID == nil || *quote.ProviderID != providerID {
		return nil, apperror.ErrForbidden
	}

	cancelled, err := s.estimates.CancelQuote(ctx, quoteID)
	if err != nil {
		return nil, s.mapEstimateErr(err)
	}

	return cancelled, nil
}

// GetEstimate возвращает заявку с предложениями. Все предложения видны только
// владельцу заявки; исполнитель видит лишь своё собственное.
func (s *EstimateService) GetEstimate(ctx context.Context, requesterID, id uuid.UUID) (*models.Estimate, []models.Estimate, error) {
	est, err := s.estimates.GetByID(ctx, id)
	if err != nil {
		return nil, nil, s.mapEstimateErr(err)
	}

	if !est.IsRoot() {
		return est, nil, nil
	}

	if est.UserID != requesterID {
		own, err := s.estimates.GetQuoteByProvider(ctx, id, requesterID)
		if err != nil {
			if errors.Is(err, repository.ErrQuoteNotFound) {
				return est, nil, nil
			}
			return nil, nil, err
		}
		return est, []models.Estimate{*own}, nil
	}

	quotes, err := s.estimates.ListQuotes(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return est, quotes, nil
}

// ListMyEstimates возвращает заявки владельца.
func (s *EstimateService) ListMyEstimates(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Estimate, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.estimates.ListMyEstimates(ctx, userID, limit, offset)
}

// ListOpenForProvider возвращает заявки, доступные исполнителю.
func (s *EstimateService) ListOpenForProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Estimate, error) {
	provider, err := s.accounts.GetProviderByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return nil, apperror.ErrProviderNotFound
		}
		return nil, err
	}

	serviceType := models.ServiceTypeCare
	if provider.Role == models.RoleGroomer {
		serviceType = models.ServiceTypeGrooming
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.estimates.ListOpenForProvider(ctx, providerID, serviceType, limit, offset)
}

// ListMyQuotes возвращает предложения исполнителя.
func (s *EstimateService) ListMyQuotes(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Estimate, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.estimates.ListQuotesByProvider(ctx, providerID, limit, offset)
}

// getRoot загружает корневую заявку.
func (s *EstimateService) getRoot(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
	est, err := s.estimates.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapEstimateErr(err)
	}
	if !est.IsRoot() {
		return nil, apperror.New(apperror.ErrCodeValidation, "идентификатор указывает на предложение, а не на заявку")
	}
	return est, nil
}

// getQuote загружает предложение.
func (s *EstimateService) getQuote(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
	est, err := s.estimates.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapEstimateErr(err)
	}
	if est.IsRoot() {
		return nil, apperror.New(apperror.ErrCodeValidation, "идентификатор указывает на заявку, а не на предложение")
	}
	return est, nil
}

// mapEstimateErr переводит ошибки репозитория в ошибки приложения.
func (s *EstimateService) mapEstimateErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrEstimateNotFound):
		return apperror.ErrEstimateNotFound
	case errors.Is(err, repository.ErrQuoteNotFound):
		return apperror.ErrQuoteNotFound
	case errors.Is(err, repository.ErrEstimateStale):
		return apperror.New(apperror.ErrCodeInvalidState, "заявка уже переведена в конечный статус")
	default:
		return err
	}
}
