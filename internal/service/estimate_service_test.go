package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/daengle/petcare-backend/internal/models"
	"github.com/daengle/petcare-backend/internal/pkg/apperror"
	"github.com/daengle/petcare-backend/internal/repository"
)

type mockEstimateRepo struct {
	mock.Mock
}

func (m *mockEstimateRepo) Create(ctx context.Context, est *models.Estimate) error {
	args := m.Called(ctx, est)
	if args.Error(0) == nil {
		est.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockEstimateRepo) CreateQuote(ctx context.Context, quote *models.Estimate) error {
	args := m.Called(ctx, quote)
	if args.Error(0) == nil {
		quote.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockEstimateRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Estimate), args.Error(1)
}

func (m *mockEstimateRepo) AcceptQuoteCascade(ctx context.Context, quoteID uuid.UUID) (*models.Estimate, error) {
	args := m.Called(ctx, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Estimate), args.Error(1)
}

func (m *mockEstimateRepo) RejectQuote(ctx context.Context, quoteID uuid.UUID) (*models.Estimate, error) {
	args := m.Called(ctx, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Estimate), args.Error(1)
}

func (m *mockEstimateRepo) CancelQuote(ctx context.Context, quoteID uuid.UUID) (*models.Estimate, error) {
	args := m.Called(ctx, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Estimate), args.Error(1)
}

func (m *mockEstimateRepo) CancelRootCascade(ctx context.Context, rootID uuid.UUID) (*models.Estimate, error) {
	args := m.Called(ctx, rootID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Estimate), args.Error(1)
}

func (m *mockEstimateRepo) ListQuotes(ctx context.Context, rootID uuid.UUID) ([]models.Estimate, error) {
	args := m.Called(ctx, rootID)
	return args.Get(0).([]models.Estimate), args.Error(1)
}

func (m *mockEstimateRepo) GetQuoteByProvider(ctx context.Context, rootID, providerID uuid.UUID) (*models.Estimate, error) {
	args := m.Called(ctx, rootID, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Estimate), args.Error(1)
}

func (m *mockEstimateRepo) HasAliveQuoteByProvider(ctx context.Context, rootID, providerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, rootID, providerID)
	return args.Bool(0), args.Error(1)
}

func (m *mockEstimateRepo) ListMyEstimates(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Estimate, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Estimate), args.Error(1)
}

func (m *mockEstimateRepo) ListOpenForProvider(ctx context.Context, providerID uuid.UUID, serviceType string, limit, offset int) ([]models.Estimate, error) {
	args := m.Called(ctx, providerID, serviceType, limit, offset)
	return args.Get(0).([]models.Estimate), args.Error(1)
}

func (m *mockEstimateRepo) ListQuotesByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Estimate, error) {
	args := m.Called(ctx, providerID, limit, offset)
	return args.Get(0).([]models.Estimate), args.Error(1)
}

type mockReservationRepoForEstimate struct {
	mock.Mock
}

func (m *mockReservationRepoForEstimate) Create(ctx context.Context, reservation *models.Reservation) error {
	args := m.Called(ctx, reservation)
	if args.Error(0) == nil {
		reservation.ID = uuid.New()
	}
	return args.Error(0)
}

type mockAccountRepoForEstimate struct {
	mock.Mock
}

func (m *mockAccountRepoForEstimate) GetPetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pet), args.Error(1)
}

func (m *mockAccountRepoForEstimate) GetProviderByID(ctx context.Context, accountID uuid.UUID) (*models.Provider, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Provider), args.Error(1)
}

func newEstimateService() (*EstimateService, *mockEstimateRepo, *mockReservationRepoForEstimate, *mockAccountRepoForEstimate) {
	estimates := new(mockEstimateRepo)
	reservations := new(mockReservationRepoForEstimate)
	accounts := new(mockAccountRepoForEstimate)
	svc := NewEstimateService(estimates, reservations, accounts)
	return svc, estimates, reservations, accounts
}

func rootEstimate(userID uuid.UUID) *models.Estimate {
	return &models.Estimate{
		ID:           uuid.New(),
		UserID:       userID,
		PetID:        uuid.New(),
		ServiceType:  models.ServiceTypeCare,
		Proposal:     models.ProposalGeneral,
		Status:       models.EstimateStatusNew,
		Address:      "ул. Пушкина, 10",
		ReservedDate: time.Now().Add(48 * time.Hour),
	}
}

func quoteFor(root *models.Estimate, providerID uuid.UUID) *models.Estimate {
	return &models.Estimate{
		ID:           uuid.New(),
		ParentID:     &root.ID,
		UserID:       root.UserID,
		ProviderID:   &providerID,
		PetID:        root.PetID,
		ServiceType:  root.ServiceType,
		Proposal:     root.Proposal,
		Status:       models.EstimateStatusWaiting,
		Address:      root.Address,
		ReservedDate: root.ReservedDate,
	}
}

func TestEstimateService_CreateEstimate_General(t *testing.T) {
	svc, estimates, _, accounts := newEstimateService()
	ctx := context.Background()

	userID := uuid.New()
	petID := uuid.New()

	accounts.On("GetPetByID", ctx, petID).Return(&models.Pet{ID: petID, OwnerID: userID}, nil)
	estimates.On("Create", ctx, mock.AnythingOfType("*models.Estimate")).Return(nil)

	est, err := svc.CreateEstimate(ctx, userID, CreateEstimateInput{
		PetID:        petID,
		ServiceType:  models.ServiceTypeCare,
		Address:      "ул. Пушкина, 10",
		ReservedDate: time.Now().Add(24 * time.Hour),
	})

	assert.NoError(t, err)
	assert.Equal(t, models.ProposalGeneral, est.Proposal)
	assert.Equal(t, models.EstimateStatusNew, est.Status)
	assert.Nil(t, est.ProviderID)
}

func TestEstimateService_CreateEstimate_Designation(t *testing.T) {
	svc, estimates, _, accounts := newEstimateService()
	ctx := context.Background()

	userID := uuid.New()
	petID := uuid.New()
	providerID := uuid.New()

	accounts.On("GetPetByID", ctx, petID).Return(&models.Pet{ID: petID, OwnerID: userID}, nil)
	accounts.On("GetProviderByID", ctx, providerID).Return(&models.Provider{AccountID: providerID, Role: models.RoleVet}, nil)
	estimates.On("Create", ctx, mock.AnythingOfType("*models.Estimate")).Return(nil)

	est, err := svc.CreateEstimate(ctx, userID, CreateEstimateInput{
		PetID:        petID,
		ServiceType:  models.ServiceTypeCare,
		ProviderID:   &providerID,
		Address:      "ул. Пушкина, 10",
		ReservedDate: time.Now().Add(24 * time.Hour),
	})

	assert.NoError(t, err)
	assert.Equal(t, models.ProposalDesignation, est.Proposal)
}

func TestEstimateService_CreateEstimate_RoleMismatch(t *testing.T) {
	svc, _, _, accounts := newEstimateService()
	ctx := context.Background()

	userID := uuid.New()
	petID := uuid.New()
	groomerID := uuid.New()

	accounts.On("GetPetByID", ctx, petID).Return(&models.Pet{ID: petID, OwnerID: userID}, nil)
	accounts.On("GetProviderByID", ctx, groomerID).Return(&models.Provider{AccountID: groomerID, Role: models.RoleGroomer}, nil)

	_, err := svc.CreateEstimate(ctx, userID, CreateEstimateInput{
		PetID:        petID,
		ServiceType:  models.ServiceTypeCare,
		ProviderID:   &groomerID,
		Address:      "ул. Пушкина, 10",
		ReservedDate: time.Now().Add(24 * time.Hour),
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestEstimateService_CreateEstimate_NotPetOwner(t *testing.T) {
	svc, _, _, accounts := newEstimateService()
	ctx := context.Background()

	petID := uuid.New()
	accounts.On("GetPetByID", ctx, petID).Return(&models.Pet{ID: petID, OwnerID: uuid.New()}, nil)

	_, err := svc.CreateEstimate(ctx, uuid.New(), CreateEstimateInput{
		PetID:        petID,
		ServiceType:  models.ServiceTypeGrooming,
		Address:      "ул. Пушкина, 10",
		ReservedDate: time.Now().Add(24 * time.Hour),
	})

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestEstimateService_CreateQuote_Success(t *testing.T) {
	svc, estimates, _, accounts := newEstimateService()
	ctx := context.Background()

	root := rootEstimate(uuid.New())
	providerID := uuid.New()

	estimates.On("GetByID", ctx, root.ID).Return(root, nil)
	accounts.On("GetProviderByID", ctx, providerID).Return(&models.Provider{AccountID: providerID, Role: models.RoleVet}, nil)
	estimates.On("HasAliveQuoteByProvider", ctx, root.ID, providerID).Return(false, nil)
	estimates.On("CreateQuote", ctx, mock.AnythingOfType("*models.Estimate")).Return(nil)

	quote, err := svc.CreateQuote(ctx, providerID, root.ID, CreateQuoteInput{
		ReservedDate: time.Now().Add(24 * time.Hour),
	})

	assert.NoError(t, err)
	assert.Equal(t, root.ID, *quote.ParentID)
	assert.Equal(t, providerID, *quote.ProviderID)
	assert.Equal(t, models.EstimateStatusWaiting, quote.Status)
}

func TestEstimateService_CreateQuote_DesignationOtherProvider(t *testing.T) {
	svc, estimates, _, accounts := newEstimateService()
	ctx := context.Background()

	designated := uuid.New()
	root := rootEstimate(uuid.New())
	root.Proposal = models.ProposalDesignation
	root.ProviderID = &designated

	otherProvider := uuid.New()

	estimates.On("GetByID", ctx, root.ID).Return(root, nil)
	accounts.On("GetProviderByID", ctx, otherProvider).Return(&models.Provider{AccountID: otherProvider, Role: models.RoleVet}, nil)

	_, err := svc.CreateQuote(ctx, otherProvider, root.ID, CreateQuoteInput{
		ReservedDate: time.Now().Add(24 * time.Hour),
	})

	assert.Error(t, err)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeForbidden, appErr.Code)
}

func TestEstimateService_CreateQuote_DuplicateAlive(t *testing.T) {
	svc, estimates, _, accounts := newEstimateService()
	ctx := context.Background()

	root := rootEstimate(uuid.New())
	providerID := uuid.New()

	estimates.On("GetByID", ctx, root.ID).Return(root, nil)
	accounts.On("GetProviderByID", ctx, providerID).Return(&models.Provider{AccountID: providerID, Role: models.RoleVet}, nil)
	estimates.On("HasAliveQuoteByProvider", ctx, root.ID, providerID).Return(true, nil)

	_, err := svc.CreateQuote(ctx, providerID, root.ID, CreateQuoteInput{
		ReservedDate: time.Now().Add(24 * time.Hour),
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestEstimateService_CreateQuote_TerminalRoot(t *testing.T) {
	svc, estimates, _, _ := newEstimateService()
	ctx := context.Background()

	root := rootEstimate(uuid.New())
	root.Status = models.EstimateStatusCancelled

	estimates.On("GetByID", ctx, root.ID).Return(root, nil)

	_, err := svc.CreateQuote(ctx, uuid.New(), root.ID, CreateQuoteInput{
		ReservedDate: time.Now().Add(24 * time.Hour),
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestEstimateService_AcceptQuote_Success(t *testing.T) {
	svc, estimates, reservations, _ := newEstimateService()
	ctx := context.Background()

	userID := uuid.New()
	root := rootEstimate(userID)
	providerID := uuid.New()
	quote := quoteFor(root, providerID)

	accepted := *quote
	accepted.Status = models.EstimateStatusAccepted

	estimates.On("GetByID", ctx, quote.ID).Return(quote, nil)
	estimates.On("AcceptQuoteCascade", ctx, quote.ID).Return(&accepted, nil)
	reservations.On("Create", ctx, mock.AnythingOfType("*models.Reservation")).Return(nil)

	got, reservation, err := svc.AcceptQuote(ctx, userID, quote.ID)

	assert.NoError(t, err)
	assert.Equal(t, models.EstimateStatusAccepted, got.Status)
	assert.NotNil(t, reservation)
	assert.Equal(t, root.ID, reservation.EstimateID)
	assert.Equal(t, providerID, reservation.ProviderID)
	assert.Equal(t, models.ReservationStatusPending, reservation.Status)
}

func TestEstimateService_AcceptQuote_NotOwner(t *testing.T) {
	svc, estimates, _, _ := newEstimateService()
	ctx := context.Background()

	root := rootEstimate(uuid.New())
	quote := quoteFor(root, uuid.New())

	estimates.On("GetByID", ctx, quote.ID).Return(quote, nil)

	_, _, err := svc.AcceptQuote(ctx, uuid.New(), quote.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	estimates.AssertNotCalled(t, "AcceptQuoteCascade", mock.Anything, mock.Anything)
}

func TestEstimateService_AcceptQuote_LostRace(t *testing.T) {
	svc, estimates, _, _ := newEstimateService()
	ctx := context.Background()

	userID := uuid.New()
	root := rootEstimate(userID)
	quote := quoteFor(root, uuid.New())

	estimates.On("GetByID", ctx, quote.ID).Return(quote, nil)
	estimates.On("AcceptQuoteCascade", ctx, quote.ID).Return(nil, repository.ErrEstimateStale)

	_, _, err := svc.AcceptQuote(ctx, userID, quote.ID)
	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestEstimateService_RejectQuote_Success(t *testing.T) {
	svc, estimates, _, _ := newEstimateService()
	ctx := context.Background()

	userID := uuid.New()
	root := rootEstimate(userID)
	quote := quoteFor(root, uuid.New())

	rejected := *quote
	rejected.Status = models.EstimateStatusRejected

	estimates.On("GetByID", ctx, quote.ID).Return(quote, nil)
	estimates.On("RejectQuote", ctx, quote.ID).Return(&rejected, nil)

	got, err := svc.RejectQuote(ctx, userID, quote.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.EstimateStatusRejected, got.Status)
}

func TestEstimateService_CancelEstimate_Success(t *testing.T) {
	svc, estimates, _, _ := newEstimateService()
	ctx := context.Background()

	userID := uuid.New()
	root := rootEstimate(userID)

	cancelled := *root
	cancelled.Status = models.EstimateStatusCancelled

	estimates.On("GetByID", ctx, root.ID).Return(root, nil)
	estimates.On("CancelRootCascade", ctx, root.ID).Return(&cancelled, nil)

	got, err := svc.CancelEstimate(ctx, userID, root.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.EstimateStatusCancelled, got.Status)
}

func TestEstimateService_CancelQuote_NotAuthor(t *testing.T) {
	svc, estimates, _, _ := newEstimateService()
	ctx := context.Background()

	root := rootEstimate(uuid.New())
	quote := quoteFor(root, uuid.New())

	estimates.On("GetByID", ctx, quote.ID).Return(quote, nil)

	_, err := svc.CancelQuote(ctx, uuid.New(), quote.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestEstimateService_GetEstimate_QuotesHiddenFromStranger(t *testing.T) {
	svc, estimates, _, _ := newEstimateService()
	ctx := context.Background()

	root := rootEstimate(uuid.New())
	strangerID := uuid.New()

	estimates.On("GetByID", ctx, root.ID).Return(root, nil)
	estimates.On("GetQuoteByProvider", ctx, root.ID, strangerID).Return(nil, repository.ErrQuoteNotFound)

	got, quotes, err := svc.GetEstimate(ctx, strangerID, root.ID)
	assert.NoError(t, err)
	assert.Equal(t, root.ID, got.ID)
	assert.Nil(t, quotes)
	estimates.AssertNotCalled(t, "ListQuotes", mock.Anything, mock.Anything)
}

func TestEstimateService_GetEstimate_ProviderSeesOwnQuote(t *testing.T) {
	svc, estimates, _, _ := newEstimateService()
	ctx := context.Background()

	root := rootEstimate(uuid.New())
	providerID := uuid.New()
	own := quoteFor(root, providerID)

	estimates.On("GetByID", ctx, root.ID).Return(root, nil)
	estimates.On("GetQuoteByProvider", ctx, root.ID, providerID).Return(own, nil)

	got, quotes, err := svc.GetEstimate(ctx, providerID, root.ID)
	assert.NoError(t, err)
	assert.Equal(t, root.ID, got.ID)
	assert.Len(t, quotes, 1)
	assert.Equal(t, own.ID, quotes[0].ID)
	estimates.AssertNotCalled(t, "ListQuotes", mock.Anything, mock.Anything)
}

func TestEstimateService_ListOpenForProvider_Groomer(t *testing.T) {
	svc, estimates, _, accounts := newEstimateService()
	ctx := context.Background()

	providerID := uuid.New()
	accounts.On("GetProviderByID", ctx, providerID).Return(&models.Provider{AccountID: providerID, Role: models.RoleGroomer}, nil)
	estimates.On("ListOpenForProvider", ctx, providerID, models.ServiceTypeGrooming, 20, 0).Return([]models.Estimate{}, nil)

	_, err := svc.ListOpenForProvider(ctx, providerID, 0, 0)
	assert.NoError(t, err)
	estimates.AssertExpectations(t)
}
