package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/daengle/petcare-backend/internal/models"
	"github.com/daengle/petcare-backend/internal/pkg/apperror"
	"github.com/daengle/petcare-backend/internal/repository"
)

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	if args.Error(0) == nil {
		account.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if acc := args.Get(0); acc != nil {
		return acc.(*models.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if acc := args.Get(0); acc != nil {
		return acc.(*models.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepo) UpdateLastLogin(ctx context.Context, accountID uuid.UUID) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *mockAccountRepo) CreateProvider(ctx context.Context, provider *models.Provider) error {
	args := m.Called(ctx, provider)
	return args.Error(0)
}

func (m *mockAccountRepo) GetProviderByID(ctx context.Context, accountID uuid.UUID) (*models.Provider, error) {
	args := m.Called(ctx, accountID)
	if p := args.Get(0); p != nil {
		return p.(*models.Provider), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepo) CreateSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockAccountRepo) GetSessionByToken(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	if s := args.Get(0); s != nil {
		return s.(*models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepo) DeleteSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func newAuthService(repo *mockAccountRepo) *AuthService {
	tokens := NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 720*time.Hour)
	return NewAuthService(repo, tokens)
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Email:    "owner@example.com",
		Username: "pet_owner",
		Password: "secret-password",
		Role:     models.RoleUser,
	}
}

func TestAuthService_Register_User(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newAuthService(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Account")).Return(nil)

	account, err := svc.Register(context.Background(), validRegisterInput())

	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", account.Email)
	assert.Equal(t, models.RoleUser, account.Role)
	assert.NotEqual(t, "secret-password", account.PasswordHash)
	repo.AssertNotCalled(t, "CreateProvider", mock.Anything, mock.Anything)
}

func TestAuthService_Register_VetCreatesProvider(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newAuthService(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Account")).Return(nil)
	repo.On("CreateProvider", mock.Anything, mock.MatchedBy(func(p *models.Provider) bool {
		return p.Role == models.RoleVet && p.Name == "Клиника Дэнгл"
	})).Return(nil)

	input := validRegisterInput()
	input.Role = models.RoleVet
	input.ProviderName = "Клиника Дэнгл"
	input.Address = "Сеул, Каннам"

	account, err := svc.Register(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, models.RoleVet, account.Role)
	repo.AssertExpectations(t)
}

func TestAuthService_Register_VetWithoutNameFails(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newAuthService(repo)

	input := validRegisterInput()
	input.Role = models.RoleGroomer

	_, err := svc.Register(context.Background(), input)

	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newAuthService(repo)

	input := validRegisterInput()
	input.Password = "short"

	_, err := svc.Register(context.Background(), input)

	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newAuthService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrEmailTaken)

	_, err := svc.Register(context.Background(), validRegisterInput())

	assert.True(t, apperror.IsConflict(err))
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newAuthService(repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	require.NoError(t, err)

	account := &models.Account{
		ID:           uuid.New(),
		Email:        "owner@example.com",
		Role:         models.RoleUser,
		PasswordHash: string(hash),
	}

	repo.On("GetByEmail", mock.Anything, "owner@example.com").Return(account, nil)
	repo.On("CreateSession", mock.Anything, mock.AnythingOfType("*models.Session")).Return(nil)
	repo.On("UpdateLastLogin", mock.Anything, account.ID).Return(nil)

	got, pair, err := svc.Login(context.Background(), "Owner@Example.com", "secret-password", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newAuthService(repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	require.NoError(t, err)

	account := &models.Account{ID: uuid.New(), Email: "owner@example.com", PasswordHash: string(hash)}
	repo.On("GetByEmail", mock.Anything, "owner@example.com").Return(account, nil)

	_, _, err = svc.Login(context.Background(), "owner@example.com", "wrong-password", nil, nil)

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	repo.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newAuthService(repo)

	repo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrAccountNotFound)

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever123", nil, nil)

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_Refresh_ExpiredSession(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newAuthService(repo)

	account := &models.Account{ID: uuid.New(), Role: models.RoleUser}
	pair, _, _, err := svc.tokens.GeneratePair(account)
	require.NoError(t, err)

	session := &models.Session{
		AccountID:    account.ID,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    time.Now().Add(-time.Hour),
	}
	repo.On("GetSessionByToken", mock.Anything, pair.RefreshToken).Return(session, nil)
	repo.On("DeleteSession", mock.Anything, pair.RefreshToken).Return(nil)

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestAuthService_Refresh_RotatesSession(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newAuthService(repo)

	account := &models.Account{ID: uuid.New(), Role: models.RoleUser}
	pair, _, _, err := svc.tokens.GeneratePair(account)
	require.NoError(t, err)

	session := &models.Session{
		AccountID:    account.ID,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	repo.On("GetSessionByToken", mock.Anything, pair.RefreshToken).Return(session, nil)
	repo.On("GetByID", mock.Anything, account.ID).Return(account, nil)
	repo.On("DeleteSession", mock.Anything, pair.RefreshToken).Return(nil)
	repo.On("CreateSession", mock.Anything, mock.AnythingOfType("*models.Session")).Return(nil)

	newPair, err := svc.Refresh(context.Background(), pair.RefreshToken)

	require.NoError(t, err)
	assert.NotEmpty(t, newPair.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Logout_MissingSessionIsIdempotent(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newAuthService(repo)

	repo.On("DeleteSession", mock.Anything, "unknown-token").Return(repository.ErrSessionNotFound)

	assert.NoError(t, svc.Logout(context.Background(), "unknown-token"))
}
