package impl

import (
	"context"
	"testing"
	"time"

	"techigem/internal/domain/entity"
	domainerrors "techigem/internal/domain/errors"
	"techigem/internal/domain/repository"
	mockRepo "techigem/internal/mocks/repository"
	mockSvc "techigem/internal/mocks/service"
	"techigem/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// userServiceFixtures holds all test dependencies for user service tests.
type userServiceFixtures struct {
	service          usecase.UserUsecase
	txManager        *mockRepo.MockTransactionManager
	userRepo         *mockRepo.MockUserRepository
	sessionRepo      *mockRepo.MockSessionRepository
	refreshTokenRepo *mockRepo.MockRefreshTokenRepository
	hasher           *mockSvc.MockPasswordHasher
	tokenService     *mockSvc.MockTokenService
}

func createTestUserService(t *testing.T) userServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	sessionRepo := mockRepo.NewMockSessionRepository(t)
	refreshTokenRepo := mockRepo.NewMockRefreshTokenRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)

	svc := NewUserService(UserServiceParams{
		TxManager:        txManager,
		UserRepo:         userRepo,
		SessionRepo:      sessionRepo,
		RefreshTokenRepo: refreshTokenRepo,
		Hasher:           hasher,
		TokenService:     tokenService,
		Logger:           newDiscardLogger(),
	})

	return userServiceFixtures{
		service:          svc,
		txManager:        txManager,
		userRepo:         userRepo,
		sessionRepo:      sessionRepo,
		refreshTokenRepo: refreshTokenRepo,
		hasher:           hasher,
		tokenService:     tokenService,
	}
}

func TestUserService_RegisterUser_Success(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	input := &usecase.RegisterUserInput{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "Password123!",
	}

	fx.hasher.On("Hash", input.Password).Return("hashed_password", nil)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(args mock.Arguments) {
			fn := args.Get(1).(func(repository.RepositoryFactory) error)

			factory := mockRepo.NewMockRepositoryFactory(t)
			txUserRepo := mockRepo.NewMockUserRepository(t)
			txAuthRepo := mockRepo.NewMockAuthRepository(t)

			factory.On("UserRepo").Return(txUserRepo)
			factory.On("AuthRepo").Return(txAuthRepo)

			txAuthRepo.On("FindAuthentication", ctx, entity.ProviderTypeEmail, input.Email).
				Return(nil, repository.ErrAuthNotFound)
			txUserRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).
				Run(func(args mock.Arguments) { args.Get(1).(*entity.User).ID = uuid.New() }).
				Return(nil)
			txAuthRepo.On("CreateAuthentication", ctx, mock.MatchedBy(func(auth *entity.Authentication) bool {
				return auth.Provider == entity.ProviderTypeEmail && auth.PasswordHash == "hashed_password"
			})).Return(nil)

			require.NoError(t, fn(factory))
		}).
		Return(nil)

	output, err := fx.service.RegisterUser(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, input.Email, output.User.Email)
	assert.Equal(t, entity.RoleUser, output.User.Role)
}

func TestUserService_RegisterUser_EmailTaken(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	input := &usecase.RegisterUserInput{
		Name:     "Test User",
		Email:    "taken@example.com",
		Password: "Password123!",
	}

	fx.hasher.On("Hash", input.Password).Return("hashed_password", nil)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Return(domainerrors.ErrUserAlreadyExists.WrapMessage("email already registered"))

	_, err := fx.service.RegisterUser(ctx, input)

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestUserService_Login_Success(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	authRecord := &entity.Authentication{
		UserID:         userID,
		Provider:       entity.ProviderTypeEmail,
		ProviderUserID: "test@example.com",
		PasswordHash:   "stored-hash",
	}

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(args mock.Arguments) {
			fn := args.Get(1).(func(repository.RepositoryFactory) error)

			factory := mockRepo.NewMockRepositoryFactory(t)
			txAuthRepo := mockRepo.NewMockAuthRepository(t)

			factory.On("AuthRepo").Return(txAuthRepo)
			txAuthRepo.On("FindAuthentication", ctx, entity.ProviderTypeEmail, "test@example.com").
				Return(authRecord, nil)

			require.NoError(t, fn(factory))
		}).
		Return(nil)

	fx.hasher.On("Check", "Password123!", "stored-hash").Return(true)
	fx.userRepo.On("FindByID", ctx, userID).
		Return(&entity.User{ID: userID, Email: "test@example.com", Role: entity.RoleUser}, nil)
	fx.tokenService.On("GenerateTokens", userID, []string{"user"}).Return("access-jwt", "refresh-jwt", nil)
	fx.tokenService.On("HashToken", "refresh-jwt").Return("refresh-hash")
	fx.tokenService.On("GetRefreshTokenDuration").Return(7 * 24 * time.Hour)
	fx.refreshTokenRepo.On("CreateRefreshToken", ctx, mock.MatchedBy(func(rt *entity.RefreshToken) bool {
		return rt.UserID == userID && rt.TokenHash == "refresh-hash"
	})).Return(nil)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "test@example.com", Password: "Password123!"})

	require.NoError(t, err)
	assert.Equal(t, "access-jwt", output.AccessToken)
	assert.Equal(t, "refresh-jwt", output.RefreshToken)
	assert.Equal(t, userID, output.User.ID)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	authRecord := &entity.Authentication{
		UserID:       uuid.New(),
		PasswordHash: "stored-hash",
	}

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(args mock.Arguments) {
			fn := args.Get(1).(func(repository.RepositoryFactory) error)

			factory := mockRepo.NewMockRepositoryFactory(t)
			txAuthRepo := mockRepo.NewMockAuthRepository(t)

			factory.On("AuthRepo").Return(txAuthRepo)
			txAuthRepo.On("FindAuthentication", ctx, entity.ProviderTypeEmail, "test@example.com").
				Return(authRecord, nil)

			require.NoError(t, fn(factory))
		}).
		Return(nil)

	fx.hasher.On("Check", "wrong", "stored-hash").Return(false)

	_, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "test@example.com", Password: "wrong"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestUserService_RefreshToken_Success(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	fx.tokenService.On("HashToken", "refresh-jwt").Return("refresh-hash")
	fx.refreshTokenRepo.On("FindRefreshTokenByHash", ctx, "refresh-hash").
		Return(&entity.RefreshToken{UserID: userID, TokenHash: "refresh-hash", ExpiresAt: time.Now().Add(time.Hour)}, nil)
	fx.userRepo.On("FindByID", ctx, userID).
		Return(&entity.User{ID: userID, Role: entity.RoleUser}, nil)
	fx.tokenService.On("GenerateTokens", userID, []string{"user"}).Return("new-access-jwt", "unused-refresh", nil)

	output, err := fx.service.RefreshToken(ctx, &usecase.RefreshTokenInput{RefreshToken: "refresh-jwt"})

	require.NoError(t, err)
	assert.Equal(t, "new-access-jwt", output.AccessToken)
}

func TestUserService_RefreshToken_Expired(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.tokenService.On("HashToken", "stale-jwt").Return("stale-hash")
	fx.refreshTokenRepo.On("FindRefreshTokenByHash", ctx, "stale-hash").
		Return(nil, repository.ErrRefreshTokenExpired)

	_, err := fx.service.RefreshToken(ctx, &usecase.RefreshTokenInput{RefreshToken: "stale-jwt"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
}

func TestUserService_Logout(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.tokenService.On("HashToken", "refresh-jwt").Return("refresh-hash")
	fx.refreshTokenRepo.On("DeleteRefreshTokenByHash", ctx, "refresh-hash").Return(nil)

	assert.NoError(t, fx.service.Logout(ctx, &usecase.LogoutInput{RefreshToken: "refresh-jwt"}))
}

func TestUserService_Logout_UnknownTokenIsNotAnError(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.tokenService.On("HashToken", "ghost-jwt").Return("ghost-hash")
	fx.refreshTokenRepo.On("DeleteRefreshTokenByHash", ctx, "ghost-hash").
		Return(repository.ErrRefreshTokenNotFound)

	assert.NoError(t, fx.service.Logout(ctx, &usecase.LogoutInput{RefreshToken: "ghost-jwt"}))
}

func TestUserService_GetProfile_WithSession(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	expiresAt := time.Now().Add(48 * time.Hour)

	fx.userRepo.On("FindByID", ctx, userID).
		Return(&entity.User{
			ID:   userID,
			Role: entity.RoleUser,
			Instagram: &entity.InstagramProfile{
				InstagramID:    "42",
				Username:       "alice",
				FollowersCount: 3400,
			},
		}, nil)
	fx.sessionRepo.On("FindSessionByUserID", ctx, userID).
		Return(&entity.AuthSession{UserID: userID, AccessToken: "long", ExpiresAt: expiresAt}, nil)

	output, err := fx.service.GetProfile(ctx, userID)

	require.NoError(t, err)
	require.NotNil(t, output.User.Instagram)
	assert.Equal(t, 3400, output.User.Instagram.FollowersCount)
	require.NotNil(t, output.SessionExpiresAt)
	assert.WithinDuration(t, expiresAt, *output.SessionExpiresAt, time.Second)
}

func TestUserService_GetProfile_NoSession(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	fx.userRepo.On("FindByID", ctx, userID).
		Return(&entity.User{ID: userID, Role: entity.RoleUser}, nil)
	fx.sessionRepo.On("FindSessionByUserID", ctx, userID).
		Return(nil, repository.ErrSessionNotFound)

	output, err := fx.service.GetProfile(ctx, userID)

	require.NoError(t, err)
	assert.Nil(t, output.SessionExpiresAt)
}

func TestUserService_GetProfile_UserNotFound(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	fx.userRepo.On("FindByID", ctx, userID).Return(nil, repository.ErrUserNotFound)

	_, err := fx.service.GetProfile(ctx, userID)

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}
