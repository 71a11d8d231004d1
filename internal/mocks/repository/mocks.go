// Package repository provides testify mocks for the domain repository interfaces.
package repository

import (
	"context"

	"techigem/internal/domain/entity"
	"techigem/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a mock whose expectations are asserted on test cleanup.
func NewMockUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*entity.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*entity.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByInstagramID(ctx context.Context, instagramID string) (*entity.User, error) {
	args := m.Called(ctx, instagramID)
	if user, ok := args.Get(0).(*entity.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

func (m *MockUserRepository) UpsertInstagramProfile(ctx context.Context, userID uuid.UUID, profile *entity.InstagramProfile) error {
	args := m.Called(ctx, userID, profile)

	return args.Error(0)
}

// MockAuthRepository is a mock implementation of repository.AuthRepository.
type MockAuthRepository struct {
	mock.Mock
}

// NewMockAuthRepository creates a mock whose expectations are asserted on test cleanup.
func NewMockAuthRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAuthRepository {
	m := &MockAuthRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockAuthRepository) CreateAuthentication(ctx context.Context, auth *entity.Authentication) error {
	args := m.Called(ctx, auth)

	return args.Error(0)
}

func (m *MockAuthRepository) FindAuthentication(ctx context.Context, provider entity.ProviderType, providerUserID string) (*entity.Authentication, error) {
	args := m.Called(ctx, provider, providerUserID)
	if auth, ok := args.Get(0).(*entity.Authentication); ok {
		return auth, args.Error(1)
	}

	return nil, args.Error(1)
}

// MockSessionRepository is a mock implementation of repository.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

// NewMockSessionRepository creates a mock whose expectations are asserted on test cleanup.
func NewMockSessionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSessionRepository {
	m := &MockSessionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSessionRepository) UpsertSession(ctx context.Context, session *entity.AuthSession) error {
	args := m.Called(ctx, session)

	return args.Error(0)
}

func (m *MockSessionRepository) FindSessionByUserID(ctx context.Context, userID uuid.UUID) (*entity.AuthSession, error) {
	args := m.Called(ctx, userID)
	if session, ok := args.Get(0).(*entity.AuthSession); ok {
		return session, args.Error(1)
	}

	return nil, args.Error(1)
}

// MockRefreshTokenRepository is a mock implementation of repository.RefreshTokenRepository.
type MockRefreshTokenRepository struct {
	mock.Mock
}

// NewMockRefreshTokenRepository creates a mock whose expectations are asserted on test cleanup.
func NewMockRefreshTokenRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRefreshTokenRepository {
	m := &MockRefreshTokenRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockRefreshTokenRepository) CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error {
	args := m.Called(ctx, token)

	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if token, ok := args.Get(0).(*entity.RefreshToken); ok {
		return token, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockRefreshTokenRepository) DeleteRefreshTokenByHash(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)

	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)

	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpiredRefreshTokens(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockTransactionManager is a mock implementation of repository.TransactionManager.
type MockTransactionManager struct {
	mock.Mock
}

// NewMockTransactionManager creates a mock whose expectations are asserted on test cleanup.
func NewMockTransactionManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTransactionManager {
	m := &MockTransactionManager{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockTransactionManager) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	args := m.Called(ctx, fn)

	return args.Error(0)
}

// MockRepositoryFactory is a mock implementation of repository.RepositoryFactory.
type MockRepositoryFactory struct {
	mock.Mock
}

// NewMockRepositoryFactory creates a mock whose expectations are asserted on test cleanup.
func NewMockRepositoryFactory(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRepositoryFactory {
	m := &MockRepositoryFactory{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockRepositoryFactory) UserRepo() repository.UserRepository {
	args := m.Called()

	return args.Get(0).(repository.UserRepository)
}

func (m *MockRepositoryFactory) AuthRepo() repository.AuthRepository {
	args := m.Called()

	return args.Get(0).(repository.AuthRepository)
}

func (m *MockRepositoryFactory) SessionRepo() repository.SessionRepository {
	args := m.Called()

	return args.Get(0).(repository.SessionRepository)
}

func (m *MockRepositoryFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	args := m.Called()

	return args.Get(0).(repository.RefreshTokenRepository)
}
