// Package service provides testify mocks for the domain service interfaces.
package service

import (
	"context"
	"time"

	"techigem/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOAuthService is a mock implementation of service.OAuthService.
type MockOAuthService struct {
	mock.Mock
}

// NewMockOAuthService creates a mock whose expectations are asserted on test cleanup.
func NewMockOAuthService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockOAuthService {
	m := &MockOAuthService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockOAuthService) BuildAuthorizationURL(state string) string {
	args := m.Called(state)

	return args.String(0)
}

func (m *MockOAuthService) ExchangeCode(ctx context.Context, code string) (*service.ShortLivedToken, error) {
	args := m.Called(ctx, code)
	if token, ok := args.Get(0).(*service.ShortLivedToken); ok {
		return token, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockOAuthService) ExchangeLongLivedToken(ctx context.Context, shortLivedToken string) (*service.LongLivedToken, error) {
	args := m.Called(ctx, shortLivedToken)
	if token, ok := args.Get(0).(*service.LongLivedToken); ok {
		return token, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockOAuthService) FetchProfile(ctx context.Context, accessToken string) (*service.InstagramProfile, error) {
	args := m.Called(ctx, accessToken)
	if profile, ok := args.Get(0).(*service.InstagramProfile); ok {
		return profile, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockOAuthService) Scopes() []string {
	args := m.Called()

	return args.Get(0).([]string)
}

func (m *MockOAuthService) Provider() string {
	args := m.Called()

	return args.String(0)
}

// MockTokenService is a mock implementation of service.TokenService.
type MockTokenService struct {
	mock.Mock
}

// NewMockTokenService creates a mock whose expectations are asserted on test cleanup.
func NewMockTokenService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTokenService {
	m := &MockTokenService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockTokenService) GenerateTokens(userID uuid.UUID, roles []string) (string, string, error) {
	args := m.Called(userID, roles)

	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockTokenService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(*service.Claims); ok {
		return claims, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockTokenService) HashToken(token string) string {
	args := m.Called(token)

	return args.String(0)
}

func (m *MockTokenService) GetAccessTokenDuration() time.Duration {
	args := m.Called()

	return args.Get(0).(time.Duration)
}

func (m *MockTokenService) GetRefreshTokenDuration() time.Duration {
	args := m.Called()

	return args.Get(0).(time.Duration)
}

// MockPasswordHasher is a mock implementation of service.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock whose expectations are asserted on test cleanup.
func NewMockPasswordHasher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Check(password, hash string) bool {
	args := m.Called(password, hash)

	return args.Bool(0)
}

// MockEventPublisher is a mock implementation of service.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

// NewMockEventPublisher creates a mock whose expectations are asserted on test cleanup.
func NewMockEventPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEventPublisher {
	m := &MockEventPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockEventPublisher) PublishLoginEvent(ctx context.Context, event *service.LoginEvent) error {
	args := m.Called(ctx, event)

	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()

	return args.Error(0)
}
