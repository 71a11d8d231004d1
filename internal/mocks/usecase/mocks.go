// Package usecase provides hand-written testify mocks for the usecase
// interfaces consumed by the delivery layer.
package usecase

import (
	"context"

	"techigem/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockAuthUsecase is a testify mock for usecase.AuthUsecase.
type MockAuthUsecase struct {
	mock.Mock
}

func NewMockAuthUsecase(t testingT) *MockAuthUsecase {
	m := &MockAuthUsecase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockAuthUsecase) BeginLogin(ctx context.Context) (*usecase.BeginLoginOutput, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.BeginLoginOutput), args.Error(1)
}

func (m *MockAuthUsecase) Callback(ctx context.Context, input *usecase.InstagramCallbackInput) (*usecase.InstagramLoginOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.InstagramLoginOutput), args.Error(1)
}

// MockUserUsecase is a testify mock for usecase.UserUsecase.
type MockUserUsecase struct {
	mock.Mock
}

func NewMockUserUsecase(t testingT) *MockUserUsecase {
	m := &MockUserUsecase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockUserUsecase) RegisterUser(ctx context.Context, input *usecase.RegisterUserInput) (*usecase.RegisterOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.RegisterOutput), args.Error(1)
}

func (m *MockUserUsecase) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.LoginOutput), args.Error(1)
}

func (m *MockUserUsecase) RefreshToken(ctx context.Context, input *usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.RefreshTokenOutput), args.Error(1)
}

func (m *MockUserUsecase) Logout(ctx context.Context, input *usecase.LogoutInput) error {
	args := m.Called(ctx, input)

	return args.Error(0)
}

func (m *MockUserUsecase) GetProfile(ctx context.Context, userID uuid.UUID) (*usecase.ProfileOutput, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.ProfileOutput), args.Error(1)
}
