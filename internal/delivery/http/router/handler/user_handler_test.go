package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"techigem/internal/delivery/http/validator"
	"techigem/internal/domain/entity"
	mockUsecase "techigem/internal/mocks/usecase"
	"techigem/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type userHandlerFixtures struct {
	handler *UserHandler
	uc      *mockUsecase.MockUserUsecase
	echo    *echo.Echo
}

func createTestUserHandler(t *testing.T) userHandlerFixtures {
	uc := mockUsecase.NewMockUserUsecase(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := echo.New()
	e.Validator = validator.New()

	return userHandlerFixtures{
		handler: NewUserHandler(uc, logger),
		uc:      uc,
		echo:    e,
	}
}

func jsonRequest(fx userHandlerFixtures, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	return fx.echo.NewContext(req, rec), rec
}

func TestUserHandler_RegisterUser(t *testing.T) {
	fx := createTestUserHandler(t)
	userID := uuid.New()

	fx.uc.On("RegisterUser", mock.Anything, mock.MatchedBy(func(input *usecase.RegisterUserInput) bool {
		return input.Email == "test@example.com" && input.Name == "Test User"
	})).Return(&usecase.RegisterOutput{
		User: &entity.User{ID: userID, Email: "test@example.com", Name: "Test User", Role: entity.RoleUser},
	}, nil)

	c, rec := jsonRequest(fx, http.MethodPost, "/api/auth/register",
		`{"name":"Test User","email":"test@example.com","password":"Password123!"}`)

	require.NoError(t, fx.handler.RegisterUser(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
}

func TestUserHandler_RegisterUser_ValidationFailure(t *testing.T) {
	fx := createTestUserHandler(t)
	// No expectation on the usecase: validation failures never reach it.

	c, _ := jsonRequest(fx, http.MethodPost, "/api/auth/register",
		`{"name":"Test User","email":"not-an-email","password":"short"}`)

	err := fx.handler.RegisterUser(c)
	require.Error(t, err)
}

func TestUserHandler_Login(t *testing.T) {
	fx := createTestUserHandler(t)
	userID := uuid.New()

	fx.uc.On("Login", mock.Anything, mock.MatchedBy(func(input *usecase.LoginInput) bool {
		return input.Email == "test@example.com"
	})).Return(&usecase.LoginOutput{
		AccessToken:  "access-jwt",
		RefreshToken: "refresh-jwt",
		User:         &entity.User{ID: userID, Email: "test@example.com"},
	}, nil)

	c, rec := jsonRequest(fx, http.MethodPost, "/api/auth/login",
		`{"email":"test@example.com","password":"Password123!"}`)

	require.NoError(t, fx.handler.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "access-jwt")
}

func TestUserHandler_RefreshToken_FromCookie(t *testing.T) {
	fx := createTestUserHandler(t)

	fx.uc.On("RefreshToken", mock.Anything, mock.MatchedBy(func(input *usecase.RefreshTokenInput) bool {
		return input.RefreshToken == "cookie-refresh-jwt"
	})).Return(&usecase.RefreshTokenOutput{AccessToken: "new-access-jwt"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "cookie-refresh-jwt"})
	rec := httptest.NewRecorder()
	c := fx.echo.NewContext(req, rec)

	require.NoError(t, fx.handler.RefreshToken(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "new-access-jwt")
}

func TestUserHandler_Logout(t *testing.T) {
	fx := createTestUserHandler(t)

	fx.uc.On("Logout", mock.Anything, mock.MatchedBy(func(input *usecase.LogoutInput) bool {
		return input.RefreshToken == "refresh-jwt"
	})).Return(nil)

	c, rec := jsonRequest(fx, http.MethodPost, "/api/auth/logout", `{"refreshToken":"refresh-jwt"}`)

	require.NoError(t, fx.handler.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserHandler_Me(t *testing.T) {
	fx := createTestUserHandler(t)
	userID := uuid.New()
	expiresAt := time.Now().Add(48 * time.Hour)

	fx.uc.On("GetProfile", mock.Anything, userID).Return(&usecase.ProfileOutput{
		User: &entity.User{
			ID:   userID,
			Name: "Alice Smith",
			Instagram: &entity.InstagramProfile{
				InstagramID:    "42",
				Username:       "alice",
				FollowersCount: 3400,
				IsBusiness:     true,
			},
		},
		SessionExpiresAt: &expiresAt,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	c := fx.echo.NewContext(req, rec)
	c.Set("userID", userID)

	require.NoError(t, fx.handler.Me(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")
	assert.Contains(t, rec.Body.String(), "3400")
}

func TestUserHandler_Me_MissingIdentity(t *testing.T) {
	fx := createTestUserHandler(t)
	// No expectation on the usecase: an unauthenticated request stops here.

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	c := fx.echo.NewContext(req, rec)

	require.NoError(t, fx.handler.Me(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
