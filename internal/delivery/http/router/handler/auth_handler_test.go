package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"techigem/config"
	"techigem/internal/domain/entity"
	mockService "techigem/internal/mocks/service"
	mockUsecase "techigem/internal/mocks/usecase"
	"techigem/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authHandlerFixtures struct {
	handler  *AuthHandler
	uc       *mockUsecase.MockAuthUsecase
	tokenSvc *mockService.MockTokenService
	echo     *echo.Echo
}

func createTestAuthHandler(t *testing.T) authHandlerFixtures {
	uc := mockUsecase.NewMockAuthUsecase(t)
	tokenSvc := mockService.NewMockTokenService(t)

	cfg := &config.Config{}
	cfg.Auth = &config.AuthConfig{
		LoginPath:         "/login",
		DashboardPath:     "/dashboard",
		StateCookieMaxAge: 3600,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return authHandlerFixtures{
		handler:  NewAuthHandler(uc, tokenSvc, cfg, logger),
		uc:       uc,
		tokenSvc: tokenSvc,
		echo:     echo.New(),
	}
}

func callbackRequest(fx authHandlerFixtures, rawQuery string, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/instagram/callback?"+rawQuery, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()

	return fx.echo.NewContext(req, rec), rec
}

func stateCookie(value string) *http.Cookie {
	return &http.Cookie{Name: StateCookie, Value: value}
}

func responseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set on response", name)

	return nil
}

func TestAuthHandler_InstagramLogin(t *testing.T) {
	fx := createTestAuthHandler(t)

	fx.uc.On("BeginLogin", mock.Anything).Return(&usecase.BeginLoginOutput{
		State:            "state-123",
		AuthorizationURL: "https://www.instagram.com/oauth/authorize?client_id=id&state=state-123",
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/instagram/login", nil)
	rec := httptest.NewRecorder()
	c := fx.echo.NewContext(req, rec)

	require.NoError(t, fx.handler.InstagramLogin(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://www.instagram.com/oauth/authorize?client_id=id&state=state-123", rec.Header().Get("Location"))

	cookie := responseCookie(t, rec, StateCookie)
	assert.Equal(t, "state-123", cookie.Value)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestAuthHandler_Callback_ProviderErrorPassthrough(t *testing.T) {
	fx := createTestAuthHandler(t)
	// No expectations on the usecase: a provider denial must short-circuit
	// before anything else runs.

	q := url.Values{}
	q.Set("error", "access_denied")
	q.Set("error_reason", "user_denied")
	q.Set("error_description", "The user denied your request.")

	c, rec := callbackRequest(fx, q.Encode(), stateCookie("state-123"))

	require.NoError(t, fx.handler.InstagramCallback(c))

	assert.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", location.Path)
	assert.Equal(t, "access_denied", location.Query().Get("error"))
	assert.Equal(t, "user_denied", location.Query().Get("reason"))
	assert.Equal(t, "The user denied your request.", location.Query().Get("description"))
}

func TestAuthHandler_Callback_ConsumesStateCookie(t *testing.T) {
	fx := createTestAuthHandler(t)

	fx.uc.On("Callback", mock.Anything, mock.MatchedBy(func(input *usecase.InstagramCallbackInput) bool {
		return input.Code == "auth-code" && input.QueryState == "state-123" && input.CookieState == "state-123"
	})).Return(nil, usecase.NewFlowError(usecase.CodeTokenExchangeFailed, errors.New("boom")))

	q := url.Values{}
	q.Set("code", "auth-code")
	q.Set("state", "state-123")

	c, rec := callbackRequest(fx, q.Encode(), stateCookie("state-123"))

	require.NoError(t, fx.handler.InstagramCallback(c))

	// The state cookie is expired in the same response, even on failure.
	cookie := responseCookie(t, rec, StateCookie)
	assert.Equal(t, "", cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestAuthHandler_Callback_MissingCookie(t *testing.T) {
	fx := createTestAuthHandler(t)

	fx.uc.On("Callback", mock.Anything, mock.MatchedBy(func(input *usecase.InstagramCallbackInput) bool {
		return input.CookieState == ""
	})).Return(nil, usecase.NewFlowError(usecase.CodeInvalidState, errors.New("state cookie missing")))

	q := url.Values{}
	q.Set("code", "auth-code")
	q.Set("state", "state-123")

	c, rec := callbackRequest(fx, q.Encode())

	require.NoError(t, fx.handler.InstagramCallback(c))

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", location.Path)
	assert.Equal(t, "invalid_state", location.Query().Get("error"))
}

func TestAuthHandler_Callback_FlowErrorWithDescription(t *testing.T) {
	fx := createTestAuthHandler(t)

	fx.uc.On("Callback", mock.Anything, mock.Anything).Return(nil, &usecase.FlowError{
		Code:        usecase.CodeTokenExchangeFailed,
		Description: `{"error_type":"OAuthException","error_message":"Invalid authorization code"}`,
		Err:         errors.New("token exchange failed"),
	})

	q := url.Values{}
	q.Set("code", "bad-code")
	q.Set("state", "state-123")

	c, rec := callbackRequest(fx, q.Encode(), stateCookie("state-123"))

	require.NoError(t, fx.handler.InstagramCallback(c))

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "token_exchange_failed", location.Query().Get("error"))
	assert.Equal(t, `{"error_type":"OAuthException","error_message":"Invalid authorization code"}`, location.Query().Get("description"))
}

func TestAuthHandler_Callback_UnclassifiedErrorStillRedirects(t *testing.T) {
	fx := createTestAuthHandler(t)

	fx.uc.On("Callback", mock.Anything, mock.Anything).Return(nil, errors.New("something unexpected"))

	q := url.Values{}
	q.Set("code", "auth-code")
	q.Set("state", "state-123")

	c, rec := callbackRequest(fx, q.Encode(), stateCookie("state-123"))

	require.NoError(t, fx.handler.InstagramCallback(c))

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", location.Path)
	assert.Equal(t, "unknown", location.Query().Get("error"))
}

func TestAuthHandler_Callback_Success(t *testing.T) {
	fx := createTestAuthHandler(t)
	userID := uuid.New()

	fx.uc.On("Callback", mock.Anything, mock.Anything).Return(&usecase.InstagramLoginOutput{
		User:         &entity.User{ID: userID, Email: "alice@instagram.user"},
		AccessToken:  "access-jwt",
		RefreshToken: "refresh-jwt",
		NewUser:      true,
	}, nil)
	fx.tokenSvc.On("GetAccessTokenDuration").Return(15 * time.Minute)
	fx.tokenSvc.On("GetRefreshTokenDuration").Return(7 * 24 * time.Hour)

	q := url.Values{}
	q.Set("code", "auth-code")
	q.Set("state", "state-123")

	c, rec := callbackRequest(fx, q.Encode(), stateCookie("state-123"))

	require.NoError(t, fx.handler.InstagramCallback(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	access := responseCookie(t, rec, "access_token")
	assert.Equal(t, "access-jwt", access.Value)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, int((15 * time.Minute).Seconds()), access.MaxAge)

	refresh := responseCookie(t, rec, RefreshTokenCookie)
	assert.Equal(t, "refresh-jwt", refresh.Value)
	assert.True(t, refresh.HttpOnly)
}

func TestAuthHandler_Callback_NextTarget(t *testing.T) {
	tests := []struct {
		name string
		next string
		want string
	}{
		{name: "relative path honored", next: "/settings", want: "/settings"},
		{name: "absolute URL rejected", next: "https://evil.example/phish", want: "/dashboard"},
		{name: "protocol-relative rejected", next: "//evil.example", want: "/dashboard"},
		{name: "empty falls back", next: "", want: "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestAuthHandler(t)

			fx.uc.On("Callback", mock.Anything, mock.Anything).Return(&usecase.InstagramLoginOutput{
				User:         &entity.User{ID: uuid.New()},
				AccessToken:  "access-jwt",
				RefreshToken: "refresh-jwt",
			}, nil)
			fx.tokenSvc.On("GetAccessTokenDuration").Return(15 * time.Minute)
			fx.tokenSvc.On("GetRefreshTokenDuration").Return(7 * 24 * time.Hour)

			q := url.Values{}
			q.Set("code", "auth-code")
			q.Set("state", "state-123")
			if tt.next != "" {
				q.Set("next", tt.next)
			}

			c, rec := callbackRequest(fx, q.Encode(), stateCookie("state-123"))

			require.NoError(t, fx.handler.InstagramCallback(c))
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
		})
	}
}
