package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"techigem/internal/domain/service"
	mockService "techigem/internal/mocks/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAuthenticate(t *testing.T, tokenSvc service.TokenService, configure func(*http.Request)) (echo.Context, *httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	if configure != nil {
		configure(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := NewAuthMiddleware(tokenSvc).Authenticate(next)(c)

	return c, rec, err
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	tokenSvc := mockService.NewMockTokenService(t)
	userID := uuid.New()

	tokenSvc.On("ValidateToken", "valid-jwt").Return(&service.Claims{
		UserID: userID,
		Roles:  []string{"user"},
	}, nil)

	c, rec, err := runAuthenticate(t, tokenSvc, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer valid-jwt")
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, c.Get("userID"))
	assert.Equal(t, []string{"user"}, c.Get("roles"))
}

func TestAuthMiddleware_CookieToken(t *testing.T) {
	tokenSvc := mockService.NewMockTokenService(t)
	userID := uuid.New()

	tokenSvc.On("ValidateToken", "cookie-jwt").Return(&service.Claims{
		UserID: userID,
		Roles:  []string{"user"},
	}, nil)

	_, rec, err := runAuthenticate(t, tokenSvc, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie-jwt"})
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	tokenSvc := mockService.NewMockTokenService(t)

	_, rec, err := runAuthenticate(t, tokenSvc, nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	tokenSvc := mockService.NewMockTokenService(t)

	_, rec, err := runAuthenticate(t, tokenSvc, func(req *http.Request) {
		req.Header.Set("Authorization", "Token not-a-bearer")
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	tokenSvc := mockService.NewMockTokenService(t)

	tokenSvc.On("ValidateToken", "expired-jwt").Return(nil, errors.New("token has expired"))

	_, rec, err := runAuthenticate(t, tokenSvc, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer expired-jwt")
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
