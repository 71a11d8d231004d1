// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"techigem/config"
	deliverycontext "techigem/internal/delivery/context"
	"techigem/internal/domain/service"
	"techigem/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// StateCookie carries the CSRF state between login initiation and the
// provider callback. Single use: the callback consumes and expires it.
const StateCookie = "instagram_auth_state"

// RefreshTokenCookie is where the callback stores the refresh token for
// browser clients.
const RefreshTokenCookie = "refresh_token"

// AuthHandler drives the Instagram OAuth login flow over HTTP: initiation,
// the provider callback, and the redirects both terminate in.
type AuthHandler struct {
	uc       usecase.AuthUsecase
	tokenSvc service.TokenService
	cfg      *config.Config
	logger   *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, tokenSvc service.TokenService, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		uc:       uc,
		tokenSvc: tokenSvc,
		cfg:      cfg,
		logger:   logger,
	}
}

// InstagramLogin starts the authorization-code flow: a fresh CSRF state goes
// into the state cookie and the browser is sent to the provider's consent
// page carrying the same state.
func (h *AuthHandler) InstagramLogin(c echo.Context) error {
	output, err := h.uc.BeginLogin(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(&http.Cookie{
		Name:     StateCookie,
		Value:    output.State,
		Path:     "/",
		MaxAge:   h.cfg.Auth.StateCookieMaxAge,
		HttpOnly: true,
		Secure:   h.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusFound, output.AuthorizationURL)
}

// InstagramCallback handles the provider redirect. A provider denial is
// forwarded to the login page verbatim before anything else runs; otherwise
// the state cookie is consumed and the whole exchange-upgrade-fetch-upsert
// flow executes in this one request. Every outcome is a 302: failures to the
// login page with a stable error code, success to the requested page.
func (h *AuthHandler) InstagramCallback(c echo.Context) error {
	if providerErr := c.QueryParam("error"); providerErr != "" {
		q := url.Values{}
		q.Set("error", providerErr)
		if reason := c.QueryParam("error_reason"); reason != "" {
			q.Set("reason", reason)
		}
		if description := c.QueryParam("error_description"); description != "" {
			q.Set("description", description)
		}

		return c.Redirect(http.StatusFound, h.cfg.Auth.LoginPath+"?"+q.Encode())
	}

	input := &usecase.InstagramCallbackInput{
		Code:        c.QueryParam("code"),
		QueryState:  c.QueryParam("state"),
		CookieState: h.consumeStateCookie(c),
		RequestID:   deliverycontext.GetRequestID(c),
	}

	output, err := h.uc.Callback(c.Request().Context(), input)
	if err != nil {
		return h.redirectFlowError(c, err)
	}

	h.setAuthCookies(c, output.AccessToken, output.RefreshToken)

	return c.Redirect(http.StatusFound, h.nextTarget(c))
}

// consumeStateCookie reads the CSRF state and expires the cookie in the same
// response, so a replayed callback fails state validation.
func (h *AuthHandler) consumeStateCookie(c echo.Context) string {
	cookie, err := c.Cookie(StateCookie)
	if err != nil {
		return ""
	}

	c.SetCookie(&http.Cookie{
		Name:     StateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	return cookie.Value
}

// redirectFlowError maps a callback failure onto the login page redirect.
// FlowCode falls back to "unknown", so even an unclassified error still
// terminates in a redirect rather than an error page.
func (h *AuthHandler) redirectFlowError(c echo.Context, err error) error {
	q := url.Values{}
	q.Set("error", usecase.FlowCode(err))

	var flowErr *usecase.FlowError
	if errors.As(err, &flowErr) && flowErr.Description != "" {
		q.Set("description", flowErr.Description)
	}

	h.logger.Warn("Instagram callback failed",
		slog.String("code", usecase.FlowCode(err)),
		slog.String("request_id", deliverycontext.GetRequestID(c)),
		slog.Any("error", err),
	)

	return c.Redirect(http.StatusFound, h.cfg.Auth.LoginPath+"?"+q.Encode())
}

func (h *AuthHandler) setAuthCookies(c echo.Context, accessToken, refreshToken string) {
	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(h.tokenSvc.GetAccessTokenDuration().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(h.tokenSvc.GetRefreshTokenDuration().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// nextTarget resolves the post-login destination. Only same-site paths are
// honored; anything else falls back to the dashboard.
func (h *AuthHandler) nextTarget(c echo.Context) string {
	next := c.QueryParam("next")
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return h.cfg.Auth.DashboardPath
	}

	return next
}
