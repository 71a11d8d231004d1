// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "techigem/internal/delivery/context"
	"techigem/internal/domain/entity"
	"techigem/internal/domain/repository"
	"techigem/internal/domain/service"
	"techigem/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface: the server side of the
// Instagram authorization-code flow.
type authService struct {
	userRepo         repository.UserRepository
	authRepo         repository.AuthRepository
	sessionRepo      repository.SessionRepository
	refreshTokenRepo repository.RefreshTokenRepository
	oauthService     service.OAuthService
	tokenService     service.TokenService
	publisher        service.EventPublisher
	logger           *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo         repository.UserRepository
	AuthRepo         repository.AuthRepository
	SessionRepo      repository.SessionRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	OAuthService     service.OAuthService
	TokenService     service.TokenService
	Publisher        service.EventPublisher
	Logger           *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo:         params.UserRepo,
		authRepo:         params.AuthRepo,
		sessionRepo:      params.SessionRepo,
		refreshTokenRepo: params.RefreshTokenRepo,
		oauthService:     params.OAuthService,
		tokenService:     params.TokenService,
		publisher:        params.Publisher,
		logger:           params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// BeginLogin generates a fresh CSRF state and the provider authorization URL.
func (srv *authService) BeginLogin(ctx context.Context) (*usecase.BeginLoginOutput, error) {
	state := uuid.New().String()

	srv.log(ctx).Debug("Starting Instagram login", slog.String("provider", srv.oauthService.Provider()))

	return &usecase.BeginLoginOutput{
		State:            state,
		AuthorizationURL: srv.oauthService.BuildAuthorizationURL(state),
	}, nil
}

// Callback runs the post-redirect login flow. The steps are strictly
// sequential; each failure maps to its stable redirect code via FlowError.
// Store writes are intentionally not wrapped in one transaction: each step is
// independently fallible and reported under its own code, and the whole flow
// is idempotent per user, so a partial failure is repaired by the next login.
func (srv *authService) Callback(ctx context.Context, input *usecase.InstagramCallbackInput) (*usecase.InstagramLoginOutput, error) {
	// State validation. Nothing may reach the provider on a mismatch.
	if input.QueryState == "" || input.CookieState == "" || input.QueryState != input.CookieState {
		srv.log(ctx).Warn("OAuth state validation failed",
			slog.Bool("query_state_present", input.QueryState != ""),
			slog.Bool("cookie_state_present", input.CookieState != ""),
		)

		return nil, usecase.NewFlowError(usecase.CodeInvalidState, errors.New("state mismatch or missing"))
	}

	if input.Code == "" {
		return nil, usecase.NewFlowError(usecase.CodeInvalidRequest, errors.New("authorization code missing"))
	}

	// Code exchange: authorization code for a short-lived token.
	shortToken, err := srv.oauthService.ExchangeCode(ctx, input.Code)
	if err != nil {
		srv.log(ctx).Error("Token exchange failed", slog.Any("error", err))

		return nil, flowErrorWithUpstream(usecase.CodeTokenExchangeFailed, err)
	}

	// Upgrade to the ~60 day long-lived token.
	longToken, err := srv.oauthService.ExchangeLongLivedToken(ctx, shortToken.AccessToken)
	if err != nil {
		srv.log(ctx).Error("Token upgrade failed", slog.Any("error", err))

		return nil, flowErrorWithUpstream(usecase.CodeTokenUpgradeFailed, err)
	}

	// Fetch the account profile. No store mutation has happened up to here.
	profile, err := srv.oauthService.FetchProfile(ctx, longToken.AccessToken)
	if err != nil {
		srv.log(ctx).Error("Profile fetch failed", slog.Any("error", err))

		return nil, flowErrorWithUpstream(usecase.CodeProfileFetchFailed, err)
	}

	if profile.ID == "" || profile.Username == "" {
		srv.log(ctx).Error("Provider returned incomplete profile")

		return nil, usecase.NewFlowError(usecase.CodeNoUserData, errors.New("profile missing id or username"))
	}

	// Reconcile the provider account against the local user store.
	igProfile := toInstagramProfileEntity(profile, time.Now())
	user, newUser, err := srv.findOrCreateInstagramUser(ctx, profile, igProfile)
	if err != nil {
		return nil, err
	}

	// Mirror the profile onto the user row.
	if err := srv.userRepo.UpsertInstagramProfile(ctx, user.ID, igProfile); err != nil {
		srv.log(ctx).Error("Profile upsert failed", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, usecase.NewFlowError(usecase.CodeProfileUpdateFailed, err)
	}
	user.Instagram = igProfile

	// Persist the provider credential, one row per user.
	session := &entity.AuthSession{
		UserID:      user.ID,
		AccessToken: longToken.AccessToken,
		TokenType:   longToken.TokenType,
		ExpiresAt:   time.Now().Add(time.Duration(longToken.ExpiresIn) * time.Second),
		Scope:       srv.oauthService.Scopes(),
	}
	if err := srv.sessionRepo.UpsertSession(ctx, session); err != nil {
		srv.log(ctx).Error("Session upsert failed", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, usecase.NewFlowError(usecase.CodeSessionStorageFailed, err)
	}

	// Sign the user in with a first-class token pair.
	accessToken, refreshToken, err := srv.signIn(ctx, user)
	if err != nil {
		srv.log(ctx).Error("Sign-in failed", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, usecase.NewFlowError(usecase.CodeSignInFailed, err)
	}

	srv.publishLoginEvent(ctx, input.RequestID, user, profile, newUser)

	srv.log(ctx).Info("Instagram login completed",
		slog.Any("userID", user.ID),
		slog.Bool("new_user", newUser),
	)

	return &usecase.InstagramLoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		NewUser:      newUser,
	}, nil
}

// findOrCreateInstagramUser resolves the provider account to a local user,
// creating the user and its auth record on first login.
func (srv *authService) findOrCreateInstagramUser(ctx context.Context, profile *service.InstagramProfile, igProfile *entity.InstagramProfile) (*entity.User, bool, error) {
	authRecord, err := srv.authRepo.FindAuthentication(ctx, entity.ProviderTypeInstagram, profile.ID)
	if err != nil && !errors.Is(err, repository.ErrAuthNotFound) {
		return nil, false, usecase.NewFlowError(usecase.CodeUserCreationFailed, errors.Wrap(err, "failed to look up instagram authentication"))
	}

	if err == nil {
		user, findErr := srv.userRepo.FindByID(ctx, authRecord.UserID)
		if findErr != nil {
			return nil, false, usecase.NewFlowError(usecase.CodeUserCreationFailed, errors.Wrap(findErr, "failed to load linked user"))
		}

		return user, false, nil
	}

	// A user row may already carry this instagram id when a previous login
	// failed between user creation and the auth record insert. Reusing it
	// keeps the one-user-per-instagram-id invariant instead of tripping the
	// unique index.
	existing, findErr := srv.userRepo.FindByInstagramID(ctx, profile.ID)
	if findErr != nil && !errors.Is(findErr, repository.ErrUserNotFound) {
		return nil, false, usecase.NewFlowError(usecase.CodeUserCreationFailed, errors.Wrap(findErr, "failed to look up user by instagram id"))
	}

	user := existing
	newUser := false
	if user == nil {
		srv.log(ctx).Info("Instagram account not linked, creating user", slog.String("username", profile.Username))

		// The new row must carry the instagram id from the start. If the
		// auth record insert below fails, the next login can only find
		// this row again through FindByInstagramID.
		user = &entity.User{
			Name:      displayName(profile),
			Email:     entity.SyntheticEmail(profile.Username),
			Role:      entity.RoleUser,
			Instagram: igProfile,
		}
		if createErr := srv.userRepo.Create(ctx, user); createErr != nil {
			return nil, false, usecase.NewFlowError(usecase.CodeUserCreationFailed, errors.Wrap(createErr, "failed to create user for instagram login"))
		}
		newUser = true
	}

	newAuth := &entity.Authentication{
		UserID:         user.ID,
		Provider:       entity.ProviderTypeInstagram,
		ProviderUserID: profile.ID,
	}
	if createErr := srv.authRepo.CreateAuthentication(ctx, newAuth); createErr != nil {
		return nil, false, usecase.NewFlowError(usecase.CodeUserRecordCreationFailed, errors.Wrap(createErr, "failed to create instagram authentication"))
	}

	return user, newUser, nil
}

// signIn issues a token pair and persists the refresh token hash.
func (srv *authService) signIn(ctx context.Context, user *entity.User) (string, string, error) {
	roles := entity.Roles{user.Role}

	accessToken, refreshToken, err := srv.tokenService.GenerateTokens(user.ID, roles.ToStrings())
	if err != nil {
		return "", "", errors.Wrap(err, "failed to generate tokens")
	}

	newRefreshToken := &entity.RefreshToken{
		UserID:    user.ID,
		TokenHash: srv.tokenService.HashToken(refreshToken),
		ExpiresAt: time.Now().Add(srv.tokenService.GetRefreshTokenDuration()),
	}
	if err := srv.refreshTokenRepo.CreateRefreshToken(ctx, newRefreshToken); err != nil {
		return "", "", errors.Wrap(err, "failed to store refresh token")
	}

	return accessToken, refreshToken, nil
}

// publishLoginEvent emits the login event best-effort. A publish failure is
// logged and swallowed; it must never fail the login itself.
func (srv *authService) publishLoginEvent(ctx context.Context, requestID string, user *entity.User, profile *service.InstagramProfile, newUser bool) {
	event := &service.LoginEvent{
		RequestID:   requestID,
		UserID:      user.ID.String(),
		InstagramID: profile.ID,
		Username:    profile.Username,
		NewUser:     newUser,
		LinkedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	if err := srv.publisher.PublishLoginEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish login event", slog.Any("userID", user.ID), slog.Any("error", err))
	}
}

// flowErrorWithUpstream binds an outbound-call failure to its redirect code,
// carrying the provider's response body into the redirect description.
func flowErrorWithUpstream(code string, err error) *usecase.FlowError {
	flowErr := usecase.NewFlowError(code, err)

	var upstream *service.UpstreamError
	if errors.As(err, &upstream) {
		flowErr.Description = upstream.Body
	}

	return flowErr
}

// toInstagramProfileEntity maps the provider DTO onto the domain profile.
func toInstagramProfileEntity(profile *service.InstagramProfile, now time.Time) *entity.InstagramProfile {
	return &entity.InstagramProfile{
		InstagramID:    profile.ID,
		Username:       profile.Username,
		FullName:       profile.Name,
		ProfilePicture: profile.ProfilePicture,
		Bio:            profile.Biography,
		Website:        profile.Website,
		FollowersCount: profile.FollowersCount,
		FollowingCount: profile.FollowsCount,
		MediaCount:     profile.MediaCount,
		AccountType:    profile.AccountType,
		IsBusiness:     profile.AccountType == "BUSINESS",
		ConnectedAt:    now,
	}
}

func displayName(profile *service.InstagramProfile) string {
	if profile.Name != "" {
		return profile.Name
	}

	return profile.Username
}
