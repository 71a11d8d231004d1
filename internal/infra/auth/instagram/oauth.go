// Package instagram implements the server-side half of the Instagram
// authorization-code flow against the Basic Display / Graph endpoints.
package instagram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"techigem/config"
	"techigem/internal/domain/entity"
	"techigem/internal/domain/service"

	"github.com/pkg/errors"
)

const profileFields = "id,username,name,profile_picture_url,account_type,media_count,followers_count,follows_count,website,biography"

// OAuthService handles Instagram OAuth infrastructure operations.
type OAuthService struct {
	clientID     string
	clientSecret string
	redirectURI  string
	scopes       string

	authorizeURL string
	apiBaseURL   string
	graphBaseURL string

	// One shared client with an explicit timeout; a provider hang must not
	// block a login request indefinitely.
	httpClient *http.Client
}

// NewOAuthService creates a new Instagram OAuth service.
func NewOAuthService(cfg *config.Config) service.OAuthService {
	return &OAuthService{
		clientID:     cfg.Instagram.ClientID,
		clientSecret: cfg.Instagram.ClientSecret,
		redirectURI:  cfg.Instagram.RedirectURI,
		scopes:       cfg.Instagram.Scopes,
		authorizeURL: cfg.Instagram.AuthorizeURL,
		apiBaseURL:   cfg.Instagram.APIBaseURL,
		graphBaseURL: cfg.Instagram.GraphBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Instagram.HTTPTimeout,
		},
	}
}

// BuildAuthorizationURL constructs the Instagram authorization URL carrying
// the CSRF state token. The state itself lives in a single-use cookie set by
// the login handler; this service is stateless.
func (s *OAuthService) BuildAuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("redirect_uri", s.redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", s.scopes)
	params.Set("state", state)

	return s.authorizeURL + "?" + params.Encode()
}

// Scopes returns the requested permission strings in request order.
func (s *OAuthService) Scopes() []string {
	return strings.Split(s.scopes, ",")
}

// Provider returns the provider name this service talks to.
func (s *OAuthService) Provider() string {
	return entity.ProviderTypeInstagram.String()
}

// ExchangeCode exchanges an authorization code for a short-lived access token.
func (s *OAuthService) ExchangeCode(ctx context.Context, code string) (*service.ShortLivedToken, error) {
	data := url.Values{}
	data.Set("client_id", s.clientID)
	data.Set("client_secret", s.clientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", s.redirectURI)
	data.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBaseURL+"/oauth/access_token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create token exchange request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to exchange code for token")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError("token_exchange", resp)
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		UserID      any    `json:"user_id"` // Instagram returns a number here; older API versions returned a string.
	}
	decoder := json.NewDecoder(resp.Body)
	// Instagram user ids exceed 2^53, so decoding them as float64 would
	// round the low digits. UseNumber keeps the exact decimal text.
	decoder.UseNumber()
	if err := decoder.Decode(&tokenResponse); err != nil {
		return nil, errors.Wrap(err, "failed to decode token response")
	}

	return &service.ShortLivedToken{
		AccessToken: tokenResponse.AccessToken,
		UserID:      stringify(tokenResponse.UserID),
	}, nil
}

// ExchangeLongLivedToken upgrades a short-lived token to a ~60 day one.
func (s *OAuthService) ExchangeLongLivedToken(ctx context.Context, shortLivedToken string) (*service.LongLivedToken, error) {
	params := url.Values{}
	params.Set("grant_type", "ig_exchange_token")
	params.Set("client_secret", s.clientSecret)
	params.Set("access_token", shortLivedToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.graphBaseURL+"/access_token?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create long-lived token request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to exchange for long-lived token")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError("token_upgrade", resp)
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return nil, errors.Wrap(err, "failed to decode long-lived token response")
	}

	return &service.LongLivedToken{
		AccessToken: tokenResponse.AccessToken,
		TokenType:   tokenResponse.TokenType,
		ExpiresIn:   tokenResponse.ExpiresIn,
	}, nil
}

// FetchProfile retrieves the account profile using a long-lived access token.
func (s *OAuthService) FetchProfile(ctx context.Context, accessToken string) (*service.InstagramProfile, error) {
	params := url.Values{}
	params.Set("fields", profileFields)
	params.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.graphBaseURL+"/me?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create profile request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch profile")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError("profile_fetch", resp)
	}

	var profile service.InstagramProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, errors.Wrap(err, "failed to decode profile response")
	}

	return &profile, nil
}

// upstreamError drains the response body into a typed error so callers can
// surface the provider's own error payload.
func upstreamError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	return &service.UpstreamError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

func stringify(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case json.Number:
		return value.String()
	default:
		return ""
	}
}
