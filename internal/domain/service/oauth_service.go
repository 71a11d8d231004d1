// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

import (
	"context"
	"fmt"
)

// ShortLivedToken is the result of exchanging an authorization code: a token
// valid for roughly an hour, only useful as input to the long-lived upgrade.
type ShortLivedToken struct {
	AccessToken string
	UserID      string // Provider-scoped user id, when the token endpoint reports one.
}

// LongLivedToken is the upgraded credential, valid for ~60 days.
type LongLivedToken struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64 // Lifetime in seconds from the moment of issue.
}

// InstagramProfile is the provider's view of the account, fetched once per
// login with the long-lived token.
type InstagramProfile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture_url"`
	AccountType    string `json:"account_type"`
	MediaCount     int    `json:"media_count"`
	FollowersCount int    `json:"followers_count"`
	FollowsCount   int    `json:"follows_count"`
	Website        string `json:"website"`
	Biography      string `json:"biography"`
}

// OAuthService defines the server-side half of the Instagram authorization-code
// flow. Implementations must bound every outbound call with a timeout; a
// provider hang must never block a login request indefinitely.
type OAuthService interface {
	// BuildAuthorizationURL constructs the provider authorization URL carrying
	// the CSRF state token.
	BuildAuthorizationURL(state string) string

	// ExchangeCode posts the authorization code to the token endpoint and
	// returns the short-lived token. A non-2xx provider response is returned
	// as an *UpstreamError carrying the response body.
	ExchangeCode(ctx context.Context, code string) (*ShortLivedToken, error)

	// ExchangeLongLivedToken upgrades a short-lived token to a ~60 day one.
	ExchangeLongLivedToken(ctx context.Context, shortLivedToken string) (*LongLivedToken, error)

	// FetchProfile reads the account profile with a fixed field set.
	FetchProfile(ctx context.Context, accessToken string) (*InstagramProfile, error)

	// Scopes returns the granted permission strings the app requests.
	Scopes() []string

	// Provider returns the provider this service talks to.
	Provider() string
}

// UpstreamError describes a non-2xx response from the provider. Body carries
// the provider's error payload verbatim so callers can surface it.
type UpstreamError struct {
	Operation  string // Which outbound call failed: "token_exchange", "token_upgrade", "profile_fetch".
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Operation, e.StatusCode, e.Body)
}
