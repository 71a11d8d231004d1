package instagram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"techigem/config"
	"techigem/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(apiBase, graphBase string) *config.Config {
	cfg := &config.Config{}
	cfg.Instagram = &config.InstagramConfig{
		ClientID:     "test_client_id",
		ClientSecret: "test_secret",
		RedirectURI:  "https://techigem.com/api/auth/instagram/callback",
		Scopes:       "instagram_business_basic,instagram_business_content_publish",
		AuthorizeURL: "https://www.instagram.com/oauth/authorize",
		APIBaseURL:   apiBase,
		GraphBaseURL: graphBase,
		HTTPTimeout:  5 * time.Second,
	}

	return cfg
}

func TestOAuthService_BuildAuthorizationURL(t *testing.T) {
	tests := []struct {
		name     string
		state    string
		expected string
	}{
		{
			name:     "basic state",
			state:    "abc123",
			expected: "https://www.instagram.com/oauth/authorize?client_id=test_client_id&redirect_uri=https%3A%2F%2Ftechigem.com%2Fapi%2Fauth%2Finstagram%2Fcallback&response_type=code&scope=instagram_business_basic%2Cinstagram_business_content_publish&state=abc123",
		},
		{
			name:     "uuid state",
			state:    "2f1c3a44-5f69-4a7e-9a9c-44d8efbe0001",
			expected: "https://www.instagram.com/oauth/authorize?client_id=test_client_id&redirect_uri=https%3A%2F%2Ftechigem.com%2Fapi%2Fauth%2Finstagram%2Fcallback&response_type=code&scope=instagram_business_basic%2Cinstagram_business_content_publish&state=2f1c3a44-5f69-4a7e-9a9c-44d8efbe0001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewOAuthService(newTestConfig("https://api.instagram.com", "https://graph.instagram.com"))

			assert.Equal(t, tt.expected, svc.BuildAuthorizationURL(tt.state))
		})
	}
}

func TestOAuthService_ExchangeCode(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/oauth/access_token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"short-token","user_id":17841400000000000}`))
	}))
	defer server.Close()

	svc := NewOAuthService(newTestConfig(server.URL, server.URL))

	token, err := svc.ExchangeCode(context.Background(), "auth-code-abc")

	require.NoError(t, err)
	assert.Equal(t, "short-token", token.AccessToken)
	assert.Equal(t, "17841400000000000", token.UserID)

	assert.Equal(t, "test_client_id", gotForm.Get("client_id"))
	assert.Equal(t, "test_secret", gotForm.Get("client_secret"))
	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "https://techigem.com/api/auth/instagram/callback", gotForm.Get("redirect_uri"))
	assert.Equal(t, "auth-code-abc", gotForm.Get("code"))
}

func TestOAuthService_ExchangeCode_LargeUserID(t *testing.T) {
	// Real Instagram user ids sit above 2^53, where float64 can no longer
	// represent every integer. The id must round-trip digit for digit.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"short-token","user_id":17841405793187217}`))
	}))
	defer server.Close()

	svc := NewOAuthService(newTestConfig(server.URL, server.URL))

	token, err := svc.ExchangeCode(context.Background(), "auth-code-abc")

	require.NoError(t, err)
	assert.Equal(t, "17841405793187217", token.UserID)
}

func TestOAuthService_ExchangeCode_StringUserID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"short-token","user_id":"17841400000000000"}`))
	}))
	defer server.Close()

	svc := NewOAuthService(newTestConfig(server.URL, server.URL))

	token, err := svc.ExchangeCode(context.Background(), "auth-code-abc")

	require.NoError(t, err)
	assert.Equal(t, "17841400000000000", token.UserID)
}

func TestOAuthService_ExchangeCode_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_type":"OAuthException","error_message":"Invalid authorization code"}`))
	}))
	defer server.Close()

	svc := NewOAuthService(newTestConfig(server.URL, server.URL))

	_, err := svc.ExchangeCode(context.Background(), "bad-code")

	require.Error(t, err)

	var upstream *service.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "token_exchange", upstream.Operation)
	assert.Equal(t, http.StatusBadRequest, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "Invalid authorization code")
}

func TestOAuthService_ExchangeLongLivedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/access_token", r.URL.Path)

		query := r.URL.Query()
		require.Equal(t, "ig_exchange_token", query.Get("grant_type"))
		require.Equal(t, "test_secret", query.Get("client_secret"))
		require.Equal(t, "short-token", query.Get("access_token"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"long-token","token_type":"bearer","expires_in":5184000}`))
	}))
	defer server.Close()

	svc := NewOAuthService(newTestConfig(server.URL, server.URL))

	token, err := svc.ExchangeLongLivedToken(context.Background(), "short-token")

	require.NoError(t, err)
	assert.Equal(t, "long-token", token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, int64(5184000), token.ExpiresIn)
}

func TestOAuthService_FetchProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me", r.URL.Path)

		query := r.URL.Query()
		require.Equal(t, profileFields, query.Get("fields"))
		require.Equal(t, "long-token", query.Get("access_token"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "42",
			"username": "alice",
			"name": "Alice Example",
			"profile_picture_url": "https://cdn.example/alice.jpg",
			"account_type": "BUSINESS",
			"media_count": 120,
			"followers_count": 3400,
			"follows_count": 180,
			"website": "https://alice.example",
			"biography": "Photographer"
		}`))
	}))
	defer server.Close()

	svc := NewOAuthService(newTestConfig(server.URL, server.URL))

	profile, err := svc.FetchProfile(context.Background(), "long-token")

	require.NoError(t, err)
	assert.Equal(t, "42", profile.ID)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "Alice Example", profile.Name)
	assert.Equal(t, "BUSINESS", profile.AccountType)
	assert.Equal(t, 3400, profile.FollowersCount)
	assert.Equal(t, 180, profile.FollowsCount)
	assert.Equal(t, 120, profile.MediaCount)
}

func TestOAuthService_FetchProfile_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
	}))
	defer server.Close()

	svc := NewOAuthService(newTestConfig(server.URL, server.URL))

	_, err := svc.FetchProfile(context.Background(), "expired-token")

	var upstream *service.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "profile_fetch", upstream.Operation)
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
}

func TestOAuthService_Scopes(t *testing.T) {
	svc := NewOAuthService(newTestConfig("https://api.instagram.com", "https://graph.instagram.com"))

	assert.Equal(t, []string{"instagram_business_basic", "instagram_business_content_publish"}, svc.Scopes())
}
