// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"techigem/internal/domain/entity"

	"github.com/pkg/errors"
)

// Stable error codes surfaced to the login page as ?error=<code>.
// Every callback failure terminates in a redirect carrying exactly one of
// these; clients rely on them, so they never change.
const (
	CodeInvalidState             = "invalid_state"
	CodeInvalidRequest           = "invalid_request"
	CodeTokenExchangeFailed      = "token_exchange_failed"
	CodeTokenUpgradeFailed       = "token_upgrade_failed"
	CodeProfileFetchFailed       = "profile_fetch_failed"
	CodeNoUserData               = "no_user_data"
	CodeUserCreationFailed       = "user_creation_failed"
	CodeUserRecordCreationFailed = "user_record_creation_failed"
	CodeProfileUpdateFailed      = "profile_update_failed"
	CodeSessionStorageFailed     = "session_storage_failed"
	CodeSignInFailed             = "sign_in_failed"
	CodeUnknown                  = "unknown"
)

// FlowError is a callback failure bound to its redirect code. Description
// carries the provider's error body when one exists; it is percent-encoded by
// the handler, never interpreted.
type FlowError struct {
	Code        string
	Description string
	Err         error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}

	return e.Code
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// NewFlowError wraps err under a stable redirect code.
func NewFlowError(code string, err error) *FlowError {
	return &FlowError{Code: code, Err: err}
}

// FlowCode extracts the redirect code from an error chain, falling back to
// "unknown" so the callback always terminates in a redirect.
func FlowCode(err error) string {
	var flowErr *FlowError
	if errors.As(err, &flowErr) {
		return flowErr.Code
	}

	return CodeUnknown
}

// --- Input DTOs ---

// InstagramCallbackInput carries the callback query parameters plus the CSRF
// state recovered from the cookie. The handler has already consumed the
// cookie by the time Callback runs.
type InstagramCallbackInput struct {
	Code        string
	QueryState  string
	CookieState string
	RequestID   string
}

// --- Output DTOs ---

// BeginLoginOutput is the authorization redirect plus the state the handler
// must persist in the CSRF cookie.
type BeginLoginOutput struct {
	State            string
	AuthorizationURL string
}

// InstagramLoginOutput is the result of a completed callback: the
// reconciled local user and a freshly issued token pair.
type InstagramLoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
	NewUser      bool
}

// AuthUsecase drives the Instagram authorization-code login flow.
type AuthUsecase interface {
	// BeginLogin generates a fresh CSRF state and the provider authorization URL.
	BeginLogin(ctx context.Context) (*BeginLoginOutput, error)

	// Callback runs the post-redirect flow: state validation, code exchange,
	// token upgrade, profile fetch, user reconciliation, profile and session
	// upserts, and sign-in. Any failure is returned as a *FlowError.
	Callback(ctx context.Context, input *InstagramCallbackInput) (*InstagramLoginOutput, error)
}
