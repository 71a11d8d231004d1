// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Authentication represents a single method of logging in (a credential).
// For example, a user's email/password is one record, while a linked
// Instagram account is another.
type Authentication struct {
	ID             uuid.UUID    // The unique ID for this specific authentication record itself.
	UserID         uuid.UUID    // Links this authentication method to the User it belongs to.
	Provider       ProviderType // The authentication provider, e.g., "email" or "instagram".
	ProviderUserID string       // The user's unique ID from the external provider (for email rows, the email itself).
	PasswordHash   string       // Stores the bcrypt-hashed password, only populated when the Provider is "email".
	CreatedAt      time.Time    // Timestamp of when this authentication method was linked to the user account.
}

// RefreshToken represents a long-lived, authorized application session.
// It is used to obtain a new access token after the old one expires, without requiring credentials.
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this specific refresh token record.
	UserID    uuid.UUID // Links this session to the User it belongs to.
	TokenHash string    // Stores a SHA-256 hash of the raw refresh token for secure comparison in the database.
	ExpiresAt time.Time // The exact time when this refresh token will expire and become invalid.
	CreatedAt time.Time // Timestamp of when this session was created (i.e., when the user logged in).
}

// AuthSession is the stored Instagram credential for a user: the long-lived
// provider access token and the scopes it was granted. At most one row exists
// per user; every successful login refreshes it in place. Expiry is advisory,
// rows are never deleted by the login flow.
type AuthSession struct {
	UserID      uuid.UUID // The owning user; also the upsert key.
	AccessToken string    // The long-lived Instagram access token.
	TokenType   string    // Token type as reported by the provider, normally "bearer".
	ExpiresAt   time.Time // Absolute expiry derived from the provider's expires_in.
	Scope       []string  // Granted permission strings, in grant order.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expired reports whether the stored provider token is past its advisory expiry.
func (s *AuthSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
