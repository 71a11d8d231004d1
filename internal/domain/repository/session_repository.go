// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"techigem/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no Instagram auth session exists for a user.
var ErrSessionNotFound = errors.New("instagram auth session not found")

// SessionRepository manages the instagram_auth_sessions table: one stored
// provider credential per user, refreshed in place on every login.
type SessionRepository interface {
	// UpsertSession inserts or updates the session row keyed on user id.
	UpsertSession(ctx context.Context, session *entity.AuthSession) error

	// FindSessionByUserID retrieves the stored session for a user.
	FindSessionByUserID(ctx context.Context, userID uuid.UUID) (*entity.AuthSession, error)
}
