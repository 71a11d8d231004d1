package service

import (
	"context"
)

// LoginEvent records a completed Instagram login for downstream analytics.
type LoginEvent struct {
	RequestID   string `json:"request_id,omitempty"` // For distributed tracing
	UserID      string `json:"user_id"`
	InstagramID string `json:"instagram_id"`
	Username    string `json:"username"`
	NewUser     bool   `json:"new_user"` // Whether this login created the account.
	LinkedAt    string `json:"linked_at"`
}

// EventPublisher defines the interface for publishing events to a message queue.
// Publishing is best-effort: a failed publish must never fail the login itself.
type EventPublisher interface {
	// PublishLoginEvent publishes a login event for async processing.
	PublishLoginEvent(ctx context.Context, event *LoginEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
