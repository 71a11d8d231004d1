// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity in the system, representing a unique "person" or "account".
// It contains only the most fundamental identity information shared across all roles.
type User struct {
	ID        uuid.UUID         // The Global Unique Identifier (GUID) for the user.
	Email     string            // The user's primary contact email, often used as a login identifier.
	Name      string            // The user's display name or real name.
	Role      Role              // The user's role in the system ("user" by default).
	Instagram *InstagramProfile // A pointer to the linked Instagram profile. Nil when no account is linked.
	CreatedAt time.Time         // Timestamp of when this user account was created.
	UpdatedAt time.Time         // Timestamp of the last modification to this user's data.
}

// InstagramProfile holds the Instagram business profile mirrored onto a user
// at login time. It is refreshed on every successful link, never cached
// between logins.
type InstagramProfile struct {
	InstagramID    string    // The user's unique ID on Instagram (the external id the link is keyed on).
	Username       string    // The Instagram handle.
	FullName       string    // The profile's display name.
	ProfilePicture string    // Avatar URL.
	Bio            string    // Profile biography.
	Website        string    // Profile website URL.
	FollowersCount int       // Follower count at last link.
	FollowingCount int       // Following count at last link.
	MediaCount     int       // Media count at last link.
	AccountType    string    // Instagram account type, e.g. "BUSINESS".
	IsBusiness     bool      // Whether the account is a business account.
	ConnectedAt    time.Time // When the Instagram account was last linked.
}

// SyntheticEmail derives the local account email for an Instagram login.
// Instagram's API exposes no email address, so one is synthesized from the
// handle.
func SyntheticEmail(username string) string {
	return username + "@instagram.user"
}
