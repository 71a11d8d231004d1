// Package entity contains the core business objects of the project.
package entity

// ProviderType identifies the source of an authentication credential.
type ProviderType string

const (
	// ProviderTypeEmail indicates a native email/password credential.
	ProviderTypeEmail ProviderType = "email"
	// ProviderTypeInstagram indicates a linked Instagram account.
	ProviderTypeInstagram ProviderType = "instagram"
)

// String returns the string representation of the ProviderType.
func (p ProviderType) String() string {
	return string(p)
}
