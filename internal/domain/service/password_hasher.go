// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher hashes and verifies credentials for email/password accounts.
// Instagram logins never touch it; their authentication rows carry an empty
// password hash. The interface hides the algorithm (bcrypt in infra) from the
// domain.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check reports whether the plaintext password matches the stored hash.
	Check(password, hash string) bool
}
