// Package service defines interfaces for domain services implemented by the infrastructure layer.
package service

// PasswordHasher abstracts one-way password hashing so the application layer
// does not depend on a concrete algorithm.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a stored hash.
	// It returns false for any mismatch, including malformed hashes.
	Check(password, hash string) bool
}
