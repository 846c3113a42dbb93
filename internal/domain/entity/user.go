// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// User is the core identity record of the system. One row exists per person;
// email and username are unique across all users.
type User struct {
	ID           int64     // Numeric identifier assigned by the database on creation.
	Username     string    // Unique display handle chosen at registration or derived at federated signup.
	Email        string    // Unique login identifier, stored lower-cased.
	PasswordHash string    // bcrypt hash. Federated signups store a hash of a random, never-shared secret.
	DeviceToken  string    // Optional push-notification device token captured at signup.
	GoogleSub    string    // Google's stable subject id when the account was created via Google Sign-In.
	AuthProvider Provider  // Which flow created this account: "local" or "google".
	CreatedAt    time.Time // Timestamp of when this user account was created.
	UpdatedAt    time.Time // Timestamp of the last modification to this user's data.
}

// PublicUser is the subset of User that is safe to return to clients.
type PublicUser struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public strips credential and device fields from the user.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
