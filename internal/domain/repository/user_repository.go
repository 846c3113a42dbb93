// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"memantra/internal/domain/entity"
)

// Domain-specific errors for user persistence. This allows the application
// layer to handle specific outcomes without depending on database-specific errors.
var (
	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when the unique email constraint is violated.
	ErrEmailTaken = errors.New("email already in use")
	// ErrUsernameTaken is returned when the unique username constraint is violated.
	ErrUsernameTaken = errors.New("username already taken")
)

// UserRepository defines the standard operations for user persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their numeric ID.
	FindByID(ctx context.Context, id int64) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	// Lookup is case-insensitive; implementations compare lower-cased values.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByUsername retrieves a single user by their unique username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// Create persists a new user and returns it with the assigned ID and
	// timestamps. Unique-constraint violations surface as ErrEmailTaken or
	// ErrUsernameTaken so concurrent duplicate signups resolve to the same
	// outcome as the pre-checks.
	Create(ctx context.Context, user *entity.User) (*entity.User, error)
}
