// Package usecase defines the application-facing contracts of the service
// layer. Delivery code depends on these interfaces, never on the
// implementations in usecase/impl.
package usecase

import (
	"context"

	"memantra/internal/domain/entity"
)

// RegisterInput carries a local registration request.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DeviceToken string
}

// LoginInput carries a password login request.
type LoginInput struct {
	Email    string
	Password string
}

// GoogleSignInInput carries a federated sign-in request.
type GoogleSignInInput struct {
	IDToken     string
	DeviceToken string
}

// AuthOutput is the result of any successful authentication flow: the
// public view of the account plus a freshly issued access token.
type AuthOutput struct {
	User  *entity.PublicUser
	Token string
}

// AuthUsecase covers account creation and every way of proving who you are.
type AuthUsecase interface {
	// Register creates a local account and signs the caller in.
	Register(ctx context.Context, input RegisterInput) (*AuthOutput, error)
	// Login verifies email/password credentials and issues a token.
	Login(ctx context.Context, input LoginInput) (*AuthOutput, error)
	// GoogleSignIn verifies a Google ID token, provisioning an account on
	// first contact, and issues a token.
	GoogleSignIn(ctx context.Context, input GoogleSignInInput) (*AuthOutput, error)
	// CurrentUser loads the account behind an authenticated user id.
	CurrentUser(ctx context.Context, userID int64) (*entity.PublicUser, error)
}
