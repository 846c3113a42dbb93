// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	deliverycontext "memantra/internal/delivery/context"
	"memantra/internal/domain/entity"
	domainerrors "memantra/internal/domain/errors"
	"memantra/internal/domain/repository"
	"memantra/internal/domain/service"
	"memantra/internal/usecase"
)

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	verifier     service.IdentityVerifier
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Verifier     service.IdentityVerifier
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		verifier:     params.Verifier,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a local account and signs the caller in.
func (srv *authService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.AuthOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)

	srv.log(ctx).Info("Starting registration", slog.String("email", email))

	// Pre-checks keep the common duplicate path friendly; the unique
	// indexes remain the source of truth under concurrent registration.
	if _, err := srv.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, domainerrors.ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to check email availability")
	}

	if _, err := srv.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, domainerrors.ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to check username availability")
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Password hashing failed", slog.Any("error", err))
		return nil, domainerrors.ErrRegistrationFailed
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		DeviceToken:  input.DeviceToken,
		AuthProvider: entity.ProviderLocal,
	}

	created, err := srv.userRepo.Create(ctx, user)
	if err != nil {
		return nil, srv.mapCreateError(ctx, err)
	}

	token, err := srv.tokenService.Issue(created.ID, created.Email)
	if err != nil {
		srv.log(ctx).Error("Token issuance failed after registration",
			slog.Int64("userID", created.ID), slog.Any("error", err))
		return nil, domainerrors.ErrRegistrationFailed
	}

	srv.log(ctx).Info("Registration completed", slog.Int64("userID", created.ID))

	return &usecase.AuthOutput{User: created.Public(), Token: token}, nil
}

// Login verifies email/password credentials and issues a token. Every
// failure mode returns the same error so callers cannot probe which
// emails have accounts.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.AuthOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user by email")
	}

	// Federated accounts carry no usable password hash.
	if user.PasswordHash == "" || !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Info("Login rejected", slog.Int64("userID", user.ID))
		return nil, domainerrors.ErrInvalidCredentials
	}

	token, err := srv.tokenService.Issue(user.ID, user.Email)
	if err != nil {
		srv.log(ctx).Error("Token issuance failed at login",
			slog.Int64("userID", user.ID), slog.Any("error", err))
		return nil, domainerrors.ErrInternalError
	}

	srv.log(ctx).Info("Login succeeded", slog.Int64("userID", user.ID))

	return &usecase.AuthOutput{User: user.Public(), Token: token}, nil
}

// GoogleSignIn verifies a Google ID token and either signs in the existing
// account with the asserted email or provisions a new one.
func (srv *authService) GoogleSignIn(ctx context.Context, input usecase.GoogleSignInInput) (*usecase.AuthOutput, error) {
	idToken := strings.TrimSpace(input.IDToken)
	if idToken == "" {
		return nil, domainerrors.ErrGoogleTokenRequired
	}

	identity, err := srv.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		srv.log(ctx).Info("Google ID token rejected", slog.Any("error", err))
		return nil, domainerrors.ErrInvalidGoogleToken
	}

	email := strings.ToLower(identity.Email)

	user, err := srv.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		// Existing account, federated or local: the verified email is
		// proof of ownership either way.
	case errors.Is(err, repository.ErrUserNotFound):
		user, err = srv.provisionGoogleUser(ctx, identity, email, input.DeviceToken)
		if err != nil {
			return nil, err
		}
	default:
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user by email")
	}

	token, err := srv.tokenService.Issue(user.ID, user.Email)
	if err != nil {
		srv.log(ctx).Error("Token issuance failed at Google sign-in",
			slog.Int64("userID", user.ID), slog.Any("error", err))
		return nil, domainerrors.ErrInternalError
	}

	srv.log(ctx).Info("Google sign-in succeeded", slog.Int64("userID", user.ID))

	return &usecase.AuthOutput{User: user.Public(), Token: token}, nil
}

// CurrentUser loads the account behind an authenticated user id.
func (srv *authService) CurrentUser(ctx context.Context, userID int64) (*entity.PublicUser, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user by id")
	}

	return user.Public(), nil
}

// provisionGoogleUser creates a first-contact account for a verified Google
// identity. Federated accounts get a random throwaway password hash so the
// password column never validates any input.
func (srv *authService) provisionGoogleUser(ctx context.Context, identity *service.VerifiedIdentity, email, deviceToken string) (*entity.User, error) {
	srv.log(ctx).Info("Provisioning account for Google identity", slog.String("email", email))

	hash, err := srv.hasher.Hash(randomPassword())
	if err != nil {
		srv.log(ctx).Error("Password hashing failed during provisioning", slog.Any("error", err))
		return nil, domainerrors.ErrRegistrationFailed
	}

	username := deriveUsername(identity.Name, email)

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		DeviceToken:  deviceToken,
		GoogleSub:    identity.Subject,
		AuthProvider: entity.ProviderGoogle,
	}

	created, err := srv.userRepo.Create(ctx, user)
	if errors.Is(err, repository.ErrUsernameTaken) {
		// Derived names collide; retry once with a random suffix.
		user.Username = username + randomSuffix()
		created, err = srv.userRepo.Create(ctx, user)
	}
	if errors.Is(err, repository.ErrEmailTaken) {
		// Lost a race against a concurrent sign-in for the same identity.
		return srv.userRepo.FindByEmail(ctx, email)
	}
	if err != nil {
		return nil, srv.mapCreateError(ctx, err)
	}

	return created, nil
}

func (srv *authService) mapCreateError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrEmailTaken):
		return domainerrors.ErrEmailTaken
	case errors.Is(err, repository.ErrUsernameTaken):
		return domainerrors.ErrUsernameTaken
	default:
		srv.log(ctx).Error("User creation failed", slog.Any("error", err))
		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}
}

// deriveUsername builds a username from the identity's display name,
// falling back to the email local part when the name yields nothing.
func deriveUsername(name, email string) string {
	var sb strings.Builder
	for _, r := range name {
		if !unicode.IsSpace(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}

	if sb.Len() > 0 {
		return sb.String()
	}

	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}

	return "user" + randomSuffix()
}

// randomSuffix returns 6 hex characters of randomness for username
// collision retries.
func randomSuffix() string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "000000"
	}

	return hex.EncodeToString(buf)
}

// randomPassword returns a high-entropy password that is hashed and then
// discarded, never stored or shown to anyone.
func randomPassword() string {
	buf := make([]byte, 32)
	// crypto/rand.Read never returns an error.
	_, _ = rand.Read(buf)

	return hex.EncodeToString(buf)
}
