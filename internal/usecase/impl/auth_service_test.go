package impl

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memantra/internal/domain/entity"
	domainerrors "memantra/internal/domain/errors"
	"memantra/internal/domain/service"
	"memantra/internal/usecase"
)

func newTestAuthService(repo *fakeUserRepository, hasher *fakeHasher, tokens *fakeTokenService, verifier *fakeIdentityVerifier) usecase.AuthUsecase {
	return NewAuthService(AuthServiceParams{
		UserRepo:     repo,
		Hasher:       hasher,
		TokenService: tokens,
		Verifier:     verifier,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates account and signs caller in", func(t *testing.T) {
		t.Parallel()

		repo := newFakeUserRepository()
		srv := newTestAuthService(repo, &fakeHasher{}, &fakeTokenService{}, &fakeIdentityVerifier{})

		out, err := srv.Register(context.Background(), usecase.RegisterInput{
			Username: "breather",
			Email:    "Breather@Example.com",
			Password: "s3cret-passphrase",
		})
		require.NoError(t, err)
		require.NotNil(t, out.User)

		assert.Equal(t, "breather", out.User.Username)
		assert.Equal(t, "breather@example.com", out.User.Email, "email should be stored lowercase")
		assert.Equal(t, "token-for:breather@example.com", out.Token)

		stored, err := repo.FindByID(context.Background(), out.User.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.ProviderLocal, stored.AuthProvider)
		assert.NotEqual(t, "s3cret-passphrase", stored.PasswordHash, "plaintext password must never be stored")
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		t.Parallel()

		repo := newFakeUserRepository()
		srv := newTestAuthService(repo, &fakeHasher{}, &fakeTokenService{}, &fakeIdentityVerifier{})

		_, err := srv.Register(context.Background(), usecase.RegisterInput{
			Username: "first", Email: "clash@example.com", Password: "pw-one-long",
		})
		require.NoError(t, err)

		_, err = srv.Register(context.Background(), usecase.RegisterInput{
			Username: "second", Email: "CLASH@example.com", Password: "pw-two-long",
		})
		assert.ErrorIs(t, err, domainerrors.ErrEmailTaken)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		t.Parallel()

		repo := newFakeUserRepository()
		srv := newTestAuthService(repo, &fakeHasher{}, &fakeTokenService{}, &fakeIdentityVerifier{})

		_, err := srv.Register(context.Background(), usecase.RegisterInput{
			Username: "walker", Email: "one@example.com", Password: "pw-one-long",
		})
		require.NoError(t, err)

		_, err = srv.Register(context.Background(), usecase.RegisterInput{
			Username: "walker", Email: "two@example.com", Password: "pw-two-long",
		})
		assert.ErrorIs(t, err, domainerrors.ErrUsernameTaken)
	})

	t.Run("surfaces registration failure on hashing error", func(t *testing.T) {
		t.Parallel()

		repo := newFakeUserRepository()
		hasher := &fakeHasher{hashErr: errors.New("bcrypt exploded")}
		srv := newTestAuthService(repo, hasher, &fakeTokenService{}, &fakeIdentityVerifier{})

		_, err := srv.Register(context.Background(), usecase.RegisterInput{
			Username: "walker", Email: "one@example.com", Password: "pw-one-long",
		})
		assert.ErrorIs(t, err, domainerrors.ErrRegistrationFailed)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	register := func(t *testing.T, srv usecase.AuthUsecase) {
		t.Helper()
		_, err := srv.Register(context.Background(), usecase.RegisterInput{
			Username: "walker", Email: "walker@example.com", Password: "correct-horse",
		})
		require.NoError(t, err)
	}

	t.Run("issues token for valid credentials", func(t *testing.T) {
		t.Parallel()

		srv := newTestAuthService(newFakeUserRepository(), &fakeHasher{}, &fakeTokenService{}, &fakeIdentityVerifier{})
		register(t, srv)

		out, err := srv.Login(context.Background(), usecase.LoginInput{
			Email: "Walker@Example.com", Password: "correct-horse",
		})
		require.NoError(t, err)
		assert.Equal(t, "walker", out.User.Username)
		assert.NotEmpty(t, out.Token)
	})

	t.Run("same error for unknown email and wrong password", func(t *testing.T) {
		t.Parallel()

		srv := newTestAuthService(newFakeUserRepository(), &fakeHasher{}, &fakeTokenService{}, &fakeIdentityVerifier{})
		register(t, srv)

		_, unknownErr := srv.Login(context.Background(), usecase.LoginInput{
			Email: "nobody@example.com", Password: "correct-horse",
		})
		_, wrongErr := srv.Login(context.Background(), usecase.LoginInput{
			Email: "walker@example.com", Password: "battery-staple",
		})

		assert.ErrorIs(t, unknownErr, domainerrors.ErrInvalidCredentials)
		assert.ErrorIs(t, wrongErr, domainerrors.ErrInvalidCredentials)
	})

	t.Run("federated account cannot log in with a password", func(t *testing.T) {
		t.Parallel()

		repo := newFakeUserRepository()
		_, err := repo.Create(context.Background(), &entity.User{
			Username:     "google-only",
			Email:        "federated@example.com",
			PasswordHash: "",
			AuthProvider: entity.ProviderGoogle,
		})
		require.NoError(t, err)

		srv := newTestAuthService(repo, &fakeHasher{}, &fakeTokenService{}, &fakeIdentityVerifier{})

		_, err = srv.Login(context.Background(), usecase.LoginInput{
			Email: "federated@example.com", Password: "",
		})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	})
}

func TestGoogleSignIn(t *testing.T) {
	t.Parallel()

	t.Run("rejects blank token before verification", func(t *testing.T) {
		t.Parallel()

		srv := newTestAuthService(newFakeUserRepository(), &fakeHasher{}, &fakeTokenService{}, &fakeIdentityVerifier{})

		for _, token := range []string{"", "   ", "\t\n"} {
			_, err := srv.GoogleSignIn(context.Background(), usecase.GoogleSignInInput{IDToken: token})
			assert.ErrorIs(t, err, domainerrors.ErrGoogleTokenRequired)
		}
	})

	t.Run("rejects token the verifier refuses", func(t *testing.T) {
		t.Parallel()

		verifier := &fakeIdentityVerifier{verifyErr: errors.New("audience mismatch")}
		srv := newTestAuthService(newFakeUserRepository(), &fakeHasher{}, &fakeTokenService{}, verifier)

		_, err := srv.GoogleSignIn(context.Background(), usecase.GoogleSignInInput{IDToken: "not-really-a-jwt"})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidGoogleToken)
	})

	t.Run("provisions account on first contact", func(t *testing.T) {
		t.Parallel()

		repo := newFakeUserRepository()
		verifier := &fakeIdentityVerifier{identity: &service.VerifiedIdentity{
			Subject: "sub-12345",
			Email:   "Jane.Doe@Example.com",
			Name:    "Jane Doe",
		}}
		srv := newTestAuthService(repo, &fakeHasher{}, &fakeTokenService{}, verifier)

		out, err := srv.GoogleSignIn(context.Background(), usecase.GoogleSignInInput{IDToken: "valid"})
		require.NoError(t, err)

		assert.Equal(t, "janedoe", out.User.Username, "username derives from the display name")
		assert.Equal(t, "jane.doe@example.com", out.User.Email)
		assert.NotEmpty(t, out.Token)

		stored, err := repo.FindByID(context.Background(), out.User.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.ProviderGoogle, stored.AuthProvider)
		assert.Equal(t, "sub-12345", stored.GoogleSub)
		assert.NotEmpty(t, stored.PasswordHash, "federated accounts still carry an unguessable hash")
	})

	t.Run("signs in existing account without creating another", func(t *testing.T) {
		t.Parallel()

		repo := newFakeUserRepository()
		verifier := &fakeIdentityVerifier{identity: &service.VerifiedIdentity{
			Subject: "sub-12345",
			Email:   "walker@example.com",
			Name:    "Walker",
		}}
		srv := newTestAuthService(repo, &fakeHasher{}, &fakeTokenService{}, verifier)

		_, err := srv.Register(context.Background(), usecase.RegisterInput{
			Username: "walker", Email: "walker@example.com", Password: "correct-horse",
		})
		require.NoError(t, err)

		out, err := srv.GoogleSignIn(context.Background(), usecase.GoogleSignInInput{IDToken: "valid"})
		require.NoError(t, err)
		assert.Equal(t, "walker", out.User.Username)
		assert.Len(t, repo.users, 1)
	})

	t.Run("retries with suffix on username collision", func(t *testing.T) {
		t.Parallel()

		repo := newFakeUserRepository()
		verifier := &fakeIdentityVerifier{identity: &service.VerifiedIdentity{
			Subject: "sub-67890",
			Email:   "other.jane@example.com",
			Name:    "Jane Doe",
		}}
		srv := newTestAuthService(repo, &fakeHasher{}, &fakeTokenService{}, verifier)

		_, err := srv.Register(context.Background(), usecase.RegisterInput{
			Username: "janedoe", Email: "jane@example.com", Password: "correct-horse",
		})
		require.NoError(t, err)

		out, err := srv.GoogleSignIn(context.Background(), usecase.GoogleSignInInput{IDToken: "valid"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out.User.Username, "janedoe"))
		assert.NotEqual(t, "janedoe", out.User.Username)
		assert.Len(t, out.User.Username, len("janedoe")+6)
	})
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepository()
	srv := newTestAuthService(repo, &fakeHasher{}, &fakeTokenService{}, &fakeIdentityVerifier{})

	out, err := srv.Register(context.Background(), usecase.RegisterInput{
		Username: "walker", Email: "walker@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	user, err := srv.CurrentUser(context.Background(), out.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "walker", user.Username)
	assert.Equal(t, "walker@example.com", user.Email)

	_, err = srv.CurrentUser(context.Background(), out.User.ID+999)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestDeriveUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fullName string
		email    string
		want     string
	}{
		{"strips spaces and lowercases", "Jane Doe", "jane@example.com", "janedoe"},
		{"falls back to email local part", "", "jane.doe@example.com", "jane.doe"},
		{"whitespace-only name falls back", "   ", "walker@example.com", "walker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, deriveUsername(tt.fullName, tt.email))
		})
	}
}
