package impl

import (
	"context"
	"errors"
	"strings"
	"sync"

	"memantra/internal/domain/entity"
	"memantra/internal/domain/repository"
	"memantra/internal/domain/service"
)

// fakeUserRepository is a test-only in-memory implementation of
// repository.UserRepository. It enforces the same uniqueness rules as the
// real store and exposes error fields for behavior injection.
type fakeUserRepository struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]*entity.User
	findErr error
	saveErr error
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		nextID: 1,
		users:  make(map[int64]*entity.User),
	}
}

func (f *fakeUserRepository) FindByID(_ context.Context, id int64) (*entity.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.findErr != nil {
		return nil, f.findErr
	}

	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	cp := *u
	return &cp, nil
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.findErr != nil {
		return nil, f.findErr
	}

	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepository) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.findErr != nil {
		return nil, f.findErr
	}

	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepository) Create(_ context.Context, user *entity.User) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}

	email := strings.ToLower(user.Email)
	for _, u := range f.users {
		if u.Email == email {
			return nil, repository.ErrEmailTaken
		}
	}
	for _, u := range f.users {
		if u.Username == user.Username {
			return nil, repository.ErrUsernameTaken
		}
	}

	cp := *user
	cp.ID = f.nextID
	cp.Email = email
	f.nextID++
	f.users[cp.ID] = &cp

	out := cp
	return &out, nil
}

// fakeHasher implements service.PasswordHasher without real bcrypt so tests
// stay fast. Hashes are reversible by construction.
type fakeHasher struct {
	hashErr error
}

func (f *fakeHasher) Hash(password string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}

	return "hashed:" + password, nil
}

func (f *fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

// fakeTokenService implements service.TokenService with transparent tokens.
type fakeTokenService struct {
	issueErr error
}

func (f *fakeTokenService) Issue(userID int64, email string) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}

	return "token-for:" + email, nil
}

func (f *fakeTokenService) Verify(tokenString string) (*service.TokenClaims, error) {
	email, ok := strings.CutPrefix(tokenString, "token-for:")
	if !ok {
		return nil, errors.New("malformed token")
	}

	return &service.TokenClaims{Email: email}, nil
}

// fakeIdentityVerifier implements service.IdentityVerifier, returning a
// canned identity or a canned error.
type fakeIdentityVerifier struct {
	identity  *service.VerifiedIdentity
	verifyErr error
}

func (f *fakeIdentityVerifier) VerifyIDToken(_ context.Context, _ string) (*service.VerifiedIdentity, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}

	return f.identity, nil
}
