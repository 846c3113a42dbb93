package postgres

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"memantra/internal/domain/entity"
	"memantra/internal/domain/repository"
	"memantra/internal/infra/persistence/model"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a GORM-backed user repository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	var m model.UserModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "find user by id")
	}

	return toUserEntity(&m), nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var m model.UserModel
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "find user by email")
	}

	return toUserEntity(&m), nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var m model.UserModel
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "find user by username")
	}

	return toUserEntity(&m), nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	m := toUserModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}

		return nil, errors.Wrap(err, "create user")
	}

	return toUserEntity(m), nil
}

func toUserEntity(m *model.UserModel) *entity.User {
	return &entity.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		DeviceToken:  m.DeviceToken,
		GoogleSub:    m.GoogleSub,
		AuthProvider: entity.Provider(m.AuthProvider),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toUserModel(u *entity.User) *model.UserModel {
	return &model.UserModel{
		ID:           u.ID,
		Username:     u.Username,
		Email:        strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		DeviceToken:  u.DeviceToken,
		GoogleSub:    u.GoogleSub,
		AuthProvider: u.AuthProvider.String(),
	}
}
