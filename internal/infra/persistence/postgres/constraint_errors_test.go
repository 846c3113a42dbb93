package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"memantra/internal/domain/repository"
)

func TestMapUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "nil error",
			err:  nil,
			want: nil,
		},
		{
			name: "unrelated error",
			err:  errors.New("connection refused"),
			want: nil,
		},
		{
			name: "pg unique violation on email index",
			err: &pgconn.PgError{
				Code:           "23505",
				ConstraintName: "idx_users_email",
			},
			want: repository.ErrEmailTaken,
		},
		{
			name: "pg unique violation on username index",
			err: &pgconn.PgError{
				Code:           "23505",
				ConstraintName: "idx_users_username",
			},
			want: repository.ErrUsernameTaken,
		},
		{
			name: "wrapped pg unique violation",
			err: errors.Wrap(&pgconn.PgError{
				Code:           "23505",
				ConstraintName: "idx_users_username",
			}, "create user"),
			want: repository.ErrUsernameTaken,
		},
		{
			name: "pg error with non-unique code",
			err: &pgconn.PgError{
				Code:           "23503",
				ConstraintName: "fk_something",
			},
			want: nil,
		},
		{
			name: "gorm translated duplicate naming username",
			err:  errors.Wrap(gorm.ErrDuplicatedKey, `duplicate key value violates unique constraint "idx_users_username"`),
			want: repository.ErrUsernameTaken,
		},
		{
			name: "gorm translated duplicate naming email",
			err:  errors.Wrap(gorm.ErrDuplicatedKey, `duplicate key value violates unique constraint "idx_users_email"`),
			want: repository.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := mapUniqueViolation(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}

			assert.ErrorIs(t, got, tt.want)
		})
	}
}

// A unique violation on a constraint the mapper does not recognize must not
// be reported as an email conflict; it comes back wrapped so the caller
// treats it as an unexpected database failure.
func TestMapUniqueViolation_UnknownConstraint(t *testing.T) {
	t.Parallel()

	t.Run("pg error with unmapped constraint", func(t *testing.T) {
		t.Parallel()

		got := mapUniqueViolation(&pgconn.PgError{
			Code:           "23505",
			ConstraintName: "idx_users_device_token",
		})

		assert.Error(t, got)
		assert.NotErrorIs(t, got, repository.ErrEmailTaken)
		assert.NotErrorIs(t, got, repository.ErrUsernameTaken)
		assert.Contains(t, got.Error(), "idx_users_device_token")
	})

	t.Run("gorm duplicate naming neither column", func(t *testing.T) {
		t.Parallel()

		got := mapUniqueViolation(gorm.ErrDuplicatedKey)

		assert.Error(t, got)
		assert.NotErrorIs(t, got, repository.ErrEmailTaken)
		assert.NotErrorIs(t, got, repository.ErrUsernameTaken)
	})
}
