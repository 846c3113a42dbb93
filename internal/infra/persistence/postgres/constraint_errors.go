package postgres

import (
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"memantra/internal/domain/repository"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// mapUniqueViolation resolves a unique-constraint error to the specific
// domain conflict it represents. The database constraint is the source of
// truth for duplicates; pre-checks in the service layer only make the common
// path friendlier. A unique violation on a constraint this table does not
// map (any future index) is surfaced wrapped rather than mislabeled.
// Returns nil when err is not a unique violation.
func mapUniqueViolation(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return repository.ErrEmailTaken
		case strings.Contains(pgErr.ConstraintName, "username"):
			return repository.ErrUsernameTaken
		default:
			return errors.Wrapf(err, "unique violation on constraint %s", pgErr.ConstraintName)
		}
	}

	// GORM's translated duplicate key error carries no constraint name;
	// the message still names the violated index.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "email"):
			return repository.ErrEmailTaken
		case strings.Contains(msg, "username"):
			return repository.ErrUsernameTaken
		default:
			return errors.Wrap(err, "unique violation")
		}
	}

	return nil
}
