package postgres

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Constraint classification for the auth schema. The unique checks back the
// one-auth-row-per-provider-account and one-session-per-user guarantees, so
// repositories can map violations to domain errors instead of leaking
// driver errors.

func isUniqueConstraintViolation(err error) bool {
	// GORM translates PostgreSQL unique_violation into ErrDuplicatedKey.
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isForeignKeyConstraintViolation(err error) bool {
	// Fires when an authentication, session, or refresh token row points at
	// a user id that does not exist.
	return errors.Is(err, gorm.ErrForeignKeyViolated)
}

func isNotNullConstraintViolation(err error) bool {
	// GORM has no sentinel for not_null_violation, so match on the message.
	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "null value") ||
		strings.Contains(errMsg, "not null") ||
		strings.Contains(errMsg, "23502") // PostgreSQL not_null_violation error code
}
