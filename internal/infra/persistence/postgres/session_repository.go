// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"strings"

	"techigem/internal/domain/entity"
	domainerrors "techigem/internal/domain/errors"
	"techigem/internal/domain/repository"
	"techigem/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sessionRepository implements the domain.SessionRepository interface.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// UpsertSession inserts or updates the Instagram session row for a user.
// The table is keyed on user_id, so a returning user's previous token is
// overwritten rather than accumulated.
func (repo *sessionRepository) UpsertSession(ctx context.Context, session *entity.AuthSession) error {
	sessionM := fromAuthSessionDomain(session)

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token", "token_type", "expires_at", "scope", "updated_at",
			}),
		}).
		Create(sessionM).Error
	if err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrSessionStorageFailed.WrapMessage("invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to store instagram session")
	}

	session.CreatedAt = sessionM.CreatedAt
	session.UpdatedAt = sessionM.UpdatedAt

	return nil
}

// FindSessionByUserID retrieves the stored Instagram session for a user.
func (repo *sessionRepository) FindSessionByUserID(ctx context.Context, userID uuid.UUID) (*entity.AuthSession, error) {
	var sessionM model.AuthSessionModel
	if err := repo.db.WithContext(ctx).First(&sessionM, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toAuthSessionDomain(&sessionM), nil
}

// --- Mapper Functions ---

// toAuthSessionDomain converts a GORM AuthSessionModel to a domain AuthSession entity.
func toAuthSessionDomain(data *model.AuthSessionModel) *entity.AuthSession {
	if data == nil {
		return nil
	}

	session := &entity.AuthSession{
		UserID:      data.UserID,
		AccessToken: data.AccessToken,
		TokenType:   data.TokenType,
		ExpiresAt:   data.ExpiresAt,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
	if data.Scope != "" {
		session.Scope = strings.Split(data.Scope, ",")
	}

	return session
}

// fromAuthSessionDomain converts a domain AuthSession entity to a GORM AuthSessionModel.
func fromAuthSessionDomain(data *entity.AuthSession) *model.AuthSessionModel {
	if data == nil {
		return nil
	}

	return &model.AuthSessionModel{
		UserID:      data.UserID,
		AccessToken: data.AccessToken,
		TokenType:   data.TokenType,
		ExpiresAt:   data.ExpiresAt,
		Scope:       strings.Join(data.Scope, ","),
	}
}
