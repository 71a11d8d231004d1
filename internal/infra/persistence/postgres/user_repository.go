// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"techigem/internal/domain/entity"
	domainerrors "techigem/internal/domain/errors"
	"techigem/internal/domain/repository"
	"techigem/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).First(&userM, "id = ?", id).Error; err != nil {
		// If the error is 'record not found', return a domain-specific error.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	// Map the persistence model back to a pure domain entity before returning.
	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user by their email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).First(&userM, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// FindByInstagramID retrieves the single user linked to an Instagram account id.
func (repo *userRepository) FindByInstagramID(ctx context.Context, instagramID string) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).First(&userM, "instagram_id = ?", instagramID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by instagram id")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user entity to the database.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	// Map the pure domain entity to a GORM persistence model.
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email or instagram account already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required user information")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("invalid foreign key reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Update the user entity with the generated ID and timestamps
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// UpsertInstagramProfile overwrites the Instagram profile columns on the user
// row. The update is idempotent; replaying the same profile is a no-op.
func (repo *userRepository) UpsertInstagramProfile(ctx context.Context, userID uuid.UUID, profile *entity.InstagramProfile) error {
	if profile == nil {
		return errors.New("instagram profile is required")
	}

	updates := map[string]any{
		"instagram_id":              profile.InstagramID,
		"instagram_username":        profile.Username,
		"instagram_full_name":       profile.FullName,
		"instagram_profile_picture": profile.ProfilePicture,
		"instagram_bio":             profile.Bio,
		"instagram_website":         profile.Website,
		"instagram_followers_count": profile.FollowersCount,
		"instagram_following_count": profile.FollowingCount,
		"instagram_media_count":     profile.MediaCount,
		"instagram_account_type":    profile.AccountType,
		"instagram_is_business":     profile.IsBusiness,
		"updated_at":                time.Now(),
	}
	if !profile.ConnectedAt.IsZero() {
		updates["instagram_connected_at"] = profile.ConnectedAt
	}

	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return domainerrors.ErrUserUpdateFailed.WrapMessage("instagram account already linked to another user")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update instagram profile")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	user := &entity.User{
		ID:        data.ID,
		Email:     data.Email,
		Name:      data.Name,
		Role:      entity.Role(data.Role),
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}

	// A user without a linked Instagram account has no instagram_id.
	if data.InstagramID != "" {
		profile := &entity.InstagramProfile{
			InstagramID:    data.InstagramID,
			Username:       data.InstagramUsername,
			FullName:       data.InstagramFullName,
			ProfilePicture: data.InstagramProfilePicture,
			Bio:            data.InstagramBio,
			Website:        data.InstagramWebsite,
			FollowersCount: data.InstagramFollowersCount,
			FollowingCount: data.InstagramFollowingCount,
			MediaCount:     data.InstagramMediaCount,
			AccountType:    data.InstagramAccountType,
			IsBusiness:     data.InstagramIsBusiness,
		}
		if data.InstagramConnectedAt != nil {
			profile.ConnectedAt = *data.InstagramConnectedAt
		}
		user.Instagram = profile
	}

	return user
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	userM := &model.UserModel{
		ID:    data.ID,
		Email: data.Email,
		Name:  data.Name,
		Role:  data.Role.String(),
	}

	if profile := data.Instagram; profile != nil {
		userM.InstagramID = profile.InstagramID
		userM.InstagramUsername = profile.Username
		userM.InstagramFullName = profile.FullName
		userM.InstagramProfilePicture = profile.ProfilePicture
		userM.InstagramBio = profile.Bio
		userM.InstagramWebsite = profile.Website
		userM.InstagramFollowersCount = profile.FollowersCount
		userM.InstagramFollowingCount = profile.FollowingCount
		userM.InstagramMediaCount = profile.MediaCount
		userM.InstagramAccountType = profile.AccountType
		userM.InstagramIsBusiness = profile.IsBusiness
		if !profile.ConnectedAt.IsZero() {
			connectedAt := profile.ConnectedAt
			userM.InstagramConnectedAt = &connectedAt
		}
	}

	return userM
}
