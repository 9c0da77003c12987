package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "crewlink-server/services/messaging-api/internal/domain/user"
	"crewlink-server/services/messaging-api/internal/infrastructure/database/entities"
	"crewlink-server/services/messaging-api/internal/utils/platformerrors"
)

// Repository loads user accounts with their role-specific profile.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs the user repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ domain.Repository = (*Repository)(nil)

func (r *Repository) withProfiles(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("ContractorProfile").
		Preload("SubcontractorProfile").
		Preload("HomeownerProfile").
		Preload("SpecialistProfile")
}

// FindByID retrieves a user by internal id.
func (r *Repository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var entity entities.User
	if err := r.withProfiles(ctx).First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("user not found: %d", id),
				nil,
				"find-user-not-found",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find user",
			err,
			"find-user-error",
		)
	}
	return entity.EtoD(), nil
}

// FindByEmail retrieves a user by account email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var entity entities.User
	if err := r.withProfiles(ctx).Where("email = ?", email).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("user not found: %s", email),
				nil,
				"find-user-by-email-not-found",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find user by email",
			err,
			"find-user-by-email-error",
		)
	}
	return entity.EtoD(), nil
}
