package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/lms-backend/internal/core/database"
	userDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/user"
	"github.com/frahmantamala/lms-backend/internal/userprofile"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) userprofile.RepositoryAPI {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, p *userDatamodel.Profile) error {
	err := r.db.WithContext(ctx).Omit("User").Create(p).Error
	if database.IsUniqueViolation(err) {
		return userprofile.ErrDuplicateUser
	}
	return err
}

func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.Profile, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*userDatamodel.Profile, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *ProfileRepository) List(ctx context.Context) ([]*userDatamodel.Profile, error) {
	var profiles []*userDatamodel.Profile
	err := r.db.WithContext(ctx).Order("id ASC").Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepository) Update(ctx context.Context, p *userDatamodel.Profile) error {
	return r.db.WithContext(ctx).Omit("User").Save(p).Error
}

func (r *ProfileRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&userDatamodel.Profile{}).Error
}

func (r *ProfileRepository) first(ctx context.Context, query string, arg interface{}) (*userDatamodel.Profile, error) {
	var p userDatamodel.Profile
	err := r.db.WithContext(ctx).Where(query, arg).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
