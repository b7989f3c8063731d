package userprofile

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"

	errors "github.com/frahmantamala/lms-backend/internal"
	userDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/user"
	"github.com/frahmantamala/lms-backend/internal/user"
	"github.com/frahmantamala/lms-backend/pkg/logger"
)

// ErrDuplicateUser is returned by repositories when the user already has a profile.
var ErrDuplicateUser = stdErrors.New("userprofile: user already has a profile")

type RepositoryAPI interface {
	Create(ctx context.Context, profile *userDatamodel.Profile) error
	GetByID(ctx context.Context, id int64) (*userDatamodel.Profile, error)
	GetByUserID(ctx context.Context, userID int64) (*userDatamodel.Profile, error)
	List(ctx context.Context) ([]*userDatamodel.Profile, error)
	Update(ctx context.Context, profile *userDatamodel.Profile) error
	Delete(ctx context.Context, id int64) error
}

// UserLookup resolves the owner of a profile; it answers not found as an AppError.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

type Service struct {
	repo   RepositoryAPI
	users  UserLookup
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, users UserLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

func (s *Service) CreateProfile(ctx context.Context, dto CreateProfileDTO) (*Profile, error) {
	log := logger.FromOr(ctx, s.logger)

	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, dto.UserID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByUserID(ctx, dto.UserID)
	if err != nil {
		log.Error("failed to look up profile", "user_id", dto.UserID, "error", err)
		return nil, errors.NewInternalError("failed to create profile", err)
	}
	if existing != nil {
		return nil, profileExists(dto.UserID)
	}

	p := &userDatamodel.Profile{
		UserID:      dto.UserID,
		FirstName:   dto.FirstName,
		LastName:    dto.LastName,
		DateOfBirth: parseDate(dto.DateOfBirth),
		PhoneNumber: dto.PhoneNumber,
		Bio:         dto.Bio,
		AvatarURL:   dto.AvatarURL,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if stdErrors.Is(err, ErrDuplicateUser) {
			return nil, profileExists(dto.UserID)
		}
		log.Error("failed to create profile", "user_id", dto.UserID, "error", err)
		return nil, errors.NewInternalError("failed to create profile", err)
	}

	log.Info("profile created", "profile_id", p.ID, "user_id", p.UserID)
	return FromDataModel(p), nil
}

func (s *Service) GetProfile(ctx context.Context, id int64) (*Profile, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(p), nil
}

func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Profile, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to get profile by user", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to get profile", err)
	}
	if p == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Profile for user %d not found", userID), errors.ErrCodeProfileNotFound)
	}
	return FromDataModel(p), nil
}

func (s *Service) ListProfiles(ctx context.Context) ([]*Profile, error) {
	data, err := s.repo.List(ctx)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to list profiles", "error", err)
		return nil, errors.NewInternalError("failed to list profiles", err)
	}

	profiles := make([]*Profile, 0, len(data))
	for _, p := range data {
		profiles = append(profiles, FromDataModel(p))
	}
	return profiles, nil
}

// UpdateProfile changes the fields present in dto. The owning user is fixed at creation.
func (s *Service) UpdateProfile(ctx context.Context, id int64, dto UpdateProfileDTO) (*Profile, error) {
	log := logger.FromOr(ctx, s.logger)

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.FirstName != nil {
		p.FirstName = dto.FirstName
	}
	if dto.LastName != nil {
		p.LastName = dto.LastName
	}
	if dto.DateOfBirth != nil {
		p.DateOfBirth = parseDate(dto.DateOfBirth)
	}
	if dto.PhoneNumber != nil {
		p.PhoneNumber = dto.PhoneNumber
	}
	if dto.Bio != nil {
		p.Bio = dto.Bio
	}
	if dto.AvatarURL != nil {
		p.AvatarURL = dto.AvatarURL
	}

	if err := s.repo.Update(ctx, p); err != nil {
		log.Error("failed to update profile", "profile_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update profile", err)
	}

	log.Info("profile updated", "profile_id", id)
	return FromDataModel(p), nil
}

func (s *Service) DeleteProfile(ctx context.Context, id int64) error {
	log := logger.FromOr(ctx, s.logger)

	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		log.Error("failed to delete profile", "profile_id", id, "error", err)
		return errors.NewInternalError("failed to delete profile", err)
	}

	log.Info("profile deleted", "profile_id", id)
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*userDatamodel.Profile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to get profile", "profile_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get profile", err)
	}
	if p == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Profile with ID %d not found", id), errors.ErrCodeProfileNotFound)
	}
	return p, nil
}

func profileExists(userID int64) *errors.AppError {
	return errors.NewConflictError(fmt.Sprintf("User %d already has a profile", userID), errors.ErrCodeProfileExists)
}
