package user

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/auth"
	"github.com/frahmantamala/lms-backend/internal/catalog"
	"github.com/frahmantamala/lms-backend/pkg/logger"
)

var ErrDuplicateEmail = stdErrors.New("user: duplicate email")

type RepositoryAPI interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, activeOnly bool) ([]*User, error)
	Update(ctx context.Context, u *User) error
	Deactivate(ctx context.Context, id int64) error
	ListWithCourses(ctx context.Context) ([]*WithCourses, error)
}

// GrantReader supplies a principal's effective global roles and permissions.
type GrantReader interface {
	GetUserRoles(ctx context.Context, userID int64) ([]*catalog.Role, error)
	GetUserPermissions(ctx context.Context, userID int64, courseID *int64) ([]catalog.Permission, error)
}

type Service struct {
	repo         RepositoryAPI
	grants       GrantReader
	passwordCost int
	logger       *slog.Logger
}

func NewService(repo RepositoryAPI, grants GrantReader, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		grants: grants,
		logger: logger,
	}
}

// WithPasswordCost sets the bcrypt cost for new password hashes. Zero means bcrypt's default.
func (s *Service) WithPasswordCost(cost int) *Service {
	s.passwordCost = cost
	return s
}

func (s *Service) CreateUser(ctx context.Context, dto CreateUserDTO) (*User, error) {
	log := logger.FromOr(ctx, s.logger)

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email := normalizeEmail(dto.Email)
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(dto.Password, s.passwordCost)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return nil, errors.NewInternalError("failed to create user", err)
	}

	u := &User{
		Email:        email,
		Username:     strings.TrimSpace(dto.Username),
		PasswordHash: hash,
		IsActive:     true,
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if stdErrors.Is(err, ErrDuplicateEmail) {
			return nil, emailTaken(email)
		}
		log.Error("failed to create user", "error", err)
		return nil, errors.NewInternalError("failed to create user", err)
	}

	log.Info("user created", "user_id", u.ID)
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to get user", "user_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get user", err)
	}
	if u == nil {
		return nil, userNotFound(id)
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, activeOnly bool) ([]*User, error) {
	users, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to list users", "error", err)
		return nil, errors.NewInternalError("failed to list users", err)
	}
	if users == nil {
		users = []*User{}
	}
	return users, nil
}

// ListUsersWithCourses groups each user's non-cancelled enrollments into a course list.
// Users without such enrollments are left out.
func (s *Service) ListUsersWithCourses(ctx context.Context) ([]*WithCourses, error) {
	rows, err := s.repo.ListWithCourses(ctx)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to list users with courses", "error", err)
		return nil, errors.NewInternalError("failed to list users with courses", err)
	}
	if rows == nil {
		rows = []*WithCourses{}
	}
	return rows, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, dto UpdateUserDTO) (*User, error) {
	log := logger.FromOr(ctx, s.logger)

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Email != nil {
		email := normalizeEmail(*dto.Email)
		if email != u.Email {
			if err := s.ensureEmailFree(ctx, email, id); err != nil {
				return nil, err
			}
			u.Email = email
		}
	}
	if dto.Username != nil {
		u.Username = strings.TrimSpace(*dto.Username)
	}
	if dto.Password != nil {
		hash, err := auth.HashPassword(*dto.Password, s.passwordCost)
		if err != nil {
			log.Error("failed to hash password", "user_id", id, "error", err)
			return nil, errors.NewInternalError("failed to update user", err)
		}
		u.PasswordHash = hash
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if stdErrors.Is(err, ErrDuplicateEmail) {
			return nil, emailTaken(u.Email)
		}
		log.Error("failed to update user", "user_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update user", err)
	}

	log.Info("user updated", "user_id", id)
	return u, nil
}

// DeactivateUser is the delete operation. Rows stay so enrollments and grants keep their owner.
func (s *Service) DeactivateUser(ctx context.Context, id int64) error {
	log := logger.FromOr(ctx, s.logger)

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		log.Error("failed to deactivate user", "user_id", id, "error", err)
		return errors.NewInternalError("failed to deactivate user", err)
	}

	log.Info("user deactivated", "user_id", id)
	return nil
}

func (s *Service) GetProfile(ctx context.Context, id int64) (*Profile, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	roles, err := s.grants.GetUserRoles(ctx, id)
	if err != nil {
		return nil, err
	}
	permissions, err := s.grants.GetUserPermissions(ctx, id, nil)
	if err != nil {
		return nil, err
	}

	return &Profile{User: u, Roles: roles, Permissions: permissions}, nil
}

// ensureEmailFree rejects email when it belongs to a user other than ownerID.
func (s *Service) ensureEmailFree(ctx context.Context, email string, ownerID int64) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to look up user by email", "error", err)
		return errors.NewInternalError("failed to look up user", err)
	}
	if existing != nil && existing.ID != ownerID {
		return emailTaken(email)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func userNotFound(id int64) *errors.AppError {
	return errors.NewNotFoundError(fmt.Sprintf("User with ID %d not found", id), errors.ErrCodeUserNotFound)
}

func emailTaken(email string) *errors.AppError {
	return errors.NewConflictError(fmt.Sprintf("Email %q is already registered", email), errors.ErrCodeEmailTaken)
}
