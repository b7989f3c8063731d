package authz

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/catalog"
	rbacDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/rbac"
	"github.com/frahmantamala/lms-backend/pkg/logger"
)

// Service manages global and course-scoped role assignments and answers grant queries.
type Service struct {
	repo     RepositoryAPI
	resolver *Resolver
	roles    RoleSource
	users    UserLookup
	courses  CourseLookup
	clock    func() time.Time
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, resolver *Resolver, roles RoleSource, users UserLookup, courses CourseLookup, clock func() time.Time, logger *slog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:     repo,
		resolver: resolver,
		roles:    roles,
		users:    users,
		courses:  courses,
		clock:    clock,
		logger:   logger,
	}
}

func (s *Service) AssignRoleToUser(ctx context.Context, dto AssignRoleDTO, assignedBy *int64) (*UserRoleAssignment, error) {
	log := logger.FromOr(ctx, s.logger)

	if err := dto.Validate(s.clock()); err != nil {
		return nil, err
	}

	role, err := s.roles.GetRole(ctx, dto.RoleID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, dto.UserID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetUserRole(ctx, dto.UserID, dto.RoleID)
	if err != nil {
		log.Error("failed to read role assignment", "user_id", dto.UserID, "role_id", dto.RoleID, "error", err)
		return nil, errors.NewInternalError("failed to assign role", err)
	}
	if existing != nil {
		log.Warn("role already assigned", "user_id", dto.UserID, "role", role.Name)
		return nil, roleAlreadyAssigned(role.Name)
	}

	assignment := &rbacDatamodel.UserRole{
		UserID:     dto.UserID,
		RoleID:     dto.RoleID,
		AssignedBy: assignedBy,
		ExpiresAt:  dto.ExpiresAt,
	}
	if err := s.repo.CreateUserRole(ctx, assignment); err != nil {
		if stdErrors.Is(err, ErrDuplicateAssignment) {
			return nil, roleAlreadyAssigned(role.Name)
		}
		log.Error("failed to assign role", "user_id", dto.UserID, "role_id", dto.RoleID, "error", err)
		return nil, errors.NewInternalError("failed to assign role", err)
	}

	log.Info("role assigned", "user_id", dto.UserID, "role", role.Name, "expires_at", dto.ExpiresAt)
	return UserRoleFromDataModel(assignment), nil
}

func (s *Service) RemoveRoleFromUser(ctx context.Context, userID, roleID int64) error {
	log := logger.FromOr(ctx, s.logger)

	removed, err := s.repo.DeleteUserRole(ctx, userID, roleID)
	if err != nil {
		log.Error("failed to remove role assignment", "user_id", userID, "role_id", roleID, "error", err)
		return errors.NewInternalError("failed to remove role", err)
	}
	if !removed {
		return errors.NewNotFoundError("User does not have this role", errors.ErrCodeAssignmentNotFound)
	}

	log.Info("role removed", "user_id", userID, "role_id", roleID)
	return nil
}

// GetUserRoles returns the user's global roles effective now.
func (s *Service) GetUserRoles(ctx context.Context, userID int64) ([]*catalog.Role, error) {
	return s.resolver.EffectiveGlobalRoles(ctx, userID, s.clock())
}

// GetUserPermissions returns global permissions, or only course-granted ones when courseID is set.
func (s *Service) GetUserPermissions(ctx context.Context, userID int64, courseID *int64) ([]catalog.Permission, error) {
	return s.resolver.EffectivePermissions(ctx, userID, Scope{CourseID: courseID}, s.clock())
}

func (s *Service) HasPermission(ctx context.Context, userID int64, permission string, courseID *int64) (bool, error) {
	return s.resolver.HasPermission(ctx, userID, permission, Scope{CourseID: courseID}, s.clock())
}

func (s *Service) AssignCourseRole(ctx context.Context, dto AssignCourseRoleDTO) (*CourseRoleAssignment, error) {
	log := logger.FromOr(ctx, s.logger)

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.courses.GetByID(ctx, dto.CourseID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, dto.UserID); err != nil {
		return nil, err
	}
	role, err := s.roles.GetRole(ctx, dto.RoleID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetCourseUserRole(ctx, dto.CourseID, dto.UserID, dto.RoleID)
	if err != nil {
		log.Error("failed to read course role assignment", "course_id", dto.CourseID, "user_id", dto.UserID, "error", err)
		return nil, errors.NewInternalError("failed to assign course role", err)
	}
	if existing != nil {
		log.Warn("course role already assigned", "course_id", dto.CourseID, "user_id", dto.UserID, "role", role.Name)
		return nil, courseRoleAlreadyAssigned(role.Name)
	}

	assignment := &rbacDatamodel.CourseUserRole{
		CourseID: dto.CourseID,
		UserID:   dto.UserID,
		RoleID:   dto.RoleID,
	}
	if err := s.repo.CreateCourseUserRole(ctx, assignment); err != nil {
		if stdErrors.Is(err, ErrDuplicateAssignment) {
			return nil, courseRoleAlreadyAssigned(role.Name)
		}
		log.Error("failed to assign course role", "course_id", dto.CourseID, "user_id", dto.UserID, "error", err)
		return nil, errors.NewInternalError("failed to assign course role", err)
	}

	log.Info("course role assigned", "course_id", dto.CourseID, "user_id", dto.UserID, "role", role.Name)
	return CourseRoleFromDataModel(assignment), nil
}

func (s *Service) RemoveCourseRole(ctx context.Context, courseID, userID, roleID int64) error {
	log := logger.FromOr(ctx, s.logger)

	removed, err := s.repo.DeleteCourseUserRole(ctx, courseID, userID, roleID)
	if err != nil {
		log.Error("failed to remove course role", "course_id", courseID, "user_id", userID, "role_id", roleID, "error", err)
		return errors.NewInternalError("failed to remove course role", err)
	}
	if !removed {
		return errors.NewNotFoundError("User does not have this role in the course", errors.ErrCodeAssignmentNotFound)
	}

	log.Info("course role removed", "course_id", courseID, "user_id", userID, "role_id", roleID)
	return nil
}

func (s *Service) GetUserRolesInCourse(ctx context.Context, userID, courseID int64) ([]*catalog.Role, error) {
	return s.resolver.EffectiveCourseRoles(ctx, userID, courseID, s.clock())
}

func roleAlreadyAssigned(role string) *errors.AppError {
	return errors.NewConflictError(fmt.Sprintf("User already has role '%s'", role), errors.ErrCodeRoleAlreadyAssigned)
}

func courseRoleAlreadyAssigned(role string) *errors.AppError {
	return errors.NewConflictError(fmt.Sprintf("User already has role '%s' in this course", role), errors.ErrCodeRoleAlreadyAssigned)
}
