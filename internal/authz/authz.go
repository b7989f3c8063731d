package authz

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/frahmantamala/lms-backend/internal/catalog"
	rbacDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/rbac"
	"github.com/frahmantamala/lms-backend/internal/course"
	"github.com/frahmantamala/lms-backend/internal/user"
)

// ErrDuplicateAssignment is returned by repositories when a unique index rejects an assignment.
var ErrDuplicateAssignment = stdErrors.New("authz: duplicate assignment")

// Scope selects which grants are consulted. A nil CourseID means global.
type Scope struct {
	CourseID *int64
}

func GlobalScope() Scope {
	return Scope{}
}

func CourseScope(courseID int64) Scope {
	return Scope{CourseID: &courseID}
}

func (s Scope) IsCourse() bool {
	return s.CourseID != nil
}

type UserRoleAssignment struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	RoleID     int64      `json:"role_id"`
	AssignedAt time.Time  `json:"assigned_at"`
	AssignedBy *int64     `json:"assigned_by,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

type CourseRoleAssignment struct {
	ID         int64     `json:"id"`
	CourseID   int64     `json:"course_id"`
	UserID     int64     `json:"user_id"`
	RoleID     int64     `json:"role_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

func UserRoleFromDataModel(ur *rbacDatamodel.UserRole) *UserRoleAssignment {
	return &UserRoleAssignment{
		ID:         ur.ID,
		UserID:     ur.UserID,
		RoleID:     ur.RoleID,
		AssignedAt: ur.AssignedAt,
		AssignedBy: ur.AssignedBy,
		ExpiresAt:  ur.ExpiresAt,
	}
}

func CourseRoleFromDataModel(cr *rbacDatamodel.CourseUserRole) *CourseRoleAssignment {
	return &CourseRoleAssignment{
		ID:         cr.ID,
		CourseID:   cr.CourseID,
		UserID:     cr.UserID,
		RoleID:     cr.RoleID,
		AssignedAt: cr.AssignedAt,
	}
}

type RepositoryAPI interface {
	ListUserRoles(ctx context.Context, userID int64) ([]*rbacDatamodel.UserRole, error)
	GetUserRole(ctx context.Context, userID, roleID int64) (*rbacDatamodel.UserRole, error)
	CreateUserRole(ctx context.Context, assignment *rbacDatamodel.UserRole) error
	// DeleteUserRole reports whether a row was removed.
	DeleteUserRole(ctx context.Context, userID, roleID int64) (bool, error)

	ListCourseUserRoles(ctx context.Context, userID, courseID int64) ([]*rbacDatamodel.CourseUserRole, error)
	GetCourseUserRole(ctx context.Context, courseID, userID, roleID int64) (*rbacDatamodel.CourseUserRole, error)
	CreateCourseUserRole(ctx context.Context, assignment *rbacDatamodel.CourseUserRole) error
	DeleteCourseUserRole(ctx context.Context, courseID, userID, roleID int64) (bool, error)
}

// RoleSource resolves role ids to roles with their permissions attached.
type RoleSource interface {
	GetRole(ctx context.Context, id int64) (*catalog.Role, error)
	RolesByIDs(ctx context.Context, ids []int64) ([]*catalog.Role, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

type CourseLookup interface {
	GetByID(ctx context.Context, id int64) (*course.Course, error)
}
