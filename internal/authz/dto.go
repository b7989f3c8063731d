package authz

import (
	"time"

	errors "github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/core/common/validation"
)

type AssignRoleDTO struct {
	UserID    int64      `json:"user_id"`
	RoleID    int64      `json:"role_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (dto AssignRoleDTO) Validate(now time.Time) *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	v.Field("role_id", dto.RoleID).Required()
	v.Field("expires_at", dto.ExpiresAt).After(now, errors.ErrCodeInvalidDate)
	return v.Validate()
}

type AssignCourseRoleDTO struct {
	CourseID int64 `json:"course_id"`
	UserID   int64 `json:"user_id"`
	RoleID   int64 `json:"role_id"`
}

func (dto AssignCourseRoleDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("course_id", dto.CourseID).Required()
	v.Field("user_id", dto.UserID).Required()
	v.Field("role_id", dto.RoleID).Required()
	return v.Validate()
}

type MessageResponse struct {
	Message string `json:"message"`
}
