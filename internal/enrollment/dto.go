package enrollment

import (
	"time"

	errors "github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/core/common/validation"
)

type CreateEnrollmentDTO struct {
	UserID         int64      `json:"user_id"`
	CourseID       int64      `json:"course_id"`
	EnrollmentDate *time.Time `json:"enrollment_date,omitempty"`
	Status         *string    `json:"status,omitempty"`
}

func (dto CreateEnrollmentDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	v.Field("course_id", dto.CourseID).Required()
	v.Field("status", dto.Status).OneOf(Statuses, errors.ErrCodeInvalidStatus)
	return v.Validate()
}

type BulkEnrollDTO struct {
	UserID    int64   `json:"user_id"`
	CourseIDs []int64 `json:"course_ids"`
}

func (dto BulkEnrollDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	v.Field("course_ids", dto.CourseIDs).Required().Custom(func(value interface{}) *errors.AppError {
		for _, id := range value.([]int64) {
			if id <= 0 {
				return errors.NewValidationFieldError("course_ids", "course_ids must contain positive ids", errors.ErrCodeInvalidID)
			}
		}
		return nil
	})
	return v.Validate()
}

type UpdateEnrollmentDTO struct {
	Status         *string    `json:"status,omitempty"`
	Grade          *float64   `json:"grade,omitempty"`
	EnrollmentDate *time.Time `json:"enrollment_date,omitempty"`
}

func (dto UpdateEnrollmentDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("status", dto.Status).OneOf(Statuses, errors.ErrCodeInvalidStatus)
	v.Field("grade", dto.Grade).Between(0, 100, errors.ErrCodeInvalidGrade)
	return v.Validate()
}
