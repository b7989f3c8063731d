package course

import (
	errors "github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/core/common/validation"
)

type CreateCourseDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Code        string `json:"code"`
	Credits     int    `json:"credits"`
	MaxCapacity *int   `json:"max_capacity,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

func (dto CreateCourseDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(200)
	v.Field("code", dto.Code).Required().MaxLength(50)
	v.Field("credits", dto.Credits).MinInt(1, errors.ErrCodeValidationFailed)
	v.Field("max_capacity", dto.MaxCapacity).MinInt(1, errors.ErrCodeValidationFailed)
	return v.Validate()
}

type UpdateCourseDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Code        *string `json:"code,omitempty"`
	Credits     *int    `json:"credits,omitempty"`
	MaxCapacity *int    `json:"max_capacity,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (dto UpdateCourseDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", dto.Name).Required().MaxLength(200)
	}
	if dto.Code != nil {
		v.Field("code", dto.Code).Required().MaxLength(50)
	}
	v.Field("credits", dto.Credits).MinInt(1, errors.ErrCodeValidationFailed)
	v.Field("max_capacity", dto.MaxCapacity).MinInt(1, errors.ErrCodeValidationFailed)
	return v.Validate()
}

type CreateLessonDTO struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Type            string  `json:"type"`
	Content         *string `json:"content,omitempty"`
	VideoURL        *string `json:"video_url,omitempty"`
	OrderIndex      *int    `json:"order_index,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

func (dto CreateLessonDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("title", dto.Title).Required().MaxLength(200)
	v.Field("type", dto.Type).Required().OneOf(LessonTypes, errors.ErrCodeValidationFailed)
	v.Field("video_url", dto.VideoURL).MaxLength(255)
	v.Field("order_index", dto.OrderIndex).MinInt(0, errors.ErrCodeValidationFailed)
	v.Field("duration_minutes", dto.DurationMinutes).MinInt(1, errors.ErrCodeValidationFailed)
	return v.Validate()
}

type UpdateLessonDTO struct {
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	Type            *string `json:"type,omitempty"`
	Content         *string `json:"content,omitempty"`
	VideoURL        *string `json:"video_url,omitempty"`
	OrderIndex      *int    `json:"order_index,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

func (dto UpdateLessonDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if dto.Title != nil {
		v.Field("title", dto.Title).Required().MaxLength(200)
	}
	v.Field("type", dto.Type).OneOf(LessonTypes, errors.ErrCodeValidationFailed)
	v.Field("video_url", dto.VideoURL).MaxLength(255)
	v.Field("order_index", dto.OrderIndex).MinInt(0, errors.ErrCodeValidationFailed)
	v.Field("duration_minutes", dto.DurationMinutes).MinInt(1, errors.ErrCodeValidationFailed)
	return v.Validate()
}
