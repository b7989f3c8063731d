package userprofile

import (
	errors "github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/core/common/validation"
)

type CreateProfileDTO struct {
	UserID      int64   `json:"user_id"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

func (dto CreateProfileDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required().MinInt(1, errors.ErrCodeInvalidID)
	validateDetails(v, dto.FirstName, dto.LastName, dto.DateOfBirth, dto.PhoneNumber, dto.AvatarURL)
	return v.Validate()
}

type UpdateProfileDTO struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

func (dto UpdateProfileDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	validateDetails(v, dto.FirstName, dto.LastName, dto.DateOfBirth, dto.PhoneNumber, dto.AvatarURL)
	return v.Validate()
}

func validateDetails(v *validation.ValidationBuilder, firstName, lastName, dateOfBirth, phone, avatar *string) {
	v.Field("first_name", firstName).MaxLength(100)
	v.Field("last_name", lastName).MaxLength(100)
	v.Field("date_of_birth", dateOfBirth).Date(errors.ErrCodeInvalidDate)
	v.Field("phone_number", phone).MaxLength(20)
	v.Field("avatar_url", avatar).MaxLength(255)
}
