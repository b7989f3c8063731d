package user

import (
	errors "github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/core/common/validation"
)

const minPasswordLength = 6

type CreateUserDTO struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	IsActive *bool  `json:"is_active,omitempty"`
}

func (dto CreateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", dto.Email).Required().MaxLength(255).Email()
	v.Field("username", dto.Username).Required().MinLength(3).MaxLength(100)
	v.Field("password", dto.Password).Required().MinLength(minPasswordLength)
	return v.Validate()
}

type UpdateUserDTO struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (dto UpdateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if dto.Email != nil {
		v.Field("email", dto.Email).Required().MaxLength(255).Email()
	}
	if dto.Username != nil {
		v.Field("username", dto.Username).Required().MinLength(3).MaxLength(100)
	}
	if dto.Password != nil {
		v.Field("password", dto.Password).Required().MinLength(minPasswordLength)
	}
	return v.Validate()
}
