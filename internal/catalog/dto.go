package catalog

import (
	errors "github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/core/common/validation"
)

const (
	maxRoleNameLength       = 50
	maxPermissionNameLength = 100
	maxCategoryLength       = 50
)

type CreateRoleDTO struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Level         int     `json:"level"`
	PermissionIDs []int64 `json:"permission_ids,omitempty"`
}

func (dto CreateRoleDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(maxRoleNameLength)
	v.Field("level", dto.Level).MinInt(1, errors.ErrCodeInvalidLevel)
	return v.Validate()
}

// UpdateRoleDTO uses pointers for presence. PermissionIDs nil leaves the set untouched;
// a present empty list clears it.
type UpdateRoleDTO struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Level         *int     `json:"level,omitempty"`
	PermissionIDs *[]int64 `json:"permission_ids,omitempty"`
}

func (dto UpdateRoleDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", dto.Name).Required().MaxLength(maxRoleNameLength)
	}
	v.Field("level", dto.Level).MinInt(1, errors.ErrCodeInvalidLevel)
	return v.Validate()
}

type CreatePermissionDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (dto CreatePermissionDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(maxPermissionNameLength)
	v.Field("category", dto.Category).MaxLength(maxCategoryLength)
	return v.Validate()
}

type UpdatePermissionDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
}

func (dto UpdatePermissionDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", dto.Name).Required().MaxLength(maxPermissionNameLength)
	}
	v.Field("category", dto.Category).MaxLength(maxCategoryLength)
	return v.Validate()
}

type MessageResponse struct {
	Message string `json:"message"`
}
