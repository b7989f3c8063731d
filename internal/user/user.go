package user

import (
	"time"

	"github.com/frahmantamala/lms-backend/internal/catalog"
	userDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/user"
)

type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func (u *User) IsActiveUser() bool {
	return u.IsActive
}

// Profile is the principal as seen by /users/me: the user plus its effective global grants.
type Profile struct {
	*User
	Roles       []*catalog.Role      `json:"roles"`
	Permissions []catalog.Permission `json:"permissions"`
}

// CourseSummary is a course as listed under a user in ListUsersWithCourses.
type CourseSummary struct {
	ID          int64  `json:"id" db:"course_id"`
	Name        string `json:"name" db:"course_name"`
	Description string `json:"description" db:"course_description"`
	Code        string `json:"code" db:"course_code"`
	MaxCapacity int    `json:"max_capacity" db:"course_max_capacity"`
	IsActive    bool   `json:"is_active" db:"course_is_active"`
}

type WithCourses struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Courses  []CourseSummary `json:"courses"`
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
