package rbac

import "time"

type Role struct {
	ID          int64        `gorm:"primaryKey"`
	Name        string       `gorm:"column:name;size:50;uniqueIndex;not null"`
	Description string       `gorm:"column:description"`
	Level       int          `gorm:"column:level;not null"`
	Permissions []Permission `gorm:"many2many:role_permissions;"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime"`
}

func (Role) TableName() string {
	return "roles"
}

type Permission struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;size:100;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	Category    string    `gorm:"column:category;size:50;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Permission) TableName() string {
	return "permissions"
}

// RolePermission is the join row behind Role.Permissions.
type RolePermission struct {
	RoleID       int64 `gorm:"column:role_id;primaryKey"`
	PermissionID int64 `gorm:"column:permission_id;primaryKey"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

// UserRole is a global role grant. A nil ExpiresAt never expires.
type UserRole struct {
	ID         int64      `gorm:"primaryKey"`
	UserID     int64      `gorm:"column:user_id;not null;uniqueIndex:idx_user_roles_user_role"`
	RoleID     int64      `gorm:"column:role_id;not null;uniqueIndex:idx_user_roles_user_role;index"`
	AssignedAt time.Time  `gorm:"column:assigned_at;autoCreateTime"`
	AssignedBy *int64     `gorm:"column:assigned_by"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// EffectiveAt reports whether the grant is still valid at now.
func (ur *UserRole) EffectiveAt(now time.Time) bool {
	return ur.ExpiresAt == nil || ur.ExpiresAt.After(now)
}

// CourseUserRole is a role grant scoped to one course. It has no expiry.
type CourseUserRole struct {
	ID         int64     `gorm:"primaryKey"`
	CourseID   int64     `gorm:"column:course_id;not null;uniqueIndex:idx_course_user_roles_triple"`
	UserID     int64     `gorm:"column:user_id;not null;uniqueIndex:idx_course_user_roles_triple"`
	RoleID     int64     `gorm:"column:role_id;not null;uniqueIndex:idx_course_user_roles_triple;index"`
	AssignedAt time.Time `gorm:"column:assigned_at;autoCreateTime"`
}

func (CourseUserRole) TableName() string {
	return "course_user_roles"
}
