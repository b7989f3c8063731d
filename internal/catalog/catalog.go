package catalog

import (
	"time"

	rbacDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/rbac"
)

type Permission struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// Role carries its permission set. Lower Level means more authority.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Level       int          `json:"level"`
	Permissions []Permission `json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (r *Role) HasPermission(name string) bool {
	for _, p := range r.Permissions {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (r *Role) PermissionNames() []string {
	names := make([]string, len(r.Permissions))
	for i, p := range r.Permissions {
		names[i] = p.Name
	}
	return names
}

func (r *Role) clone() *Role {
	c := *r
	c.Permissions = append([]Permission(nil), r.Permissions...)
	return &c
}

func PermissionFromDataModel(p *rbacDatamodel.Permission) *Permission {
	return &Permission{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt,
	}
}

func PermissionToDataModel(p *Permission) *rbacDatamodel.Permission {
	return &rbacDatamodel.Permission{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt,
	}
}

func RoleFromDataModel(r *rbacDatamodel.Role) *Role {
	role := &Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Level:       r.Level,
		Permissions: make([]Permission, 0, len(r.Permissions)),
		CreatedAt:   r.CreatedAt,
	}
	for i := range r.Permissions {
		role.Permissions = append(role.Permissions, *PermissionFromDataModel(&r.Permissions[i]))
	}
	return role
}

func RoleToDataModel(r *Role) *rbacDatamodel.Role {
	role := &rbacDatamodel.Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Level:       r.Level,
		CreatedAt:   r.CreatedAt,
	}
	for i := range r.Permissions {
		role.Permissions = append(role.Permissions, *PermissionToDataModel(&r.Permissions[i]))
	}
	return role
}
