package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/lms-backend/internal/catalog"
	"github.com/frahmantamala/lms-backend/internal/core/database"
	rbacDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/rbac"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) catalog.RepositoryAPI {
	return &CatalogRepository{db: db}
}

func preloadPermissions(db *gorm.DB) *gorm.DB {
	return db.Preload("Permissions", func(db *gorm.DB) *gorm.DB {
		return db.Order("permissions.name ASC")
	})
}

func (r *CatalogRepository) CreateRole(ctx context.Context, role *rbacDatamodel.Role) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Permissions").Create(role).Error; err != nil {
			return err
		}
		return insertRolePermissions(tx, role.ID, role.Permissions)
	}))
}

func (r *CatalogRepository) GetRoleByID(ctx context.Context, id int64) (*rbacDatamodel.Role, error) {
	var role rbacDatamodel.Role
	err := preloadPermissions(r.db.WithContext(ctx)).Where("id = ?", id).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *CatalogRepository) GetRoleByName(ctx context.Context, name string) (*rbacDatamodel.Role, error) {
	var role rbacDatamodel.Role
	err := preloadPermissions(r.db.WithContext(ctx)).Where("name = ?", name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *CatalogRepository) GetRolesByIDs(ctx context.Context, ids []int64) ([]*rbacDatamodel.Role, error) {
	var roles []*rbacDatamodel.Role
	if len(ids) == 0 {
		return roles, nil
	}
	err := preloadPermissions(r.db.WithContext(ctx)).Where("id IN ?", ids).Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *CatalogRepository) ListRoles(ctx context.Context) ([]*rbacDatamodel.Role, error) {
	var roles []*rbacDatamodel.Role
	err := preloadPermissions(r.db.WithContext(ctx)).Order("level ASC").Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *CatalogRepository) UpdateRole(ctx context.Context, role *rbacDatamodel.Role, replacePermissions bool) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&rbacDatamodel.Role{}).Where("id = ?", role.ID).Updates(map[string]interface{}{
			"name":        role.Name,
			"description": role.Description,
			"level":       role.Level,
		}).Error
		if err != nil {
			return err
		}
		if !replacePermissions {
			return nil
		}
		if err := tx.Where("role_id = ?", role.ID).Delete(&rbacDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		return insertRolePermissions(tx, role.ID, role.Permissions)
	}))
}

func (r *CatalogRepository) DeleteRole(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&rbacDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&rbacDatamodel.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&rbacDatamodel.CourseUserRole{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&rbacDatamodel.Role{}).Error
	})
}

func (r *CatalogRepository) CreatePermission(ctx context.Context, permission *rbacDatamodel.Permission) error {
	return translate(r.db.WithContext(ctx).Create(permission).Error)
}

func (r *CatalogRepository) GetPermissionByID(ctx context.Context, id int64) (*rbacDatamodel.Permission, error) {
	var permission rbacDatamodel.Permission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&permission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &permission, nil
}

func (r *CatalogRepository) GetPermissionByName(ctx context.Context, name string) (*rbacDatamodel.Permission, error) {
	var permission rbacDatamodel.Permission
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&permission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &permission, nil
}

func (r *CatalogRepository) GetPermissionsByIDs(ctx context.Context, ids []int64) ([]*rbacDatamodel.Permission, error) {
	var permissions []*rbacDatamodel.Permission
	if len(ids) == 0 {
		return permissions, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&permissions).Error
	return permissions, err
}

func (r *CatalogRepository) ListPermissions(ctx context.Context) ([]*rbacDatamodel.Permission, error) {
	var permissions []*rbacDatamodel.Permission
	err := r.db.WithContext(ctx).Order("category ASC").Order("name ASC").Find(&permissions).Error
	return permissions, err
}

func (r *CatalogRepository) ListPermissionsByCategory(ctx context.Context, category string) ([]*rbacDatamodel.Permission, error) {
	var permissions []*rbacDatamodel.Permission
	err := r.db.WithContext(ctx).Where("category = ?", category).Order("name ASC").Find(&permissions).Error
	return permissions, err
}

func (r *CatalogRepository) UpdatePermission(ctx context.Context, permission *rbacDatamodel.Permission) error {
	err := r.db.WithContext(ctx).Model(&rbacDatamodel.Permission{}).Where("id = ?", permission.ID).Updates(map[string]interface{}{
		"name":        permission.Name,
		"description": permission.Description,
		"category":    permission.Category,
	}).Error
	return translate(err)
}

func (r *CatalogRepository) DeletePermission(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&rbacDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&rbacDatamodel.Permission{}).Error
	})
}

func insertRolePermissions(tx *gorm.DB, roleID int64, permissions []rbacDatamodel.Permission) error {
	if len(permissions) == 0 {
		return nil
	}
	rows := make([]rbacDatamodel.RolePermission, 0, len(permissions))
	for _, p := range permissions {
		rows = append(rows, rbacDatamodel.RolePermission{RoleID: roleID, PermissionID: p.ID})
	}
	return tx.Create(&rows).Error
}

func translate(err error) error {
	if database.IsUniqueViolation(err) {
		return catalog.ErrDuplicate
	}
	return err
}
