package catalog

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"sort"

	errors "github.com/frahmantamala/lms-backend/internal"
	rbacDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/rbac"
	"github.com/frahmantamala/lms-backend/pkg/logger"
)

// ErrDuplicate is returned by repositories when a unique constraint rejects a write.
var ErrDuplicate = stdErrors.New("catalog: duplicate key")

type RepositoryAPI interface {
	CreateRole(ctx context.Context, role *rbacDatamodel.Role) error
	GetRoleByID(ctx context.Context, id int64) (*rbacDatamodel.Role, error)
	GetRoleByName(ctx context.Context, name string) (*rbacDatamodel.Role, error)
	GetRolesByIDs(ctx context.Context, ids []int64) ([]*rbacDatamodel.Role, error)
	ListRoles(ctx context.Context) ([]*rbacDatamodel.Role, error)
	// UpdateRole writes scalar fields; when replacePermissions is set the join rows
	// are rewritten to match role.Permissions.
	UpdateRole(ctx context.Context, role *rbacDatamodel.Role, replacePermissions bool) error
	DeleteRole(ctx context.Context, id int64) error

	CreatePermission(ctx context.Context, permission *rbacDatamodel.Permission) error
	GetPermissionByID(ctx context.Context, id int64) (*rbacDatamodel.Permission, error)
	GetPermissionByName(ctx context.Context, name string) (*rbacDatamodel.Permission, error)
	GetPermissionsByIDs(ctx context.Context, ids []int64) ([]*rbacDatamodel.Permission, error)
	ListPermissions(ctx context.Context) ([]*rbacDatamodel.Permission, error)
	ListPermissionsByCategory(ctx context.Context, category string) ([]*rbacDatamodel.Permission, error)
	UpdatePermission(ctx context.Context, permission *rbacDatamodel.Permission) error
	DeletePermission(ctx context.Context, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	cache  *RoleCache
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, cache *RoleCache, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *Service) CreateRole(ctx context.Context, dto CreateRoleDTO) (*Role, error) {
	log := logger.FromOr(ctx, s.logger)

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetRoleByName(ctx, dto.Name)
	if err != nil {
		log.Error("failed to look up role by name", "name", dto.Name, "error", err)
		return nil, errors.NewInternalError("failed to create role", err)
	}
	if existing != nil {
		return nil, roleNameTaken(dto.Name)
	}

	permissions, err := s.resolvePermissions(ctx, dto.PermissionIDs)
	if err != nil {
		return nil, err
	}

	role := &rbacDatamodel.Role{
		Name:        dto.Name,
		Description: dto.Description,
		Level:       dto.Level,
		Permissions: permissions,
	}
	if err := s.repo.CreateRole(ctx, role); err != nil {
		if stdErrors.Is(err, ErrDuplicate) {
			return nil, roleNameTaken(dto.Name)
		}
		log.Error("failed to create role", "name", dto.Name, "error", err)
		return nil, errors.NewInternalError("failed to create role", err)
	}

	log.Info("role created", "role_id", role.ID, "name", role.Name, "permissions", len(permissions))
	return RoleFromDataModel(role), nil
}

func (s *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	if role, ok := s.cache.Get(id); ok {
		return role, nil
	}

	generation := s.cache.Generation()
	data, err := s.repo.GetRoleByID(ctx, id)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to get role", "role_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get role", err)
	}
	if data == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Role with ID %d not found", id), errors.ErrCodeRoleNotFound)
	}

	role := RoleFromDataModel(data)
	s.cache.Add(role, generation)
	return role, nil
}

func (s *Service) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	data, err := s.repo.GetRoleByName(ctx, name)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to get role by name", "name", name, "error", err)
		return nil, errors.NewInternalError("failed to get role", err)
	}
	if data == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Role '%s' not found", name), errors.ErrCodeRoleNotFound)
	}
	return RoleFromDataModel(data), nil
}

// RolesByIDs loads roles with their permissions, serving what it can from the cache.
// Unknown ids are skipped. Output is ordered by role name.
func (s *Service) RolesByIDs(ctx context.Context, ids []int64) ([]*Role, error) {
	roles := make([]*Role, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	var missing []int64

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if role, ok := s.cache.Get(id); ok {
			roles = append(roles, role)
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		generation := s.cache.Generation()
		data, err := s.repo.GetRolesByIDs(ctx, missing)
		if err != nil {
			logger.FromOr(ctx, s.logger).Error("failed to load roles", "role_ids", missing, "error", err)
			return nil, errors.NewInternalError("failed to load roles", err)
		}
		for _, d := range data {
			role := RoleFromDataModel(d)
			s.cache.Add(role, generation)
			roles = append(roles, role)
		}
	}

	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

// ListRoles returns every role ordered by level, most privileged first.
func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	data, err := s.repo.ListRoles(ctx)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to list roles", "error", err)
		return nil, errors.NewInternalError("failed to list roles", err)
	}

	roles := make([]*Role, 0, len(data))
	for _, d := range data {
		roles = append(roles, RoleFromDataModel(d))
	}
	return roles, nil
}

func (s *Service) UpdateRole(ctx context.Context, id int64, dto UpdateRoleDTO) (*Role, error) {
	log := logger.FromOr(ctx, s.logger)

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role, err := s.repo.GetRoleByID(ctx, id)
	if err != nil {
		log.Error("failed to get role", "role_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update role", err)
	}
	if role == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Role with ID %d not found", id), errors.ErrCodeRoleNotFound)
	}

	if dto.Name != nil && *dto.Name != role.Name {
		other, err := s.repo.GetRoleByName(ctx, *dto.Name)
		if err != nil {
			log.Error("failed to look up role by name", "name", *dto.Name, "error", err)
			return nil, errors.NewInternalError("failed to update role", err)
		}
		if other != nil && other.ID != id {
			return nil, roleNameTaken(*dto.Name)
		}
		role.Name = *dto.Name
	}
	if dto.Description != nil {
		role.Description = *dto.Description
	}
	if dto.Level != nil {
		role.Level = *dto.Level
	}

	replace := dto.PermissionIDs != nil
	if replace {
		permissions, err := s.resolvePermissions(ctx, *dto.PermissionIDs)
		if err != nil {
			return nil, err
		}
		role.Permissions = permissions
	}

	if err := s.repo.UpdateRole(ctx, role, replace); err != nil {
		if stdErrors.Is(err, ErrDuplicate) {
			return nil, roleNameTaken(role.Name)
		}
		log.Error("failed to update role", "role_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update role", err)
	}
	s.cache.Remove(id)

	log.Info("role updated", "role_id", id, "permissions_replaced", replace)
	return RoleFromDataModel(role), nil
}

// DeleteRole removes the role together with its permission links and every
// global or course-scoped assignment of it.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	log := logger.FromOr(ctx, s.logger)

	role, err := s.repo.GetRoleByID(ctx, id)
	if err != nil {
		log.Error("failed to get role", "role_id", id, "error", err)
		return errors.NewInternalError("failed to delete role", err)
	}
	if role == nil {
		return errors.NewNotFoundError(fmt.Sprintf("Role with ID %d not found", id), errors.ErrCodeRoleNotFound)
	}

	if err := s.repo.DeleteRole(ctx, id); err != nil {
		log.Error("failed to delete role", "role_id", id, "error", err)
		return errors.NewInternalError("failed to delete role", err)
	}
	s.cache.Remove(id)

	log.Info("role deleted", "role_id", id, "name", role.Name)
	return nil
}

func (s *Service) CreatePermission(ctx context.Context, dto CreatePermissionDTO) (*Permission, error) {
	log := logger.FromOr(ctx, s.logger)

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetPermissionByName(ctx, dto.Name)
	if err != nil {
		log.Error("failed to look up permission by name", "name", dto.Name, "error", err)
		return nil, errors.NewInternalError("failed to create permission", err)
	}
	if existing != nil {
		return nil, permissionNameTaken(dto.Name)
	}

	permission := &rbacDatamodel.Permission{
		Name:        dto.Name,
		Description: dto.Description,
		Category:    dto.Category,
	}
	if err := s.repo.CreatePermission(ctx, permission); err != nil {
		if stdErrors.Is(err, ErrDuplicate) {
			return nil, permissionNameTaken(dto.Name)
		}
		log.Error("failed to create permission", "name", dto.Name, "error", err)
		return nil, errors.NewInternalError("failed to create permission", err)
	}

	log.Info("permission created", "permission_id", permission.ID, "name", permission.Name)
	return PermissionFromDataModel(permission), nil
}

func (s *Service) GetPermission(ctx context.Context, id int64) (*Permission, error) {
	data, err := s.repo.GetPermissionByID(ctx, id)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to get permission", "permission_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get permission", err)
	}
	if data == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Permission with ID %d not found", id), errors.ErrCodePermissionNotFound)
	}
	return PermissionFromDataModel(data), nil
}

func (s *Service) GetPermissionByName(ctx context.Context, name string) (*Permission, error) {
	data, err := s.repo.GetPermissionByName(ctx, name)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to get permission by name", "name", name, "error", err)
		return nil, errors.NewInternalError("failed to get permission", err)
	}
	if data == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Permission '%s' not found", name), errors.ErrCodePermissionNotFound)
	}
	return PermissionFromDataModel(data), nil
}

// ListPermissions returns all permissions, or only those in category when it is non-empty.
func (s *Service) ListPermissions(ctx context.Context, category string) ([]*Permission, error) {
	var (
		data []*rbacDatamodel.Permission
		err  error
	)
	if category == "" {
		data, err = s.repo.ListPermissions(ctx)
	} else {
		data, err = s.repo.ListPermissionsByCategory(ctx, category)
	}
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to list permissions", "category", category, "error", err)
		return nil, errors.NewInternalError("failed to list permissions", err)
	}

	permissions := make([]*Permission, 0, len(data))
	for _, d := range data {
		permissions = append(permissions, PermissionFromDataModel(d))
	}
	return permissions, nil
}

func (s *Service) UpdatePermission(ctx context.Context, id int64, dto UpdatePermissionDTO) (*Permission, error) {
	log := logger.FromOr(ctx, s.logger)

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	permission, err := s.repo.GetPermissionByID(ctx, id)
	if err != nil {
		log.Error("failed to get permission", "permission_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update permission", err)
	}
	if permission == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Permission with ID %d not found", id), errors.ErrCodePermissionNotFound)
	}

	if dto.Name != nil && *dto.Name != permission.Name {
		other, err := s.repo.GetPermissionByName(ctx, *dto.Name)
		if err != nil {
			log.Error("failed to look up permission by name", "name", *dto.Name, "error", err)
			return nil, errors.NewInternalError("failed to update permission", err)
		}
		if other != nil && other.ID != id {
			return nil, permissionNameTaken(*dto.Name)
		}
		permission.Name = *dto.Name
	}
	if dto.Description != nil {
		permission.Description = *dto.Description
	}
	if dto.Category != nil {
		permission.Category = *dto.Category
	}

	if err := s.repo.UpdatePermission(ctx, permission); err != nil {
		if stdErrors.Is(err, ErrDuplicate) {
			return nil, permissionNameTaken(permission.Name)
		}
		log.Error("failed to update permission", "permission_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update permission", err)
	}
	s.cache.Purge()

	log.Info("permission updated", "permission_id", id)
	return PermissionFromDataModel(permission), nil
}

func (s *Service) DeletePermission(ctx context.Context, id int64) error {
	log := logger.FromOr(ctx, s.logger)

	permission, err := s.repo.GetPermissionByID(ctx, id)
	if err != nil {
		log.Error("failed to get permission", "permission_id", id, "error", err)
		return errors.NewInternalError("failed to delete permission", err)
	}
	if permission == nil {
		return errors.NewNotFoundError(fmt.Sprintf("Permission with ID %d not found", id), errors.ErrCodePermissionNotFound)
	}

	if err := s.repo.DeletePermission(ctx, id); err != nil {
		log.Error("failed to delete permission", "permission_id", id, "error", err)
		return errors.NewInternalError("failed to delete permission", err)
	}
	s.cache.Purge()

	log.Info("permission deleted", "permission_id", id, "name", permission.Name)
	return nil
}

// resolvePermissions fails unless every distinct id names an existing permission.
func (s *Service) resolvePermissions(ctx context.Context, ids []int64) ([]rbacDatamodel.Permission, error) {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return []rbacDatamodel.Permission{}, nil
	}

	found, err := s.repo.GetPermissionsByIDs(ctx, unique)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to resolve permissions", "permission_ids", unique, "error", err)
		return nil, errors.NewInternalError("failed to resolve permissions", err)
	}
	if len(found) != len(unique) {
		return nil, errors.NewBadRequestError("One or more permission IDs are invalid", errors.ErrCodeInvalidPermissionIDs)
	}

	permissions := make([]rbacDatamodel.Permission, 0, len(found))
	for _, p := range found {
		permissions = append(permissions, *p)
	}
	return permissions, nil
}

func roleNameTaken(name string) *errors.AppError {
	return errors.NewConflictError(fmt.Sprintf("Role with name '%s' already exists", name), errors.ErrCodeRoleNameTaken)
}

func permissionNameTaken(name string) *errors.AppError {
	return errors.NewConflictError(fmt.Sprintf("Permission with name '%s' already exists", name), errors.ErrCodePermissionNameTaken)
}
