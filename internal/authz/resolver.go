package authz

import (
	"context"
	"sort"
	"time"

	errors "github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/catalog"
)

// Resolver computes effective roles and permissions. It only reads; the evaluation
// time is always passed in by the caller.
type Resolver struct {
	repo  RepositoryAPI
	roles RoleSource
}

func NewResolver(repo RepositoryAPI, roles RoleSource) *Resolver {
	return &Resolver{
		repo:  repo,
		roles: roles,
	}
}

// EffectiveGlobalRoles returns the roles granted through assignments that are
// unexpired at now. A role held through several rows counts if any row is unexpired.
func (r *Resolver) EffectiveGlobalRoles(ctx context.Context, userID int64, now time.Time) ([]*catalog.Role, error) {
	rows, err := r.repo.ListUserRoles(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError("failed to read role assignments", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if row.EffectiveAt(now) {
			ids = append(ids, row.RoleID)
		}
	}
	return r.rolesByIDs(ctx, ids)
}

// EffectiveCourseRoles returns the roles held in one course. Course grants never expire,
// so the evaluation time is unused.
func (r *Resolver) EffectiveCourseRoles(ctx context.Context, userID, courseID int64, _ time.Time) ([]*catalog.Role, error) {
	rows, err := r.repo.ListCourseUserRoles(ctx, userID, courseID)
	if err != nil {
		return nil, errors.NewInternalError("failed to read course role assignments", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.RoleID)
	}
	return r.rolesByIDs(ctx, ids)
}

// EffectiveRoles dispatches on scope. Course scope reads course grants only and never
// falls back to global roles.
func (r *Resolver) EffectiveRoles(ctx context.Context, userID int64, scope Scope, now time.Time) ([]*catalog.Role, error) {
	if scope.IsCourse() {
		return r.EffectiveCourseRoles(ctx, userID, *scope.CourseID, now)
	}
	return r.EffectiveGlobalRoles(ctx, userID, now)
}

// EffectivePermissions is the union of permissions over the effective roles in scope,
// deduplicated by permission id and sorted by name.
func (r *Resolver) EffectivePermissions(ctx context.Context, userID int64, scope Scope, now time.Time) ([]catalog.Permission, error) {
	roles, err := r.EffectiveRoles(ctx, userID, scope, now)
	if err != nil {
		return nil, err
	}
	return unionPermissions(roles), nil
}

func (r *Resolver) HasPermission(ctx context.Context, userID int64, permission string, scope Scope, now time.Time) (bool, error) {
	roles, err := r.EffectiveRoles(ctx, userID, scope, now)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.HasPermission(permission) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Resolver) rolesByIDs(ctx context.Context, ids []int64) ([]*catalog.Role, error) {
	if len(ids) == 0 {
		return []*catalog.Role{}, nil
	}
	return r.roles.RolesByIDs(ctx, ids)
}

func unionPermissions(roles []*catalog.Role) []catalog.Permission {
	seen := make(map[int64]struct{})
	permissions := make([]catalog.Permission, 0)
	for _, role := range roles {
		for _, p := range role.Permissions {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			permissions = append(permissions, p)
		}
	}
	sort.Slice(permissions, func(i, j int) bool { return permissions[i].Name < permissions[j].Name })
	return permissions
}
