package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/lms-backend/internal/authz"
	"github.com/frahmantamala/lms-backend/internal/core/database"
	rbacDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/rbac"
	"gorm.io/gorm"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) authz.RepositoryAPI {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) ListUserRoles(ctx context.Context, userID int64) ([]*rbacDatamodel.UserRole, error) {
	var rows []*rbacDatamodel.UserRole
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("assigned_at ASC").Find(&rows).Error
	return rows, err
}

func (r *AssignmentRepository) GetUserRole(ctx context.Context, userID, roleID int64) (*rbacDatamodel.UserRole, error) {
	var row rbacDatamodel.UserRole
	err := r.db.WithContext(ctx).Where("user_id = ? AND role_id = ?", userID, roleID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *AssignmentRepository) CreateUserRole(ctx context.Context, assignment *rbacDatamodel.UserRole) error {
	err := r.db.WithContext(ctx).Create(assignment).Error
	if database.IsUniqueViolation(err) {
		return authz.ErrDuplicateAssignment
	}
	return err
}

func (r *AssignmentRepository) DeleteUserRole(ctx context.Context, userID, roleID int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&rbacDatamodel.UserRole{})
	return res.RowsAffected > 0, res.Error
}

func (r *AssignmentRepository) ListCourseUserRoles(ctx context.Context, userID, courseID int64) ([]*rbacDatamodel.CourseUserRole, error) {
	var rows []*rbacDatamodel.CourseUserRole
	err := r.db.WithContext(ctx).Where("user_id = ? AND course_id = ?", userID, courseID).Order("assigned_at ASC").Find(&rows).Error
	return rows, err
}

func (r *AssignmentRepository) GetCourseUserRole(ctx context.Context, courseID, userID, roleID int64) (*rbacDatamodel.CourseUserRole, error) {
	var row rbacDatamodel.CourseUserRole
	err := r.db.WithContext(ctx).Where("course_id = ? AND user_id = ? AND role_id = ?", courseID, userID, roleID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *AssignmentRepository) CreateCourseUserRole(ctx context.Context, assignment *rbacDatamodel.CourseUserRole) error {
	err := r.db.WithContext(ctx).Create(assignment).Error
	if database.IsUniqueViolation(err) {
		return authz.ErrDuplicateAssignment
	}
	return err
}

func (r *AssignmentRepository) DeleteCourseUserRole(ctx context.Context, courseID, userID, roleID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ? AND role_id = ?", courseID, userID, roleID).
		Delete(&rbacDatamodel.CourseUserRole{})
	return res.RowsAffected > 0, res.Error
}
