package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/lms-backend/internal/core/database"
	courseDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/course"
	enrollmentDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/enrollment"
	userDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/user"
	"github.com/frahmantamala/lms-backend/internal/enrollment"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) enrollment.Repository {
	return &EnrollmentRepository{db: db}
}

// WithTx runs fn in a transaction. Returning an error, or a cancelled ctx, rolls it back.
func (r *EnrollmentRepository) WithTx(ctx context.Context, fn func(tx enrollment.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&EnrollmentRepository{db: tx})
	})
}

func (r *EnrollmentRepository) GetUser(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// LockCourse issues SELECT ... FOR UPDATE. The sqlite dialect drops the locking
// clause; there write transactions are serialised by BEGIN IMMEDIATE instead.
func (r *EnrollmentRepository) LockCourse(ctx context.Context, id int64) (*courseDatamodel.Course, error) {
	var c courseDatamodel.Course
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *EnrollmentRepository) CountOccupyingSeats(ctx context.Context, courseID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&enrollmentDatamodel.Enrollment{}).
		Where("course_id = ? AND status IN ?", courseID, enrollment.CapacityStatuses).
		Count(&n).Error
	return n, err
}

func (r *EnrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID int64) (*enrollmentDatamodel.Enrollment, error) {
	var e enrollmentDatamodel.Enrollment
	err := r.db.WithContext(ctx).Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *enrollmentDatamodel.Enrollment) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error
	if database.IsUniqueViolation(err) {
		return enrollment.ErrDuplicate
	}
	return err
}

func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*enrollmentDatamodel.Enrollment, error) {
	var e enrollmentDatamodel.Enrollment
	err := r.withRelations(ctx).First(&e, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) Update(ctx context.Context, e *enrollmentDatamodel.Enrollment) error {
	return r.db.WithContext(ctx).
		Model(&enrollmentDatamodel.Enrollment{ID: e.ID}).
		Updates(map[string]interface{}{
			"status":          e.Status,
			"grade":           e.Grade,
			"enrollment_date": e.EnrollmentDate,
		}).Error
}

func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&enrollmentDatamodel.Enrollment{}, id).Error
}

func (r *EnrollmentRepository) List(ctx context.Context) ([]*enrollmentDatamodel.Enrollment, error) {
	var rows []*enrollmentDatamodel.Enrollment
	err := r.withRelations(ctx).Order("user_id ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID int64) ([]*enrollmentDatamodel.Enrollment, error) {
	var rows []*enrollmentDatamodel.Enrollment
	err := r.withRelations(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID int64) ([]*enrollmentDatamodel.Enrollment, error) {
	var rows []*enrollmentDatamodel.Enrollment
	err := r.withRelations(ctx).Where("course_id = ?", courseID).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *EnrollmentRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("User").Preload("Course")
}
