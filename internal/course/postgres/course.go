package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/lms-backend/internal/core/database"
	courseDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/course"
	"github.com/frahmantamala/lms-backend/internal/course"
	"gorm.io/gorm"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) course.RepositoryAPI {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, c *courseDatamodel.Course) error {
	err := r.db.WithContext(ctx).Create(c).Error
	if database.IsUniqueViolation(err) {
		return course.ErrDuplicateCode
	}
	return err
}

func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*courseDatamodel.Course, error) {
	var c courseDatamodel.Course
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*courseDatamodel.Course, error) {
	var c courseDatamodel.Course
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) List(ctx context.Context, activeOnly bool) ([]*courseDatamodel.Course, error) {
	var courses []*courseDatamodel.Course
	q := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Update(ctx context.Context, c *courseDatamodel.Course) error {
	err := r.db.WithContext(ctx).Save(c).Error
	if database.IsUniqueViolation(err) {
		return course.ErrDuplicateCode
	}
	return err
}

func (r *CourseRepository) Deactivate(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&courseDatamodel.Course{}).Where("id = ?", id).Update("is_active", false).Error
}

func (r *CourseRepository) CreateLesson(ctx context.Context, lesson *courseDatamodel.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *CourseRepository) GetLessonByID(ctx context.Context, id int64) (*courseDatamodel.Lesson, error) {
	var l courseDatamodel.Lesson
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *CourseRepository) ListLessonsByCourse(ctx context.Context, courseID int64) ([]*courseDatamodel.Lesson, error) {
	var lessons []*courseDatamodel.Lesson
	err := r.db.WithContext(ctx).Where("course_id = ?", courseID).Order("order_index ASC").Order("id ASC").Find(&lessons).Error
	return lessons, err
}

func (r *CourseRepository) UpdateLesson(ctx context.Context, lesson *courseDatamodel.Lesson) error {
	return r.db.WithContext(ctx).Save(lesson).Error
}

func (r *CourseRepository) DeleteLesson(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&courseDatamodel.Lesson{}).Error
}
