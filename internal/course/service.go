package course

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"

	errors "github.com/frahmantamala/lms-backend/internal"
	courseDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/course"
	"github.com/frahmantamala/lms-backend/pkg/logger"
)

var ErrDuplicateCode = stdErrors.New("course: duplicate code")

type RepositoryAPI interface {
	Create(ctx context.Context, course *courseDatamodel.Course) error
	GetByID(ctx context.Context, id int64) (*courseDatamodel.Course, error)
	GetByCode(ctx context.Context, code string) (*courseDatamodel.Course, error)
	List(ctx context.Context, activeOnly bool) ([]*courseDatamodel.Course, error)
	Update(ctx context.Context, course *courseDatamodel.Course) error
	Deactivate(ctx context.Context, id int64) error

	CreateLesson(ctx context.Context, lesson *courseDatamodel.Lesson) error
	GetLessonByID(ctx context.Context, id int64) (*courseDatamodel.Lesson, error)
	ListLessonsByCourse(ctx context.Context, courseID int64) ([]*courseDatamodel.Lesson, error)
	UpdateLesson(ctx context.Context, lesson *courseDatamodel.Lesson) error
	DeleteLesson(ctx context.Context, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) CreateCourse(ctx context.Context, dto CreateCourseDTO) (*Course, error) {
	log := logger.FromOr(ctx, s.logger)

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByCode(ctx, dto.Code)
	if err != nil {
		log.Error("failed to look up course by code", "code", dto.Code, "error", err)
		return nil, errors.NewInternalError("failed to create course", err)
	}
	if existing != nil {
		return nil, courseCodeTaken(dto.Code)
	}

	c := &courseDatamodel.Course{
		Name:        dto.Name,
		Description: dto.Description,
		Code:        dto.Code,
		Credits:     dto.Credits,
		MaxCapacity: DefaultMaxCapacity,
		IsActive:    true,
	}
	if dto.MaxCapacity != nil {
		c.MaxCapacity = *dto.MaxCapacity
	}
	if dto.IsActive != nil {
		c.IsActive = *dto.IsActive
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if stdErrors.Is(err, ErrDuplicateCode) {
			return nil, courseCodeTaken(dto.Code)
		}
		log.Error("failed to create course", "code", dto.Code, "error", err)
		return nil, errors.NewInternalError("failed to create course", err)
	}

	log.Info("course created", "course_id", c.ID, "code", c.Code, "max_capacity", c.MaxCapacity)
	return FromDataModel(c), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Course, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to get course", "course_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get course", err)
	}
	if c == nil {
		return nil, courseNotFound(id)
	}
	return FromDataModel(c), nil
}

func (s *Service) ListCourses(ctx context.Context, activeOnly bool) ([]*Course, error) {
	data, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to list courses", "error", err)
		return nil, errors.NewInternalError("failed to list courses", err)
	}

	courses := make([]*Course, 0, len(data))
	for _, c := range data {
		courses = append(courses, FromDataModel(c))
	}
	return courses, nil
}

func (s *Service) UpdateCourse(ctx context.Context, id int64, dto UpdateCourseDTO) (*Course, error) {
	log := logger.FromOr(ctx, s.logger)

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.Error("failed to get course", "course_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update course", err)
	}
	if c == nil {
		return nil, courseNotFound(id)
	}

	if dto.Code != nil && *dto.Code != c.Code {
		other, err := s.repo.GetByCode(ctx, *dto.Code)
		if err != nil {
			log.Error("failed to look up course by code", "code", *dto.Code, "error", err)
			return nil, errors.NewInternalError("failed to update course", err)
		}
		if other != nil && other.ID != id {
			return nil, courseCodeTaken(*dto.Code)
		}
		c.Code = *dto.Code
	}
	if dto.Name != nil {
		c.Name = *dto.Name
	}
	if dto.Description != nil {
		c.Description = *dto.Description
	}
	if dto.Credits != nil {
		c.Credits = *dto.Credits
	}
	if dto.MaxCapacity != nil {
		c.MaxCapacity = *dto.MaxCapacity
	}
	if dto.IsActive != nil {
		c.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(ctx, c); err != nil {
		if stdErrors.Is(err, ErrDuplicateCode) {
			return nil, courseCodeTaken(c.Code)
		}
		log.Error("failed to update course", "course_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update course", err)
	}

	log.Info("course updated", "course_id", id)
	return FromDataModel(c), nil
}

// DeactivateCourse hides the course from new enrollments. Existing enrollments are kept.
func (s *Service) DeactivateCourse(ctx context.Context, id int64) error {
	log := logger.FromOr(ctx, s.logger)

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		log.Error("failed to deactivate course", "course_id", id, "error", err)
		return errors.NewInternalError("failed to delete course", err)
	}

	log.Info("course deactivated", "course_id", id)
	return nil
}

func (s *Service) CreateLesson(ctx context.Context, courseID int64, dto CreateLessonDTO) (*Lesson, error) {
	log := logger.FromOr(ctx, s.logger)

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !c.IsActiveCourse() {
		return nil, errors.NewBadRequestError(fmt.Sprintf("Course with ID %d is not active", courseID), errors.ErrCodeCourseInactive)
	}

	lesson := &courseDatamodel.Lesson{
		CourseID:        courseID,
		Title:           dto.Title,
		Description:     dto.Description,
		LessonType:      dto.Type,
		Content:         dto.Content,
		VideoURL:        dto.VideoURL,
		DurationMinutes: dto.DurationMinutes,
		IsActive:        true,
	}
	if dto.OrderIndex != nil {
		lesson.OrderIndex = *dto.OrderIndex
	}
	if dto.IsActive != nil {
		lesson.IsActive = *dto.IsActive
	}

	if err := s.repo.CreateLesson(ctx, lesson); err != nil {
		log.Error("failed to create lesson", "course_id", courseID, "error", err)
		return nil, errors.NewInternalError("failed to create lesson", err)
	}

	log.Info("lesson created", "lesson_id", lesson.ID, "course_id", courseID)
	return LessonFromDataModel(lesson), nil
}

func (s *Service) GetLesson(ctx context.Context, id int64) (*Lesson, error) {
	l, err := s.repo.GetLessonByID(ctx, id)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to get lesson", "lesson_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get lesson", err)
	}
	if l == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Lesson with ID %d not found", id), errors.ErrCodeLessonNotFound)
	}
	return LessonFromDataModel(l), nil
}

// ListLessons returns the course's lessons ordered by order_index.
func (s *Service) ListLessons(ctx context.Context, courseID int64) ([]*Lesson, error) {
	if _, err := s.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	data, err := s.repo.ListLessonsByCourse(ctx, courseID)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to list lessons", "course_id", courseID, "error", err)
		return nil, errors.NewInternalError("failed to list lessons", err)
	}

	lessons := make([]*Lesson, 0, len(data))
	for _, l := range data {
		lessons = append(lessons, LessonFromDataModel(l))
	}
	return lessons, nil
}

func (s *Service) UpdateLesson(ctx context.Context, id int64, dto UpdateLessonDTO) (*Lesson, error) {
	log := logger.FromOr(ctx, s.logger)

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	l, err := s.repo.GetLessonByID(ctx, id)
	if err != nil {
		log.Error("failed to get lesson", "lesson_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update lesson", err)
	}
	if l == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Lesson with ID %d not found", id), errors.ErrCodeLessonNotFound)
	}

	if dto.Title != nil {
		l.Title = *dto.Title
	}
	if dto.Description != nil {
		l.Description = *dto.Description
	}
	if dto.Type != nil {
		l.LessonType = *dto.Type
	}
	if dto.Content != nil {
		l.Content = dto.Content
	}
	if dto.VideoURL != nil {
		l.VideoURL = dto.VideoURL
	}
	if dto.OrderIndex != nil {
		l.OrderIndex = *dto.OrderIndex
	}
	if dto.DurationMinutes != nil {
		l.DurationMinutes = dto.DurationMinutes
	}
	if dto.IsActive != nil {
		l.IsActive = *dto.IsActive
	}

	if err := s.repo.UpdateLesson(ctx, l); err != nil {
		log.Error("failed to update lesson", "lesson_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update lesson", err)
	}
	return LessonFromDataModel(l), nil
}

func (s *Service) DeleteLesson(ctx context.Context, id int64) error {
	if _, err := s.GetLesson(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteLesson(ctx, id); err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to delete lesson", "lesson_id", id, "error", err)
		return errors.NewInternalError("failed to delete lesson", err)
	}
	return nil
}

func courseNotFound(id int64) *errors.AppError {
	return errors.NewNotFoundError(fmt.Sprintf("Course with ID %d not found", id), errors.ErrCodeCourseNotFound)
}

func courseCodeTaken(code string) *errors.AppError {
	return errors.NewConflictError(fmt.Sprintf("Course with code '%s' already exists", code), errors.ErrCodeCourseCodeTaken)
}
