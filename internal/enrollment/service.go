package enrollment

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/lms-backend/internal"
	courseDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/course"
	enrollmentDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/enrollment"
	userDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/user"
	"github.com/frahmantamala/lms-backend/internal/core/events"
	"github.com/frahmantamala/lms-backend/pkg/logger"
)

// ErrDuplicate is returned by repositories when the (user, course) unique index rejects an insert.
var ErrDuplicate = stdErrors.New("enrollment: duplicate user and course")

// Repository is the transactional store behind the service. Repositories handed to a
// WithTx callback run every call inside that transaction.
type Repository interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	GetUser(ctx context.Context, id int64) (*userDatamodel.User, error)
	// LockCourse reads the course row and holds a write lock on it until the
	// surrounding transaction ends.
	LockCourse(ctx context.Context, id int64) (*courseDatamodel.Course, error)
	CountOccupyingSeats(ctx context.Context, courseID int64) (int64, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID int64) (*enrollmentDatamodel.Enrollment, error)

	Create(ctx context.Context, e *enrollmentDatamodel.Enrollment) error
	GetByID(ctx context.Context, id int64) (*enrollmentDatamodel.Enrollment, error)
	Update(ctx context.Context, e *enrollmentDatamodel.Enrollment) error
	Delete(ctx context.Context, id int64) error

	List(ctx context.Context) ([]*enrollmentDatamodel.Enrollment, error)
	ListByUser(ctx context.Context, userID int64) ([]*enrollmentDatamodel.Enrollment, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*enrollmentDatamodel.Enrollment, error)
}

// Service is the enrollment transaction manager. Every mutation runs in one transaction
// and events are published only after it commits.
type Service struct {
	repo      Repository
	publisher events.Publisher
	clock     func() time.Time
	logger    *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, clock func() time.Time, logger *slog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateEnrollmentDTO) (*Enrollment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	status := StatusPending
	if dto.Status != nil {
		status = *dto.Status
	}
	date := s.clock()
	if dto.EnrollmentDate != nil {
		date = *dto.EnrollmentDate
	}

	var created *enrollmentDatamodel.Enrollment
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		if err := s.checkUser(ctx, tx, dto.UserID); err != nil {
			return err
		}
		e, err := s.enroll(ctx, tx, dto.UserID, dto.CourseID, status, date)
		if err != nil {
			return err
		}
		created = e
		return nil
	})
	if err != nil {
		return nil, s.txError(ctx, "failed to create enrollment", err)
	}

	logger.FromOr(ctx, s.logger).Info("enrollment created",
		"enrollment_id", created.ID,
		"user_id", created.UserID,
		"course_id", created.CourseID,
		"status", created.Status)
	s.publish(ctx, events.EventTypeEnrollmentCreated, created)

	return s.GetByID(ctx, created.ID)
}

// BulkEnroll enrolls one user into every listed course, checking courses in order.
// Any failure rolls back the whole batch.
func (s *Service) BulkEnroll(ctx context.Context, dto BulkEnrollDTO) ([]*Enrollment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := s.clock()
	created := make([]*enrollmentDatamodel.Enrollment, 0, len(dto.CourseIDs))
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		if err := s.checkUser(ctx, tx, dto.UserID); err != nil {
			return err
		}
		for _, courseID := range dto.CourseIDs {
			e, err := s.enroll(ctx, tx, dto.UserID, courseID, StatusPending, now)
			if err != nil {
				return err
			}
			created = append(created, e)
		}
		return nil
	})
	if err != nil {
		return nil, s.txError(ctx, "failed to enroll in courses", err)
	}

	logger.FromOr(ctx, s.logger).Info("bulk enrollment completed",
		"user_id", dto.UserID,
		"courses", len(created))

	out := make([]*Enrollment, 0, len(created))
	for _, e := range created {
		s.publish(ctx, events.EventTypeEnrollmentCreated, e)
		loaded, err := s.GetByID(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, loaded)
	}
	return out, nil
}

// Update applies a status, grade or date patch. Capacity is not re-checked, so a
// cancelled enrollment moved back to active may push a course over its limit.
func (s *Service) Update(ctx context.Context, id int64, dto UpdateEnrollmentDTO) (*Enrollment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var (
		updated  *enrollmentDatamodel.Enrollment
		reseated bool
	)
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		e, err := tx.GetByID(ctx, id)
		if err != nil {
			return errors.NewInternalError("failed to load enrollment", err)
		}
		if e == nil {
			return enrollmentNotFound(id)
		}

		seated := OccupiesSeat(e.Status)
		if dto.Status != nil {
			e.Status = *dto.Status
		}
		if dto.Grade != nil {
			e.Grade = dto.Grade
		}
		if dto.EnrollmentDate != nil {
			e.EnrollmentDate = dateOnly(*dto.EnrollmentDate)
		}

		if err := tx.Update(ctx, e); err != nil {
			return errors.NewInternalError("failed to update enrollment", err)
		}
		updated = e
		reseated = !seated && OccupiesSeat(e.Status)
		return nil
	})
	if err != nil {
		return nil, s.txError(ctx, "failed to update enrollment", err)
	}

	log := logger.FromOr(ctx, s.logger)
	if reseated {
		uncheckedReseatsTotal.Inc()
		log.Warn("enrollment took a seat without a capacity check",
			"enrollment_id", id,
			"course_id", updated.CourseID,
			"status", updated.Status)
	}
	log.Info("enrollment updated",
		"enrollment_id", id,
		"status", updated.Status,
		"grade", updated.Grade)
	s.publish(ctx, events.EventTypeEnrollmentUpdated, updated)

	return s.GetByID(ctx, id)
}

func (s *Service) Remove(ctx context.Context, id int64) error {
	var removed *enrollmentDatamodel.Enrollment
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		e, err := tx.GetByID(ctx, id)
		if err != nil {
			return errors.NewInternalError("failed to load enrollment", err)
		}
		if e == nil {
			return enrollmentNotFound(id)
		}
		if err := tx.Delete(ctx, id); err != nil {
			return errors.NewInternalError("failed to remove enrollment", err)
		}
		removed = e
		return nil
	})
	if err != nil {
		return s.txError(ctx, "failed to remove enrollment", err)
	}

	logger.FromOr(ctx, s.logger).Info("enrollment removed",
		"enrollment_id", id,
		"user_id", removed.UserID,
		"course_id", removed.CourseID,
		"freed_seat", OccupiesSeat(removed.Status))
	s.publish(ctx, events.EventTypeEnrollmentRemoved, removed)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Enrollment, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to get enrollment", "enrollment_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get enrollment", err)
	}
	if e == nil {
		return nil, enrollmentNotFound(id)
	}
	return FromDataModel(e), nil
}

func (s *Service) List(ctx context.Context) ([]*Enrollment, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to list enrollments", "error", err)
		return nil, errors.NewInternalError("failed to list enrollments", err)
	}
	return fromDataModels(rows), nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*Enrollment, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to list enrollments", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to list enrollments", err)
	}
	return fromDataModels(rows), nil
}

func (s *Service) ListByCourse(ctx context.Context, courseID int64) ([]*Enrollment, error) {
	rows, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to list enrollments", "course_id", courseID, "error", err)
		return nil, errors.NewInternalError("failed to list enrollments", err)
	}
	return fromDataModels(rows), nil
}

// ListGroupedByUser returns each enrolled user with their enrollments, users ordered by id.
func (s *Service) ListGroupedByUser(ctx context.Context) ([]*UserEnrollments, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]*UserEnrollments, 0)
	index := make(map[int64]*UserEnrollments)
	for _, e := range all {
		g, ok := index[e.UserID]
		if !ok {
			g = &UserEnrollments{User: e.User, Enrollments: make([]*Enrollment, 0, 1)}
			index[e.UserID] = g
			groups = append(groups, g)
		}
		g.Enrollments = append(g.Enrollments, e)
	}
	return groups, nil
}

func (s *Service) checkUser(ctx context.Context, tx Repository, userID int64) error {
	u, err := tx.GetUser(ctx, userID)
	if err != nil {
		return errors.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return errors.NewNotFoundError(fmt.Sprintf("User with ID %d not found", userID), errors.ErrCodeUserNotFound)
	}
	if !u.IsActive {
		rejectionsTotal.WithLabelValues("user_inactive").Inc()
		return errors.NewBadRequestError("User is not active", errors.ErrCodeUserInactive)
	}
	return nil
}

// enroll runs the per-course checks and inserts one row. The course row lock taken
// first is held until commit, so the seat count cannot change underneath the insert.
func (s *Service) enroll(ctx context.Context, tx Repository, userID, courseID int64, status string, date time.Time) (*enrollmentDatamodel.Enrollment, error) {
	log := logger.FromOr(ctx, s.logger)

	c, err := tx.LockCourse(ctx, courseID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load course", err)
	}
	if c == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Course with ID %d not found", courseID), errors.ErrCodeCourseNotFound)
	}
	if !c.IsActive {
		rejectionsTotal.WithLabelValues("course_inactive").Inc()
		return nil, errors.NewBadRequestError(fmt.Sprintf("Course '%s' is not active", c.Code), errors.ErrCodeCourseInactive)
	}

	existing, err := tx.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, errors.NewInternalError("failed to check enrollment", err)
	}
	if existing != nil {
		rejectionsTotal.WithLabelValues("duplicate").Inc()
		log.Warn("duplicate enrollment", "user_id", userID, "course_id", courseID, "status", existing.Status)
		return nil, errors.NewConflictError("User is already enrolled in this course", errors.ErrCodeEnrollmentExists)
	}

	seats, err := tx.CountOccupyingSeats(ctx, courseID)
	if err != nil {
		return nil, errors.NewInternalError("failed to count enrollments", err)
	}
	if seats >= int64(c.MaxCapacity) {
		rejectionsTotal.WithLabelValues("course_full").Inc()
		log.Warn("course capacity reached", "course_id", courseID, "max_capacity", c.MaxCapacity, "seats", seats)
		return nil, errors.NewBadRequestError(
			fmt.Sprintf("Course capacity reached (%d/%d)", seats, c.MaxCapacity),
			errors.ErrCodeCourseFull,
		)
	}

	e := &enrollmentDatamodel.Enrollment{
		UserID:         userID,
		CourseID:       courseID,
		Status:         status,
		EnrollmentDate: dateOnly(date),
	}
	if err := tx.Create(ctx, e); err != nil {
		if stdErrors.Is(err, ErrDuplicate) {
			rejectionsTotal.WithLabelValues("duplicate").Inc()
			return nil, errors.NewConflictError("User is already enrolled in this course", errors.ErrCodeEnrollmentExists)
		}
		return nil, errors.NewInternalError("failed to create enrollment", err)
	}
	return e, nil
}

// txError passes typed failures through and wraps anything else, such as a failed
// commit or a cancelled context.
func (s *Service) txError(ctx context.Context, msg string, err error) error {
	if _, ok := errors.IsAppError(err); ok {
		return err
	}
	logger.FromOr(ctx, s.logger).Error(msg, "error", err)
	return errors.NewInternalError(msg, err)
}

func (s *Service) publish(ctx context.Context, eventType string, e *enrollmentDatamodel.Enrollment) {
	if s.publisher == nil {
		return
	}
	event := events.NewEnrollmentEvent(eventType, e.ID, e.UserID, e.CourseID, e.Status)
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.FromOr(ctx, s.logger).Error("failed to publish enrollment event",
			"event_type", eventType,
			"enrollment_id", e.ID,
			"error", err)
	}
}

func enrollmentNotFound(id int64) *errors.AppError {
	return errors.NewNotFoundError(fmt.Sprintf("Enrollment with ID %d not found", id), errors.ErrCodeEnrollmentNotFound)
}
