package enrollment

import (
	"slices"
	"time"

	enrollmentDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/enrollment"
	"github.com/frahmantamala/lms-backend/internal/course"
	"github.com/frahmantamala/lms-backend/internal/user"
)

const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Statuses lists every valid enrollment status.
var Statuses = []string{StatusPending, StatusActive, StatusCompleted, StatusCancelled}

// CapacityStatuses are the statuses that occupy a seat in a course.
var CapacityStatuses = []string{StatusPending, StatusActive}

type Enrollment struct {
	ID             int64          `json:"id"`
	UserID         int64          `json:"user_id"`
	CourseID       int64          `json:"course_id"`
	Status         string         `json:"status"`
	EnrollmentDate time.Time      `json:"enrollment_date"`
	Grade          *float64       `json:"grade,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	User           *user.User     `json:"user,omitempty"`
	Course         *course.Course `json:"course,omitempty"`
}

// OccupiesSeat reports whether an enrollment in status counts against course capacity.
func OccupiesSeat(status string) bool {
	return slices.Contains(CapacityStatuses, status)
}

// UserEnrollments groups one user's enrollments for the grouped listing.
type UserEnrollments struct {
	User        *user.User    `json:"user"`
	Enrollments []*Enrollment `json:"enrollments"`
}

func FromDataModel(e *enrollmentDatamodel.Enrollment) *Enrollment {
	out := &Enrollment{
		ID:             e.ID,
		UserID:         e.UserID,
		CourseID:       e.CourseID,
		Status:         e.Status,
		EnrollmentDate: e.EnrollmentDate,
		Grade:          e.Grade,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
	if e.User != nil {
		out.User = user.FromDataModel(e.User)
	}
	if e.Course != nil {
		out.Course = course.FromDataModel(e.Course)
	}
	return out
}

func fromDataModels(rows []*enrollmentDatamodel.Enrollment) []*Enrollment {
	out := make([]*Enrollment, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}

// dateOnly truncates t to midnight UTC, the granularity enrollment dates are stored at.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
