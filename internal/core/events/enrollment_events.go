package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeEnrollmentCreated = "enrollment.created"
	EventTypeEnrollmentUpdated = "enrollment.updated"
	EventTypeEnrollmentRemoved = "enrollment.removed"
)

type EnrollmentEvent struct {
	BaseEvent
	EnrollmentID int64  `json:"enrollment_id"`
	UserID       int64  `json:"user_id"`
	CourseID     int64  `json:"course_id"`
	Status       string `json:"status"`
}

func NewEnrollmentEvent(eventType string, enrollmentID, userID, courseID int64, status string) *EnrollmentEvent {
	return &EnrollmentEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"enrollment_id": enrollmentID,
				"user_id":       userID,
				"course_id":     courseID,
				"status":        status,
			},
		},
		EnrollmentID: enrollmentID,
		UserID:       userID,
		CourseID:     courseID,
		Status:       status,
	}
}
