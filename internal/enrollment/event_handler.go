package enrollment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/lms-backend/internal/core/events"
)

// EventHandler records committed enrollment changes in the audit log.
type EventHandler struct {
	logger *slog.Logger
}

func NewEventHandler(logger *slog.Logger) *EventHandler {
	return &EventHandler{logger: logger}
}

func (h *EventHandler) HandleEnrollmentEvent(ctx context.Context, event events.Event) error {
	enrollmentEvent, ok := event.(*events.EnrollmentEvent)
	if !ok {
		h.logger.Error("invalid event type for enrollment handler", "event_type", event.EventType())
		return fmt.Errorf("expected EnrollmentEvent, got %T", event)
	}

	eventsTotal.WithLabelValues(enrollmentEvent.EventType()).Inc()
	h.logger.InfoContext(ctx, "enrollment audit",
		"event_type", enrollmentEvent.EventType(),
		"event_id", enrollmentEvent.EventID(),
		"enrollment_id", enrollmentEvent.EnrollmentID,
		"user_id", enrollmentEvent.UserID,
		"course_id", enrollmentEvent.CourseID,
		"status", enrollmentEvent.Status,
		"occurred_at", enrollmentEvent.OccurredAt())
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	types := []string{
		events.EventTypeEnrollmentCreated,
		events.EventTypeEnrollmentUpdated,
		events.EventTypeEnrollmentRemoved,
	}
	for _, t := range types {
		eventBus.Subscribe(t, h.HandleEnrollmentEvent)
	}

	h.logger.Info("enrollment event handlers registered", "handlers", types)
}
