package enrollment

import (
	"context"
	"log/slog"
	"os"

	"github.com/frahmantamala/lms-backend/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var _ = Describe("EventHandler", func() {
	var (
		bus     *events.EventBus
		handler *EventHandler
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(lg)
		handler = NewEventHandler(lg)
		handler.RegisterEventHandlers(bus)
	})

	It("counts each committed change by type", func() {
		before := testutil.ToFloat64(eventsTotal.WithLabelValues(events.EventTypeEnrollmentRemoved))

		Expect(bus.Publish(context.Background(), events.NewEnrollmentEvent(events.EventTypeEnrollmentRemoved, 1, 2, 3, StatusPending))).To(Succeed())
		bus.Wait()

		Expect(testutil.ToFloat64(eventsTotal.WithLabelValues(events.EventTypeEnrollmentRemoved))).To(Equal(before + 1))
	})

	It("rejects foreign event types", func() {
		err := handler.HandleEnrollmentEvent(context.Background(), events.BaseEvent{Type: events.EventTypeEnrollmentCreated})
		Expect(err).To(MatchError(ContainSubstring("expected EnrollmentEvent")))
	})
})
