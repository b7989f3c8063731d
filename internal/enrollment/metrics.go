package enrollment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lms_enrollment_rejections_total",
		Help: "Enrollment attempts rejected by a business rule, by reason.",
	}, []string{"reason"})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lms_enrollment_events_total",
		Help: "Enrollment lifecycle events observed after commit, by type.",
	}, []string{"type"})

	uncheckedReseatsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lms_enrollment_unchecked_reseats_total",
		Help: "Updates that moved an enrollment back into a seat-holding status without a capacity check.",
	})
)
