package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var decisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lms_authz_decisions_total",
		Help: "Access decisions by requirement kind and outcome.",
	},
	[]string{"requirement", "outcome"},
)
