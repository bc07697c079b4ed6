package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// authAttempts counts session-lifecycle outcomes by operation.
var authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "taskd_auth_attempts_total",
	Help: "Auth operations by name and outcome.",
}, []string{"operation", "outcome"})

func recordAuth(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	authAttempts.WithLabelValues(operation, outcome).Inc()
}
