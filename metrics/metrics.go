// file: metrics/metrics.go

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts login outcomes, labeled success / rejected /
	// throttled / error.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"result"})

	// RefreshRotations counts refresh-token rotation outcomes.
	RefreshRotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_refresh_rotations_total",
		Help: "Refresh token rotations by outcome.",
	}, []string{"result"})

	// EdgeRejections counts requests the edge filter turned away, by reason.
	EdgeRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_edge_rejections_total",
		Help: "Requests rejected at the edge filter by reason.",
	}, []string{"reason"})
)
