package fanout

import (
	"github.com/prometheus/client_golang/prometheus"
)

var subscriberDrops prometheus.Counter

// newCollectors creates new metric collectors.
func newCollectors() prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fanout_subscriber_drops_total",
			Help: "Notifications evicted because a subscriber queue was full",
		},
	)
}

func init() {
	subscriberDrops = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers fanout metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(subscriberDrops)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	subscriberDrops = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
