package mqtt

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	publishSuccess prometheus.Counter
	publishFailure prometheus.Counter
	inboundDropped prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, prometheus.Counter, prometheus.Counter) {
	suc := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mqtt_publish_success_total",
			Help: "Number of successful MQTT publish operations",
		},
	)
	fail := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mqtt_publish_failure_total",
			Help: "Number of failed MQTT publish operations after retries",
		},
	)
	drop := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mqtt_inbound_dropped_total",
			Help: "Inbound messages dropped because the receive queue was full",
		},
	)
	return suc, fail, drop
}

func init() {
	publishSuccess, publishFailure, inboundDropped = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers adapter metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(publishSuccess, publishFailure, inboundDropped)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	publishSuccess, publishFailure, inboundDropped = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
