package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	messagesReceived *prometheus.CounterVec
	messagesDropped  *prometheus.CounterVec
	jobsCreated      prometheus.Counter
	jobResponses     prometheus.Counter
	emergenciesSeen  prometheus.Counter
	entitiesTracked  *prometheus.GaugeVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, prometheus.Counter, prometheus.Counter, prometheus.Counter, *prometheus.GaugeVec) {
	rec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordinator_messages_received_total",
			Help: "Inbound messages handled, by topic kind",
		},
		[]string{"kind"},
	)
	drop := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordinator_messages_dropped_total",
			Help: "Inbound messages dropped, by reason",
		},
		[]string{"reason"},
	)
	created := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coordinator_jobs_created_total",
			Help: "Jobs created through the boundary API",
		},
	)
	resp := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coordinator_job_responses_total",
			Help: "Job responses recorded",
		},
	)
	emerg := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coordinator_emergencies_total",
			Help: "Broadcast emergency events recorded",
		},
	)
	ent := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coordinator_entities",
			Help: "Entities currently tracked, by class",
		},
		[]string{"class"},
	)
	return rec, drop, created, resp, emerg, ent
}

func init() {
	messagesReceived, messagesDropped, jobsCreated, jobResponses, emergenciesSeen, entitiesTracked = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers coordinator metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(messagesReceived, messagesDropped, jobsCreated, jobResponses, emergenciesSeen, entitiesTracked)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	messagesReceived, messagesDropped, jobsCreated, jobResponses, emergenciesSeen, entitiesTracked = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
