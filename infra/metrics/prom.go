package metrics

import (
	"strconv"

	coremetrics "github.com/kilianp07/v2x/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records coordinator events in Prometheus metrics.
type PromSink struct {
	ingested    *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	jobs        *prometheus.CounterVec
	emergencies *prometheus.CounterVec
}

// NewPromSink registers coordinator metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ingested := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "v2x_messages_ingested_total",
		Help: "Total number of inbound messages successfully routed",
	}, []string{"kind", "new_entity"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "v2x_messages_dropped_total",
		Help: "Total number of inbound messages dropped",
	}, []string{"reason"})
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "v2x_job_events_total",
		Help: "Total number of job lifecycle events",
	}, []string{"action", "job_type"})
	emergencies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "v2x_emergency_events_total",
		Help: "Total number of broadcast emergency events recorded",
	}, []string{"event_type", "severity"})

	if err := reg.Register(ingested); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			ingested = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(dropped); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			dropped = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(jobs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			jobs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(emergencies); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			emergencies = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{ingested: ingested, dropped: dropped, jobs: jobs, emergencies: emergencies}, nil
}

// RecordIngest increments the ingest counter for the message kind.
func (s *PromSink) RecordIngest(ev coremetrics.IngestEvent) error {
	s.ingested.WithLabelValues(ev.Kind, strconv.FormatBool(ev.IsNew)).Inc()
	return nil
}

// RecordDrop increments the drop counter for the given reason.
func (s *PromSink) RecordDrop(ev coremetrics.DropEvent) error {
	s.dropped.WithLabelValues(ev.Reason).Inc()
	return nil
}

// RecordJob increments the job event counter.
func (s *PromSink) RecordJob(ev coremetrics.JobEvent) error {
	s.jobs.WithLabelValues(ev.Action, ev.Type).Inc()
	return nil
}

// RecordEmergency increments the emergency event counter.
func (s *PromSink) RecordEmergency(ev coremetrics.EmergencyEvent) error {
	s.emergencies.WithLabelValues(ev.EventType, ev.Severity).Inc()
	return nil
}
