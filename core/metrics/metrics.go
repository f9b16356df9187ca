// Package metrics defines interfaces and event types for recording what the
// coordinator observes. Sinks like PromSink and InfluxSink record ingest,
// job and emergency events and can be combined with NewMultiSink. A helper
// collects events from the observer fan-out and forwards them to a sink.
package metrics

import "time"

// IngestEvent captures one successfully routed inbound message.
type IngestEvent struct {
	Kind     string
	EntityID string
	IsNew    bool
	Time     time.Time
}

// DropEvent captures an ingestion-path message drop.
type DropEvent struct {
	Reason string
	Topic  string
	Time   time.Time
}

// JobEvent captures a job lifecycle action: "created" or "response".
type JobEvent struct {
	JobID     string
	Type      string
	Action    string
	VehicleID string
	Targets   int
	Responses int
	Time      time.Time
}

// EmergencyEvent captures a broadcast emergency being recorded.
type EmergencyEvent struct {
	EventID   string
	EventType string
	Severity  string
	Duration  float64
	Radius    float64
	Time      time.Time
}

// MetricsSink records coordinator events for observability purposes.
type MetricsSink interface {
	RecordIngest(ev IngestEvent) error
	RecordDrop(ev DropEvent) error
	RecordJob(ev JobEvent) error
	RecordEmergency(ev EmergencyEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordIngest(IngestEvent) error       { return nil }
func (NopSink) RecordDrop(DropEvent) error           { return nil }
func (NopSink) RecordJob(JobEvent) error             { return nil }
func (NopSink) RecordEmergency(EmergencyEvent) error { return nil }
