package metrics

import coremetrics "github.com/kilianp07/v2x/core/metrics"

// MultiSink fans coordinator events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordIngest forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordIngest(ev coremetrics.IngestEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordIngest(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordDrop forwards drop events.
func (m *MultiSink) RecordDrop(ev coremetrics.DropEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordDrop(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordJob forwards job events.
func (m *MultiSink) RecordJob(ev coremetrics.JobEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordJob(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordEmergency forwards emergency events.
func (m *MultiSink) RecordEmergency(ev coremetrics.EmergencyEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordEmergency(ev); err != nil {
			return err
		}
	}
	return nil
}
