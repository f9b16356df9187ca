package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/v2x/core/events"
	coremetrics "github.com/kilianp07/v2x/core/metrics"
	"github.com/kilianp07/v2x/core/topics"
	"github.com/kilianp07/v2x/internal/fanout"
)

// EventSource is the slice of the coordinator the collector observes.
type EventSource interface {
	Attach() *fanout.Subscription[events.Event]
	Detach(sub *fanout.Subscription[events.Event])
}

// StartEventCollector attaches to the observer fan-out and records metrics
// for events. It stops when the context is canceled. Delivery is best-effort:
// if the sink is slow the collector's bounded queue drops like any other
// subscriber, never stalling ingestion.
func StartEventCollector(ctx context.Context, src EventSource, sink coremetrics.MetricsSink) {
	if src == nil || sink == nil {
		return
	}
	sub := src.Attach()
	go func() {
		defer src.Detach(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.C():
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
}

func record(sink coremetrics.MetricsSink, ev events.Event) {
	now := time.Now()
	switch e := ev.(type) {
	case events.VehicleUpdate:
		_ = sink.RecordIngest(coremetrics.IngestEvent{
			Kind:     topics.KindVehicleStatus.String(),
			EntityID: e.Message.VehicleID,
			IsNew:    e.IsNew,
			Time:     now,
		})
	case events.InfrastructureUpdate:
		_ = sink.RecordIngest(coremetrics.IngestEvent{
			Kind:     topics.KindInfrastructure.String(),
			EntityID: e.Message.InfrastructureID,
			IsNew:    e.IsNew,
			Time:     now,
		})
	case events.VehicleEmergencyEvent:
		_ = sink.RecordIngest(coremetrics.IngestEvent{
			Kind:     topics.KindVehicleEmergency.String(),
			EntityID: e.VehicleID,
			Time:     now,
		})
	case events.EmergencyAlert:
		_ = sink.RecordEmergency(coremetrics.EmergencyEvent{
			EventID:   e.Event.EventID,
			EventType: e.Event.EventType,
			Severity:  e.Event.Severity,
			Duration:  float64(e.Event.Duration),
			Radius:    float64(e.Event.Radius),
			Time:      now,
		})
	case events.JobCreated:
		_ = sink.RecordJob(coremetrics.JobEvent{
			JobID:   e.Job.JobID,
			Type:    e.Job.Type,
			Action:  "created",
			Targets: len(e.Job.TargetVehicles),
			Time:    now,
		})
	case events.JobResponseEvent:
		_ = sink.RecordJob(coremetrics.JobEvent{
			JobID:     e.Job.JobID,
			Type:      e.Job.Type,
			Action:    "response",
			VehicleID: e.Response.VehicleID,
			Targets:   len(e.Job.TargetVehicles),
			Responses: len(e.Job.Responses),
			Time:      now,
		})
	}
}
