package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/v2x/core/metrics"
	"github.com/kilianp07/v2x/infra/logger"
)

// InfluxSink writes coordinator events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordIngest writes an ingested message event.
func (s *InfluxSink) RecordIngest(ev coremetrics.IngestEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("v2x_message").
		AddTag("kind", ev.Kind).
		AddTag("entity_id", ev.EntityID).
		AddTag("component", "coordinator").
		AddField("new_entity", ev.IsNew).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDrop writes a dropped message event.
func (s *InfluxSink) RecordDrop(ev coremetrics.DropEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("v2x_drop").
		AddTag("reason", ev.Reason).
		AddTag("component", "coordinator").
		AddField("topic", ev.Topic).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordJob writes a job lifecycle event.
func (s *InfluxSink) RecordJob(ev coremetrics.JobEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("v2x_job").
		AddTag("job_id", ev.JobID).
		AddTag("job_type", ev.Type).
		AddTag("action", ev.Action).
		AddTag("component", "coordinator")
	if ev.VehicleID != "" {
		p = p.AddTag("vehicle_id", ev.VehicleID)
	}
	p = p.AddField("targets", ev.Targets).
		AddField("responses", ev.Responses).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordEmergency writes a broadcast emergency event.
func (s *InfluxSink) RecordEmergency(ev coremetrics.EmergencyEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("v2x_emergency").
		AddTag("event_id", ev.EventID).
		AddTag("event_type", ev.EventType).
		AddTag("severity", ev.Severity).
		AddTag("component", "coordinator").
		AddField("duration_s", ev.Duration).
		AddField("radius_m", ev.Radius).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
