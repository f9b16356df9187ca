// Package app assembles the coordinator, the MQTT adapter and the metrics
// sinks into a runnable service.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/v2x/config"
	"github.com/kilianp07/v2x/core/coordinator"
	coremetrics "github.com/kilianp07/v2x/core/metrics"
	"github.com/kilianp07/v2x/infra/logger"
	"github.com/kilianp07/v2x/infra/metrics"
	"github.com/kilianp07/v2x/infra/mqtt"
)

// Service orchestrates the coordinator and its transport.
type Service struct {
	Coordinator *coordinator.Coordinator
	adapter     *mqtt.Adapter
	sink        coremetrics.MetricsSink
	log         logger.Logger
	demo        config.DemoConfig
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.MetricsSink
	promEnabled := cfg.Metrics.PrometheusEnabled
	promPort := cfg.Metrics.PrometheusPort
	if promEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = metrics.NewMultiSink(sinks...)
	}

	// The adapter and the coordinator reference each other: the adapter feeds
	// inbound messages to the coordinator, the coordinator publishes through
	// the adapter. Dispatch only starts in Run, after both exist.
	var coord *coordinator.Coordinator
	adapter, err := mqtt.NewAdapter(cfg.MQTT, mqtt.HandlerFunc(func(topic string, payload []byte) {
		coord.HandleMessage(topic, payload)
	}), cfg.Coordinator.InboundBuffer)
	if err != nil {
		return nil, fmt.Errorf("mqtt adapter: %w", err)
	}
	coord, err = coordinator.New(cfg.Coordinator, adapter, sink, logger.New("coordinator"))
	if err != nil {
		return nil, fmt.Errorf("coordinator: %w", err)
	}

	return &Service{
		Coordinator: coord,
		adapter:     adapter,
		sink:        sink,
		log:         logg,
		demo:        cfg.Demo,
		promEnabled: promEnabled,
		promPort:    promPort,
	}, nil
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.adapter.Run(ctx)
	metrics.StartEventCollector(ctx, s.Coordinator, s.sink)
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.demo.Enabled {
		go s.seedDemoJobs(ctx)
	}
	<-ctx.Done()
	return nil
}

// seedDemoJobs creates a pair of example jobs after a short delay so a fresh
// deployment immediately has traffic to display.
func (s *Service) seedDemoJobs(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(time.Duration(s.demo.DelaySeconds) * time.Second):
	}
	demos := []struct {
		jobType string
		targets []string
		params  map[string]any
	}{
		{"diagnostic", []string{"V001", "V002"}, map[string]any{"sensors": []string{"engine", "brakes"}}},
		{"navigation", []string{"V003"}, map[string]any{"destination": "Munich Airport"}},
	}
	for _, d := range demos {
		job, err := s.Coordinator.CreateJob(d.jobType, d.targets, d.params)
		if err != nil {
			s.log.Errorf("demo job %s: %v", d.jobType, err)
			continue
		}
		s.log.Infof("demo job %s created (%s)", job.JobID, job.Type)
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.adapter.Disconnect()
	s.Coordinator.Close()
	return nil
}
