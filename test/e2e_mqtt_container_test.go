package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/v2x/app"
	"github.com/kilianp07/v2x/config"
	coremetrics "github.com/kilianp07/v2x/core/metrics"
	"github.com/kilianp07/v2x/core/model"
	"github.com/kilianp07/v2x/core/topics"
	"github.com/kilianp07/v2x/infra/metrics"
	"github.com/kilianp07/v2x/infra/mqtt"
	"github.com/kilianp07/v2x/test/util"
)

func connectClient(t *testing.T, broker, clientID string) paho.Client {
	t.Helper()
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	cli := paho.NewClient(opts)
	var connErr error
	for i := 0; i < 5; i++ {
		token := cli.Connect()
		token.Wait()
		connErr = token.Error()
		if connErr == nil {
			return cli
		}
		t.Logf("connect attempt %d to %s: %v", i+1, broker, connErr)
		time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
	}
	t.Skipf("broker not ready: %v", connErr)
	return nil
}

// connectResponder acknowledges every job assignment on behalf of its targets,
// standing in for the vehicle fleet.
func connectResponder(t *testing.T, broker string) paho.Client {
	t.Helper()
	cli := connectClient(t, broker, "responder-sim")
	if token := cli.Subscribe("v2x/jobs/+/assign", 1, func(_ paho.Client, m paho.Message) {
		addr, ok := topics.Parse(m.Topic())
		if !ok {
			return
		}
		var job model.Job
		if err := json.Unmarshal(m.Payload(), &job); err != nil {
			return
		}
		for _, vehicleID := range job.TargetVehicles {
			resp := model.JobResponse{
				JobID:     addr.EntityID,
				VehicleID: vehicleID,
				Status:    "acknowledged",
				Timestamp: model.Now(),
				Message:   "Job received and processing",
			}
			payload, _ := json.Marshal(resp)
			topic, _ := topics.Format(topics.KindJobResponse, addr.EntityID)
			cli.Publish(topic, 1, false, payload)
		}
	}); token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}
	return cli
}

func startService(t *testing.T, broker string) (*app.Service, func()) {
	t.Helper()
	cfg := &config.Config{
		MQTT: mqtt.Config{Broker: broker, ClientID: "coordinator-e2e"},
	}
	cfg.Coordinator.SetDefaults()
	cfg.Metrics.SetDefaults()
	svc, err := app.New(cfg)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = svc.Run(ctx) }()
	stop := func() {
		cancel()
		_ = svc.Close()
	}
	return svc, stop
}

func TestCoordinatorWithMQTTContainer(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()

	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Fatalf("start mosquitto: %v", err)
	}
	defer cleanup()

	svc, stop := startService(t, broker)
	defer stop()

	// A second collector feeds a test-scoped registry so metric values can be
	// asserted without touching the global registerer.
	reg := prometheus.NewRegistry()
	sinkIf, err := metrics.NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	collectorCtx, collectorCancel := context.WithCancel(ctx)
	defer collectorCancel()
	metrics.StartEventCollector(collectorCtx, svc.Coordinator, sinkIf)

	responder := connectResponder(t, broker)
	defer responder.Disconnect(100)

	sim := connectClient(t, broker, "vehicle-sim")
	defer sim.Disconnect(100)

	waitCtx, waitCancel := context.WithTimeout(ctx, 15*time.Second)
	defer waitCancel()

	// Vehicle telemetry lands in the entity store. The publish is repeated
	// until the coordinator's subscription is live.
	cam := model.CAM{
		Type:      "CAM",
		VehicleID: "V001",
		Timestamp: model.Now(),
		Position:  model.Position{Latitude: 48.1351, Longitude: 11.5820},
		Speed:     52.5,
		Heading:   90,
		Status:    "normal",
	}
	camPayload, _ := json.Marshal(cam)
	if err := util.WaitFor(waitCtx, func() bool {
		sim.Publish("v2x/vehicles/V001/status", 1, false, camPayload)
		_, ok := svc.Coordinator.Vehicle("V001")
		return ok
	}); err != nil {
		t.Fatalf("vehicle never ingested: %v", err)
	}
	got, _ := svc.Coordinator.Vehicle("V001")
	if got.Speed != 52.5 {
		t.Errorf("speed: got %v want 52.5", got.Speed)
	}

	// Job round trip: the assignment goes out over MQTT and the responder
	// acknowledges for both targets.
	job, err := svc.Coordinator.CreateJob("diagnostic", []string{"V001", "V002"}, map[string]any{"sensors": []string{"engine"}})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := util.WaitFor(waitCtx, func() bool {
		j, ok := svc.Coordinator.Job(job.JobID)
		return ok && len(j.Responses) == 2
	}); err != nil {
		j, _ := svc.Coordinator.Job(job.JobID)
		t.Fatalf("responses never arrived (have %d): %v", len(j.Responses), err)
	}
	final, _ := svc.Coordinator.Job(job.JobID)
	if final.Status != model.JobStatusActive {
		t.Errorf("job status: got %s want %s", final.Status, model.JobStatusActive)
	}

	// Emergency broadcast reaches the bounded history.
	denm := model.DENM{
		Type:      "DENM",
		EventID:   "e2e00001",
		Timestamp: model.Now(),
		Position:  model.Position{Latitude: 48.14, Longitude: 11.58},
		EventType: "accident",
		Severity:  model.SeverityHigh,
		Duration:  600,
		Radius:    500,
	}
	denmPayload, _ := json.Marshal(denm)
	if token := sim.Publish("v2x/emergency/broadcast", 2, false, denmPayload); token.Wait() && token.Error() != nil {
		t.Fatalf("publish emergency: %v", token.Error())
	}
	if err := util.WaitFor(waitCtx, func() bool {
		return len(svc.Coordinator.RecentEmergencies(1)) == 1
	}); err != nil {
		t.Fatalf("emergency never recorded: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsTS := httptest.NewServer(mux)
	defer metricsTS.Close()

	metricCtx, metricCancel := context.WithTimeout(ctx, util.MetricTimeout)
	defer metricCancel()
	for _, want := range []string{
		`v2x_messages_ingested_total{kind="vehicle_status",new_entity="true"} 1`,
		`v2x_job_events_total{action="created",job_type="diagnostic"} 1`,
		`v2x_job_events_total{action="response",job_type="diagnostic"} 2`,
		`v2x_emergency_events_total{event_type="accident",severity="high"} 1`,
	} {
		if err := util.WaitForMetric(metricCtx, metricsTS.URL+"/metrics", want); err != nil {
			t.Errorf("metric wait: %v", err)
		}
	}
}
