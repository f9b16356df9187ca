package scenarios

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/kilianp07/v2x/core/coordinator"
	coremetrics "github.com/kilianp07/v2x/core/metrics"
	"github.com/kilianp07/v2x/core/model"
	"github.com/kilianp07/v2x/core/topics"
	"github.com/kilianp07/v2x/infra/logger"
	"github.com/kilianp07/v2x/infra/mqtt"
)

// dropCounter records drops synchronously; the coordinator reports them to
// the sink on the ingestion path, not through the fan-out.
type dropCounter struct {
	coremetrics.NopSink
	mu    sync.Mutex
	drops int
}

func (d *dropCounter) RecordDrop(coremetrics.DropEvent) error {
	d.mu.Lock()
	d.drops++
	d.mu.Unlock()
	return nil
}

func (d *dropCounter) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.drops
}

// RunScenario executes one scenario against a fresh coordinator and asserts
// the expected end state.
func RunScenario(t *testing.T, sc *Scenario) {
	drops := &dropCounter{}
	pub := mqtt.NewMockPublisher()
	coord, err := coordinator.New(coordinator.Config{HistorySize: sc.HistorySize}, pub, drops, logger.NopLogger{})
	if err != nil {
		t.Fatalf("coordinator: %v", err)
	}
	defer coord.Close()

	for i, m := range sc.Messages {
		body, err := m.Body()
		if err != nil {
			t.Fatalf("message %d body: %v", i, err)
		}
		coord.HandleMessage(m.Topic, body)
	}

	for _, jd := range sc.Jobs {
		job, err := coord.CreateJob(jd.Type, jd.Targets, jd.Params)
		if err != nil {
			t.Fatalf("create job %s: %v", jd.Type, err)
		}
		topic, err := topics.Format(topics.KindJobResponse, job.JobID)
		if err != nil {
			t.Fatalf("response topic: %v", err)
		}
		for _, r := range jd.Responses {
			payload, err := json.Marshal(model.JobResponse{
				JobID:     job.JobID,
				VehicleID: r.Vehicle,
				Status:    r.Status,
				Timestamp: model.Now(),
				Message:   r.Message,
			})
			if err != nil {
				t.Fatalf("marshal response: %v", err)
			}
			coord.HandleMessage(topic, payload)
		}
		if jd.Status != "" {
			got, ok := coord.Job(job.JobID)
			if !ok {
				t.Fatalf("job %s vanished", job.JobID)
			}
			if got.Status != jd.Status {
				t.Errorf("job %s status: got %s want %s", job.JobID, got.Status, jd.Status)
			}
			if len(got.Responses) != len(jd.Responses) {
				t.Errorf("job %s responses: got %d want %d", job.JobID, len(got.Responses), len(jd.Responses))
			}
		}
	}

	if got := len(coord.Vehicles()); got != sc.Expected.Vehicles {
		t.Errorf("vehicles: got %d want %d", got, sc.Expected.Vehicles)
	}
	if got := len(coord.Infrastructure()); got != sc.Expected.Infrastructure {
		t.Errorf("infrastructure: got %d want %d", got, sc.Expected.Infrastructure)
	}
	if got := len(coord.RecentEmergencies(sc.Expected.Emergencies + 1)); got != sc.Expected.Emergencies {
		t.Errorf("emergencies: got %d want %d", got, sc.Expected.Emergencies)
	}
	if got := drops.Count(); got != sc.Expected.Drops {
		t.Errorf("drops: got %d want %d", got, sc.Expected.Drops)
	}
	jobsOut, _ := pub.Published()
	if got := len(jobsOut); got != sc.Expected.Assignments {
		t.Errorf("assignments published: got %d want %d", got, sc.Expected.Assignments)
	}
}
