package main

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/v2x/core/model"
	"github.com/kilianp07/v2x/core/topics"
)

const assignFilter = "v2x/jobs/+/assign"

// ResponseStrategy decides how the simulated fleet answers a job assignment.
type ResponseStrategy interface {
	Respond(ctx context.Context, cli mqtt.Client, job model.Job)
}

// AutoResponder acknowledges for every target vehicle after a fixed delay.
// DropRate silently skips that fraction of responses to exercise incomplete
// acknowledgement handling downstream.
type AutoResponder struct {
	Delay    time.Duration
	DropRate float64
}

func (a AutoResponder) Respond(ctx context.Context, cli mqtt.Client, job model.Job) {
	if a.Delay > 0 {
		select {
		case <-time.After(a.Delay):
		case <-ctx.Done():
			return
		}
	}
	for _, vehicleID := range job.TargetVehicles {
		if a.DropRate > 0 && rand.Float64() < a.DropRate {
			log.Printf("responder: dropping response for %s on job %s", vehicleID, job.JobID)
			continue
		}
		publishResponse(cli, job.JobID, vehicleID)
	}
}

func publishResponse(cli mqtt.Client, jobID, vehicleID string) {
	resp := model.JobResponse{
		JobID:     jobID,
		VehicleID: vehicleID,
		Status:    "acknowledged",
		Timestamp: model.Now(),
		Message:   "Job received and processing",
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		log.Printf("responder: marshal: %v", err)
		return
	}
	topic, err := topics.Format(topics.KindJobResponse, jobID)
	if err != nil {
		log.Printf("responder: topic: %v", err)
		return
	}
	token := cli.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("responder: publish timeout for job %s", jobID)
		return
	}
	if err := token.Error(); err != nil {
		log.Printf("responder: publish: %v", err)
		return
	}
	log.Printf("responder: %s acknowledged job %s", vehicleID, jobID)
}

// JobResponder subscribes to assignment topics and answers on behalf of the
// whole simulated fleet.
type JobResponder struct {
	Broker   string
	Strategy ResponseStrategy

	jobCh chan model.Job
}

func NewJobResponder(broker string, strategy ResponseStrategy) *JobResponder {
	return &JobResponder{
		Broker:   broker,
		Strategy: strategy,
		jobCh:    make(chan model.Job, 50),
	}
}

func (r *JobResponder) Run(ctx context.Context) error {
	cli, err := newMQTTClient(r.Broker, "sim-responder")
	if err != nil {
		return err
	}
	defer cli.Disconnect(250)

	if token := cli.Subscribe(assignFilter, 0, r.onAssign); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case job := <-r.jobCh:
			go r.Strategy.Respond(ctx, cli, job)
		}
	}
}

// onAssign runs on the paho callback goroutine, so it only queues the job.
func (r *JobResponder) onAssign(_ mqtt.Client, msg mqtt.Message) {
	addr, ok := topics.Parse(msg.Topic())
	if !ok || addr.Kind != topics.KindJobAssign {
		return
	}
	job, err := model.DecodeJob(msg.Payload())
	if err != nil {
		log.Printf("responder: decode assignment: %v", err)
		return
	}
	// The topic segment names the job; the payload merely repeats it.
	job.JobID = addr.EntityID
	select {
	case r.jobCh <- job:
	default:
		log.Printf("responder: queue full, dropping job %s", job.JobID)
	}
}
