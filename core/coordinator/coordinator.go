// Package coordinator is the state-aggregation and routing brain of the V2X
// service. It owns the entity stores, the job registry, the emergency history
// and the observer fan-out, and it is the only component mutating them. The
// bus adapter feeds inbound messages into HandleMessage; presentation layers
// consume the boundary API and the fan-out.
package coordinator

import (
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/v2x/core/emergency"
	"github.com/kilianp07/v2x/core/events"
	"github.com/kilianp07/v2x/core/jobs"
	"github.com/kilianp07/v2x/core/logger"
	coremetrics "github.com/kilianp07/v2x/core/metrics"
	"github.com/kilianp07/v2x/core/model"
	"github.com/kilianp07/v2x/core/state"
	"github.com/kilianp07/v2x/core/topics"
	"github.com/kilianp07/v2x/internal/fanout"
)

// Drop reasons used in logs and metrics labels.
const (
	DropMalformedTopic   = "malformed_topic"
	DropMalformedPayload = "malformed_payload"
	DropUnknownJob       = "unknown_job"
)

// Coordinator routes inbound messages into the entity stores, the job
// registry and the emergency history, and emits one typed notification per
// successfully applied message. No ingestion-path failure is ever fatal.
type Coordinator struct {
	vehicles  *state.Store[model.CAM]
	infra     *state.Store[model.V2I]
	registry  *jobs.Registry
	history   *emergency.History
	bus       *fanout.Bus[events.Event]
	publisher Publisher
	sink      coremetrics.MetricsSink
	log       logger.Logger
}

// New builds a coordinator from the configuration. The publisher and logger
// are required; a nil sink disables domain-event recording.
func New(cfg Config, pub Publisher, sink coremetrics.MetricsSink, log logger.Logger) (*Coordinator, error) {
	if pub == nil || log == nil {
		return nil, fmt.Errorf("coordinator: nil parameter provided to New")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Coordinator{
		vehicles:  state.New[model.CAM](),
		infra:     state.New[model.V2I](),
		registry:  jobs.NewRegistry(),
		history:   emergency.New(cfg.HistorySize),
		bus:       fanout.NewBus[events.Event](cfg.QueueDepth),
		publisher: pub,
		sink:      sink,
		log:       log,
	}, nil
}

// HandleMessage classifies, decodes and applies one inbound message. Malformed
// topics and payloads and unknown-job responses are dropped with a diagnostic;
// they never propagate an error to the receive loop.
func (c *Coordinator) HandleMessage(topic string, payload []byte) {
	addr, ok := topics.Parse(topic)
	if !ok {
		c.drop(DropMalformedTopic, topic, payload, topics.ErrMalformedTopic)
		return
	}
	messagesReceived.WithLabelValues(addr.Kind.String()).Inc()

	switch addr.Kind {
	case topics.KindVehicleStatus:
		m, err := model.DecodeCAM(payload)
		if err != nil {
			c.drop(DropMalformedPayload, topic, payload, err)
			return
		}
		// The topic segment is authoritative for keying, as producers
		// address their own subtopic.
		isNew := c.vehicles.Upsert(addr.EntityID, m)
		entitiesTracked.WithLabelValues(topics.ClassVehicle.String()).Set(float64(c.vehicles.Len()))
		c.bus.Notify(events.VehicleUpdate{Message: m, IsNew: isNew})
		c.log.Debugf("vehicle %s status applied (new=%v)", addr.EntityID, isNew)

	case topics.KindVehicleEmergency:
		data, err := model.DecodeEmergencyPayload(payload)
		if err != nil {
			c.drop(DropMalformedPayload, topic, payload, err)
			return
		}
		c.bus.Notify(events.VehicleEmergencyEvent{VehicleID: addr.EntityID, Payload: data})
		c.log.Warnf("vehicle %s raised an emergency", addr.EntityID)

	case topics.KindInfrastructure:
		m, err := model.DecodeV2I(payload)
		if err != nil {
			c.drop(DropMalformedPayload, topic, payload, err)
			return
		}
		isNew := c.infra.Upsert(addr.EntityID, m)
		entitiesTracked.WithLabelValues(topics.ClassInfrastructure.String()).Set(float64(c.infra.Len()))
		c.bus.Notify(events.InfrastructureUpdate{Message: m, IsNew: isNew})
		c.log.Debugf("infrastructure %s state applied (new=%v)", addr.EntityID, isNew)

	case topics.KindEmergencyBroadcast:
		ev, err := model.DecodeDENM(payload)
		if err != nil {
			c.drop(DropMalformedPayload, topic, payload, err)
			return
		}
		c.history.Append(ev)
		emergenciesSeen.Inc()
		c.bus.Notify(events.EmergencyAlert{Event: ev})
		c.log.Warnf("emergency %s (%s, severity %s)", ev.EventID, ev.EventType, ev.Severity)

	case topics.KindJobResponse:
		resp, err := model.DecodeJobResponse(payload)
		if err != nil {
			c.drop(DropMalformedPayload, topic, payload, err)
			return
		}
		// The registry is keyed by the topic's job segment; a response whose
		// body disagrees is still filed under the addressed job.
		job, ok := c.registry.RecordResponse(addr.EntityID, resp)
		if !ok {
			c.drop(DropUnknownJob, topic, payload, jobs.ErrUnknownJob)
			return
		}
		jobResponses.Inc()
		c.bus.Notify(events.JobResponseEvent{Job: job, Response: resp})
		c.log.Infof("job %s response from %s (%s)", job.JobID, resp.VehicleID, resp.Status)

	case topics.KindJobAssign:
		// Assignments originate here; an inbound echo carries nothing new.
		c.log.Debugf("ignoring job assignment echo on %s", topic)
	}
}

// CreateJob registers a job and publishes its assignment. Invalid arguments
// fail synchronously; a publish failure is logged and counted but does not
// undo the registration, since delivery is asynchronous and advisory.
func (c *Coordinator) CreateJob(jobType string, targets []string, params map[string]any) (model.Job, error) {
	job, err := c.registry.Create(jobType, targets, params)
	if err != nil {
		return model.Job{}, err
	}
	jobsCreated.Inc()
	if err := c.publisher.PublishJobAssignment(job); err != nil {
		c.log.Errorf("job %s assignment publish failed: %v", job.JobID, err)
	} else {
		c.log.Infof("job %s (%s) assigned to %d vehicles", job.JobID, job.Type, len(job.TargetVehicles))
	}
	c.bus.Notify(events.JobCreated{Job: job})
	return job, nil
}

// PublishEmergency broadcasts an operator-initiated emergency event. The
// event reaches the history through the coordinator's own subscription, so it
// is not appended here.
func (c *Coordinator) PublishEmergency(event model.DENM) error {
	if err := event.Validate(); err != nil {
		return err
	}
	return c.publisher.PublishEmergency(event)
}

// Jobs returns copies of all job records in creation order.
func (c *Coordinator) Jobs() []model.Job {
	return c.registry.List()
}

// Job returns a copy of one job record.
func (c *Coordinator) Job(id string) (model.Job, bool) {
	return c.registry.Get(id)
}

// Vehicles returns the latest snapshot of every tracked vehicle.
func (c *Coordinator) Vehicles() []model.CAM {
	return c.vehicles.List()
}

// Infrastructure returns the latest snapshot of every tracked element.
func (c *Coordinator) Infrastructure() []model.V2I {
	return c.infra.List()
}

// Vehicle returns the latest snapshot for one vehicle.
func (c *Coordinator) Vehicle(id string) (model.CAM, bool) {
	return c.vehicles.Get(id)
}

// Entity pairs an identifier with its latest snapshot for class-agnostic
// consumers.
type Entity struct {
	Class    topics.Class
	ID       string
	Snapshot any
}

// Entities returns all tracked entities of the class; ClassNone selects every
// class.
func (c *Coordinator) Entities(class topics.Class) []Entity {
	var out []Entity
	if class == topics.ClassVehicle || class == topics.ClassNone {
		for id, snap := range c.vehicles.Snapshot() {
			out = append(out, Entity{Class: topics.ClassVehicle, ID: id, Snapshot: snap})
		}
	}
	if class == topics.ClassInfrastructure || class == topics.ClassNone {
		for id, snap := range c.infra.Snapshot() {
			out = append(out, Entity{Class: topics.ClassInfrastructure, ID: id, Snapshot: snap})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Class != out[j].Class {
			return out[i].Class < out[j].Class
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// RecentEmergencies returns up to n of the latest broadcast events,
// most recent last.
func (c *Coordinator) RecentEmergencies(n int) []model.DENM {
	return c.history.Recent(n)
}

// Attach registers an observer on the fan-out.
func (c *Coordinator) Attach() *fanout.Subscription[events.Event] {
	return c.bus.Attach()
}

// Detach removes an observer.
func (c *Coordinator) Detach(sub *fanout.Subscription[events.Event]) {
	c.bus.Detach(sub)
}

// Close shuts the fan-out down, closing every observer channel.
func (c *Coordinator) Close() {
	c.bus.Close()
}

const payloadLogLimit = 128

func (c *Coordinator) drop(reason, topic string, payload []byte, err error) {
	messagesDropped.WithLabelValues(reason).Inc()
	_ = c.sink.RecordDrop(coremetrics.DropEvent{Reason: reason, Topic: topic, Time: time.Now()})
	c.log.Warnf("message dropped (%s): topic=%q payload=%q err=%v", reason, topic, truncate(payload, payloadLogLimit), err)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
