// Package events defines the notifications emitted on the observer fan-out.
//
// Available event types:
//   - VehicleUpdate: a vehicle published a new status snapshot
//   - VehicleEmergencyEvent: a single vehicle raised an emergency
//   - InfrastructureUpdate: an infrastructure element published new state
//   - EmergencyAlert: an emergency event was broadcast to all entities
//   - JobCreated: a new job was registered and its assignment published
//   - JobResponseEvent: a target responded to a job
package events

import "github.com/kilianp07/v2x/core/model"

// VehicleUpdate carries the latest vehicle snapshot. IsNew is set when the
// vehicle was not previously tracked.
type VehicleUpdate struct {
	Message model.CAM
	IsNew   bool
}

// VehicleEmergencyEvent carries a free-form emergency raised by one vehicle.
type VehicleEmergencyEvent struct {
	VehicleID string
	Payload   map[string]any
}

// InfrastructureUpdate carries the latest infrastructure snapshot. IsNew is
// set when the element was not previously tracked.
type InfrastructureUpdate struct {
	Message model.V2I
	IsNew   bool
}

// EmergencyAlert carries a broadcast emergency event.
type EmergencyAlert struct {
	Event model.DENM
}

// JobCreated is emitted after a job is registered and its assignment
// published.
type JobCreated struct {
	Job model.Job
}

// JobResponseEvent carries a job response together with the updated record.
type JobResponseEvent struct {
	Job      model.Job
	Response model.JobResponse
}

// Event is the union carried by the fan-out; concrete types are the structs
// above.
type Event any
