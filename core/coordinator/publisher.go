package coordinator

import "github.com/kilianp07/v2x/core/model"

// Publisher sends outbound coordinator messages to the transport. The
// implementation encodes and publishes without holding any coordinator lock.
type Publisher interface {
	// PublishJobAssignment announces a newly created job to its targets.
	PublishJobAssignment(job model.Job) error

	// PublishEmergency broadcasts an emergency event to all entities.
	PublishEmergency(event model.DENM) error
}
