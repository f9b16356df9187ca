package mqtt

import (
	"fmt"
	"sync"

	"github.com/kilianp07/v2x/core/coordinator"
	"github.com/kilianp07/v2x/core/model"
)

// Publisher mirrors the coordinator's outbound interface.
type Publisher = coordinator.Publisher

var _ Publisher = (*Adapter)(nil)

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	mu     sync.Mutex
	Jobs   []model.Job
	Events []model.DENM
	Fail   bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// PublishJobAssignment records the job or returns an error if configured to
// fail.
func (m *MockPublisher) PublishJobAssignment(job model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Jobs = append(m.Jobs, job)
	return nil
}

// PublishEmergency records the event or returns an error if configured to
// fail.
func (m *MockPublisher) PublishEmergency(event model.DENM) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Events = append(m.Events, event)
	return nil
}

// Published returns copies of the recorded jobs and events.
func (m *MockPublisher) Published() ([]model.Job, []model.DENM) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := append([]model.Job(nil), m.Jobs...)
	events := append([]model.DENM(nil), m.Events...)
	return jobs, events
}
