package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func TestResponderQueuesAssignments(t *testing.T) {
	r := NewJobResponder("tcp://localhost:1883", AutoResponder{})
	body := []byte(`{"job_id":"ignored","type":"diagnostic","target_vehicles":["V001","V002"]}`)

	r.onAssign(nil, fakeMessage{topic: "v2x/jobs/abc123def456/assign", payload: body})

	select {
	case job := <-r.jobCh:
		assert.Equal(t, "abc123def456", job.JobID)
		assert.Equal(t, []string{"V001", "V002"}, job.TargetVehicles)
	default:
		t.Fatal("expected a queued job")
	}
}

func TestResponderIgnoresNonAssignments(t *testing.T) {
	r := NewJobResponder("tcp://localhost:1883", AutoResponder{})
	body := []byte(`{"job_id":"j1","target_vehicles":["V001"]}`)

	r.onAssign(nil, fakeMessage{topic: "v2x/jobs/j1/response", payload: body})
	r.onAssign(nil, fakeMessage{topic: "v2x/vehicles/V001/status", payload: body})
	r.onAssign(nil, fakeMessage{topic: "v2x/jobs/j1/assign", payload: []byte("{")})

	assert.Empty(t, r.jobCh)
}
