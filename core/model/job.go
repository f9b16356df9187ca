package model

import (
	"encoding/json"
	"fmt"
)

// Job statuses maintained by the registry. A job stays advisory after
// "active"; further states are written by callers and never interpreted.
const (
	JobStatusPending = "pending"
	JobStatusActive  = "active"
)

// Job is a remote task assigned to one or more vehicles. The target set is
// fixed at creation; responses accumulate in arrival order.
type Job struct {
	JobID          string         `json:"job_id"`
	Type           string         `json:"type"`
	Timestamp      Timestamp      `json:"timestamp"`
	TargetVehicles []string       `json:"target_vehicles"`
	Parameters     map[string]any `json:"parameters"`
	Status         string         `json:"status"`
	Responses      []JobResponse  `json:"responses,omitempty"`
}

// Clone returns a copy whose targets, parameters and responses are detached
// from the receiver. Parameter values are copied one level deep.
func (j Job) Clone() Job {
	c := j
	c.TargetVehicles = append([]string(nil), j.TargetVehicles...)
	if j.Parameters != nil {
		c.Parameters = make(map[string]any, len(j.Parameters))
		for k, v := range j.Parameters {
			c.Parameters[k] = v
		}
	}
	c.Responses = append([]JobResponse(nil), j.Responses...)
	return c
}

// JobResponse is a single answer from a target vehicle. A target may answer
// zero, one or several times for the same job.
type JobResponse struct {
	JobID     string    `json:"job_id"`
	VehicleID string    `json:"vehicle_id"`
	Status    string    `json:"status"`
	Timestamp Timestamp `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
}

// Validate checks the minimal response schema.
func (r JobResponse) Validate() error {
	if r.JobID == "" {
		return fmt.Errorf("job_id is required")
	}
	if r.VehicleID == "" {
		return fmt.Errorf("vehicle_id is required")
	}
	return nil
}

// DecodeJob parses a job assignment payload.
func DecodeJob(payload []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(payload, &j); err != nil {
		return Job{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if j.JobID == "" {
		return Job{}, fmt.Errorf("%w: job_id is required", ErrMalformedPayload)
	}
	return j, nil
}

// DecodeJobResponse parses and validates a job response payload.
func DecodeJobResponse(payload []byte) (JobResponse, error) {
	var r JobResponse
	if err := json.Unmarshal(payload, &r); err != nil {
		return JobResponse{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := r.Validate(); err != nil {
		return JobResponse{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return r, nil
}
