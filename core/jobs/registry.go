// Package jobs tracks remote jobs from creation through response aggregation.
// The registry exclusively owns job records; callers only ever see copies.
package jobs

import (
	"encoding/hex"
	"sync"

	"github.com/google/uuid"

	"github.com/kilianp07/v2x/core/model"
)

// Registry is the authoritative in-memory job table. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	jobs  map[string]*model.Job
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: map[string]*model.Job{}}
}

// newJobID draws 48 bits from a random UUID, formatted as 12 hex characters.
func newJobID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:6])
}

// Create registers a new pending job and returns a copy of the record.
// Publishing the assignment is the caller's responsibility so no lock is held
// across transport I/O. The generated ID is collision-checked against live
// records.
func (r *Registry) Create(jobType string, targets []string, params map[string]any) (model.Job, error) {
	if jobType == "" {
		return model.Job{}, ErrEmptyType
	}
	if len(targets) == 0 {
		return model.Job{}, ErrNoTargets
	}

	job := model.Job{
		Type:           jobType,
		Timestamp:      model.Now(),
		TargetVehicles: append([]string(nil), targets...),
		Status:         model.JobStatusPending,
	}
	if len(params) > 0 {
		job.Parameters = make(map[string]any, len(params))
		for k, v := range params {
			job.Parameters[k] = v
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id := newJobID()
	for {
		if _, taken := r.jobs[id]; !taken {
			break
		}
		id = newJobID()
	}
	job.JobID = id
	stored := job
	r.jobs[id] = &stored
	r.order = append(r.order, id)
	return job.Clone(), nil
}

// RecordResponse appends a response to its job in arrival order and reports
// whether the job exists. An unknown job returns false and mutates nothing.
// Responses are never deduplicated; a target may legitimately respond more
// than once. The first response moves a pending job to active.
func (r *Registry) RecordResponse(jobID string, resp model.JobResponse) (model.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return model.Job{}, false
	}
	job.Responses = append(job.Responses, resp)
	if job.Status == model.JobStatusPending {
		job.Status = model.JobStatusActive
	}
	return job.Clone(), true
}

// Get returns a copy of the job record.
func (r *Registry) Get(jobID string) (model.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return model.Job{}, false
	}
	return job.Clone(), true
}

// List returns copies of all job records in creation order.
func (r *Registry) List() []model.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Job, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.jobs[id].Clone())
	}
	return out
}

// Len returns the number of tracked jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
