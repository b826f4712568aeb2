package pipeline

import (
	"sync"
	"time"

	"github.com/harikantbajaj/labsight/internal/report"
)

// JobStatus represents the state of one analysis job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks one document analysis from upload to result.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	UserID string `json:"user_id"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	doc     report.Document
	demo    report.Demographics
	result  *report.Result
	failure string
}

// NewJob creates a queued job owning the document bytes.
func NewJob(id, userID string, doc report.Document, demo report.Demographics) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		UserID:    userID,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		doc:       doc,
		demo:      demo,
	}
}

// Document returns the job's document payload.
func (j *Job) Document() report.Document {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.doc
}

// Demographics returns the subject context supplied at upload.
func (j *Job) Demographics() report.Demographics {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.demo
}

// SetStatus updates status and phase atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// SetPhase updates the phase of a processing job.
func (j *Job) SetPhase(phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Complete records the run result and releases the document bytes.
func (j *Job) Complete(res *report.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.doc = report.Document{}
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// Fail records the failure reason and releases the document bytes.
func (j *Job) Fail(reason string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.failure = reason
	j.doc = report.Document{}
	j.Status = StatusFailed
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state. Result is set
// only on completed jobs and is never mutated after completion.
type JobSnapshot struct {
	ID        string         `json:"job_id"`
	UserID    string         `json:"user_id"`
	Status    JobStatus      `json:"status"`
	Phase     string         `json:"phase"`
	Failure   string         `json:"failure,omitempty"`
	Result    *report.Result `json:"result,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:        j.ID,
		UserID:    j.UserID,
		Status:    j.Status,
		Phase:     j.Phase,
		Failure:   j.failure,
		Result:    j.result,
		CreatedAt: j.CreatedAt,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes jobs idle past the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}
