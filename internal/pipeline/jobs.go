package pipeline

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a detection job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusAnalyzing JobStatus = "analyzing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Kind selects the detection component a job runs.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// ParseKind maps a request value to a Kind; empty means text.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case "", KindText:
		return KindText, true
	case KindImage:
		return KindImage, true
	}
	return "", false
}

// Job tracks the state of a single detection request.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	Kind     Kind   `json:"type"`
	Filename string `json:"filename"`

	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Tracks    int       `json:"tracks"`
	ErrorKind string    `json:"error_kind,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	properties map[string]string
	path       string // staged upload, removed once processed
	errors     []string
}

// NewJob creates a queued job for a staged file.
func NewJob(kind Kind, filename, path string, properties map[string]string) *Job {
	now := time.Now()
	return &Job{
		ID:         uuid.NewString(),
		Kind:       kind,
		Filename:   filename,
		Status:     StatusQueued,
		Phase:      "queued",
		CreatedAt:  now,
		UpdatedAt:  now,
		properties: properties,
		path:       path,
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

// Delete forgets a job and reports whether it was known.
func (s *JobStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[id]
	delete(s.jobs, id)
	return ok
}

// Cleanup removes expired finished jobs and returns their IDs.
func (s *JobStore) Cleanup() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var removed []string
	for id, job := range s.jobs {
		snap := job.Snapshot()
		if !snap.Status.Done() {
			continue
		}
		if now.Sub(snap.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Done reports whether the status is terminal.
func (st JobStatus) Done() bool {
	return st == StatusCompleted || st == StatusFailed
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail records err and marks the job failed in phase.
func (j *Job) Fail(phase, kind string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err.Error())
	j.ErrorKind = kind
	j.Status = StatusFailed
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Complete marks the job completed with n stored tracks.
func (j *Job) Complete(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Tracks = n
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// Properties returns the job properties.
func (j *Job) Properties() map[string]string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.properties
}

// releaseFile removes the staged upload.
func (j *Job) releaseFile() error {
	j.mu.Lock()
	path := j.path
	j.path = ""
	j.mu.Unlock()
	if path == "" {
		return nil
	}
	return os.Remove(path)
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Kind      Kind      `json:"type"`
	Filename  string    `json:"filename"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Tracks    int       `json:"tracks"`
	ErrorKind string    `json:"error_kind,omitempty"`
	Errors    []string  `json:"errors"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.errors...)
	return JobSnapshot{
		ID:        j.ID,
		Kind:      j.Kind,
		Filename:  j.Filename,
		Status:    j.Status,
		Phase:     j.Phase,
		Tracks:    j.Tracks,
		ErrorKind: j.ErrorKind,
		Errors:    errs,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
