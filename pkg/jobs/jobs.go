// Package jobs records render jobs for serve mode.
//
// Every POST /render creates a Job that survives the request, so recent
// exports can be listed and their artifacts re-downloaded without
// re-rendering. Storage backends:
//   - memory: in-process map for single-instance serving (default)
//   - file: JSON files under the config directory
//   - mongo: MongoDB collection for deployments that keep history
//
// Jobs expire after a TTL; Get treats an expired job like a missing one
// and Cleanup removes expired records eagerly.
//
// # Usage
//
//	store := jobs.NewMemoryStore()
//
//	job := jobs.New("scene.json", jobs.DefaultTTL)
//	job.Start()
//	store.Set(ctx, job)
//
//	// ... run the pipeline ...
//	job.Complete("png", data, "image/png")
//	store.Set(ctx, job)
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for job operations.
var (
	// ErrNotFound is returned when a job does not exist or has expired.
	ErrNotFound = errors.New("job not found")
)

// Status is the lifecycle state of a render job.
type Status string

// Job lifecycle states. Serve mode runs the pipeline inside the request,
// so a job normally moves pending → running → done before the response
// is written; failed jobs keep the error for later inspection.
const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Default durations and limits.
const (
	// DefaultTTL is how long a job record is retained.
	DefaultTTL = 24 * time.Hour

	// DefaultListLimit bounds List when the caller passes no limit.
	DefaultListLimit = 50
)

// Job is one recorded render request.
type Job struct {
	ID     string `json:"id" bson:"_id"`
	Status Status `json:"status" bson:"status"`

	// Request parameters.
	Source  string  `json:"source,omitempty" bson:"source,omitempty"`
	Format  string  `json:"format" bson:"format"`
	Backend string  `json:"backend" bson:"backend"`
	Scale   float64 `json:"scale" bson:"scale"`

	// Pipeline results.
	DocumentHash string `json:"document_hash,omitempty" bson:"document_hash,omitempty"`
	ElementCount int    `json:"element_count" bson:"element_count"`
	SkippedCount int    `json:"skipped_count,omitempty" bson:"skipped_count,omitempty"`
	Error        string `json:"error,omitempty" bson:"error,omitempty"`

	// Artifact is the rendered output in the requested format. The list
	// endpoint strips it; only the artifact endpoint serves it.
	Artifact     []byte `json:"artifact,omitempty" bson:"artifact,omitempty"`
	ArtifactType string `json:"artifact_type,omitempty" bson:"artifact_type,omitempty"`

	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	CompletedAt time.Time `json:"completed_at" bson:"completed_at"`
	ExpiresAt   time.Time `json:"expires_at" bson:"expires_at"`
}

// New creates a pending job with a fresh UUID and the given retention.
func New(source string, ttl time.Duration) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Source:    source,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the job has exceeded its retention.
func (j *Job) IsExpired() bool {
	return time.Now().After(j.ExpiresAt)
}

// Start marks the job as running.
func (j *Job) Start() {
	j.Status = StatusRunning
}

// Complete marks the job as done and attaches the artifact.
func (j *Job) Complete(format string, artifact []byte, contentType string) {
	j.Status = StatusDone
	j.Format = format
	j.Artifact = artifact
	j.ArtifactType = contentType
	j.CompletedAt = time.Now()
}

// Fail marks the job as failed with the given cause.
func (j *Job) Fail(err error) {
	j.Status = StatusFailed
	if err != nil {
		j.Error = err.Error()
	}
	j.CompletedAt = time.Now()
}

// Clone returns a deep copy. Stores hand out copies so callers can
// mutate and re-Set a job without racing concurrent readers.
func (j *Job) Clone() *Job {
	c := *j
	if j.Artifact != nil {
		c.Artifact = append([]byte(nil), j.Artifact...)
	}
	return &c
}

// Summary returns a copy without the artifact payload, suitable for
// list and detail responses.
func (j *Job) Summary() *Job {
	c := *j
	c.Artifact = nil
	return &c
}

// Store is the interface for job storage backends.
type Store interface {
	// Get retrieves a job by ID.
	// Returns ErrNotFound if the job doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Job, error)

	// Set stores a job, replacing any existing record with the same ID.
	Set(ctx context.Context, job *Job) error

	// List returns up to limit unexpired jobs, newest first.
	// A non-positive limit selects DefaultListLimit.
	List(ctx context.Context, limit int) ([]*Job, error)

	// Delete removes a job. Deleting a missing job is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired jobs (may be a no-op for backends with
	// native expiry).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
