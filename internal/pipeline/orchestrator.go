package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/docdetect/internal/config"
	"github.com/dgallion1/docdetect/internal/detection"
)

// Component runs one kind of detection over a job.
type Component interface {
	GetDetections(ctx context.Context, job detection.Job) ([]detection.Track, error)
}

// ResultStore persists and removes job results.
type ResultStore interface {
	SaveTracks(ctx context.Context, jobID string, tracks []detection.Track) error
	Tracks(ctx context.Context, jobID string) ([]detection.Track, error)
	DeleteJob(ctx context.Context, jobID string) (int64, error)
}

// Orchestrator manages the detection job pipeline.
type Orchestrator struct {
	jobs       *JobStore
	queue      chan *Job
	components map[Kind]Component
	results    ResultStore
	stats      *Stats
	log        *slog.Logger
	cfg        config.Config

	// mu guards stopped; Submit holds it for reading while it enqueues so
	// Stop never closes the queue under a sender.
	mu      sync.RWMutex
	stopped bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, components map[Kind]Component, results ResultStore, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:       NewJobStore(cfg.JobTTL),
		queue:      make(chan *Job, cfg.MaxQueueSize),
		components: components,
		results:    results,
		stats:      NewStats(time.Hour),
		log:        log,
		cfg:        cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.components, o.results, o.stats, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.cleanup(workerCtx)
			}
		}
	}()
}

func (o *Orchestrator) cleanup(ctx context.Context) {
	for _, id := range o.jobs.Cleanup() {
		if _, err := o.results.DeleteJob(ctx, id); err != nil {
			o.log.Warn("expire job results", "job_id", id, "error", err)
		}
	}
}

// ErrStopped is returned by Submit once Stop has been called.
var ErrStopped = errors.New("pipeline is shutting down")

// Stop gracefully shuts down the pipeline. Later calls are no-ops.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()

	// Jobs still queued will never run.
	for job := range o.queue {
		job.Fail("queued", "", ErrStopped)
		if err := job.releaseFile(); err != nil {
			o.log.Warn("remove staged upload", "job_id", job.ID, "error", err)
		}
	}
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	if _, ok := o.components[job.Kind]; !ok {
		job.Fail("queued", string(detection.UnsupportedDataType), fmt.Errorf("no %s component", job.Kind))
		job.releaseFile()
		return fmt.Errorf("no component for job type %q", job.Kind)
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		job.Fail("queued", "", ErrStopped)
		job.releaseFile()
		return ErrStopped
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		job.releaseFile()
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// Tracks returns a job's stored tracks.
func (o *Orchestrator) Tracks(ctx context.Context, id string) ([]detection.Track, error) {
	return o.results.Tracks(ctx, id)
}

// DeleteJob forgets a finished job and its stored results. It reports false
// when the job is unknown.
func (o *Orchestrator) DeleteJob(ctx context.Context, id string) (bool, error) {
	job := o.jobs.Get(id)
	if job == nil {
		return false, nil
	}
	if !job.Snapshot().Status.Done() {
		return true, fmt.Errorf("job %s is still running", id)
	}
	o.jobs.Delete(id)
	if _, err := o.results.DeleteJob(ctx, id); err != nil {
		return true, err
	}
	return true, nil
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the job latency tracker.
func (o *Orchestrator) Stats() *Stats {
	return o.stats
}

// StageUpload copies an upload to a temp file keeping its extension, which
// the local parsers dispatch on.
func StageUpload(r io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	tmp, err := os.CreateTemp("", "docdetect-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tmp.Name(), nil
}
