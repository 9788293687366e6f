package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docdetect/internal/detection"
)

// Worker processes a single detection job.
type Worker struct {
	components map[Kind]Component
	results    ResultStore
	stats      *Stats
	log        *slog.Logger
}

func NewWorker(components map[Kind]Component, results ResultStore, stats *Stats, log *slog.Logger) *Worker {
	return &Worker{
		components: components,
		results:    results,
		stats:      stats,
		log:        log,
	}
}

// Process runs the job's component and stores its tracks. The staged upload
// is removed and the timing recorded before the job is marked finished.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "type", job.Kind, "filename", job.Filename)

	out := w.run(ctx, job, log)

	if err := job.releaseFile(); err != nil {
		log.Warn("remove staged upload", "error", err)
	}
	if out.timing.Kind != "" {
		w.stats.Record(out.timing)
	}
	if out.err != nil {
		job.Fail(out.phase, out.kind, out.err)
		return
	}
	job.Complete(out.tracks)
	log.Info("job completed", "tracks", out.tracks,
		"detect_ms", out.timing.Detect.Milliseconds(), "store_ms", out.timing.Store.Milliseconds())
}

// outcome is how a job ended. timing is left zero when no component ran.
type outcome struct {
	tracks int
	timing Timing
	phase  string
	kind   string
	err    error
}

func (w *Worker) run(ctx context.Context, job *Job, log *slog.Logger) outcome {
	// Phase 1: resolve the component and the job descriptor.
	job.SetStatus(StatusParsing, "parsing")
	comp, ok := w.components[job.Kind]
	if !ok {
		log.Error("no component for job type")
		return outcome{
			phase: "parsing",
			kind:  string(detection.UnsupportedDataType),
			err:   fmt.Errorf("unknown job type %q", job.Kind),
		}
	}
	dj := detection.Job{
		Name:          job.ID,
		MediaPath:     job.path,
		JobProperties: job.Properties(),
	}

	// Phase 2: detect.
	job.SetStatus(StatusAnalyzing, "analyzing")
	timing := Timing{Kind: job.Kind}
	start := time.Now()
	tracks, err := comp.GetDetections(ctx, dj)
	timing.Detect = time.Since(start)
	if err != nil {
		log.Error("detection failed", "error", err, "kind", detection.KindOf(err))
		timing.Failed = true
		return outcome{timing: timing, phase: "analyzing", kind: string(detection.KindOf(err)), err: err}
	}

	// Phase 3: store.
	start = time.Now()
	err = w.results.SaveTracks(ctx, job.ID, tracks)
	timing.Store = time.Since(start)
	if err != nil {
		log.Error("store tracks failed", "error", err)
		timing.Failed = true
		return outcome{timing: timing, phase: "storing", err: err}
	}
	return outcome{tracks: len(tracks), timing: timing}
}
