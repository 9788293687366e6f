package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewJob_Defaults(t *testing.T) {
	job := NewJob(KindText, "a.pdf", "/tmp/x.pdf", map[string]string{"MERGE_TEXT": "true"})
	if job.ID == "" || job.Status != StatusQueued || job.Phase != "queued" {
		t.Errorf("unexpected new job: %+v", job.Snapshot())
	}
	if other := NewJob(KindText, "a.pdf", "", nil); other.ID == job.ID {
		t.Error("expected unique job ids")
	}
	if job.Properties()["MERGE_TEXT"] != "true" {
		t.Error("properties not kept")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"", KindText, true},
		{"text", KindText, true},
		{"image", KindImage, true},
		{"speech", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseKind(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob(KindText, "doc.txt", "", nil)

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusAnalyzing, "analyzing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)
		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_FailRecordsKind(t *testing.T) {
	job := NewJob(KindText, "doc.txt", "", nil)
	job.Fail("analyzing", "MPF_COULD_NOT_READ_DATAFILE", errors.New("bad file"))
	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "analyzing" || snap.ErrorKind != "MPF_COULD_NOT_READ_DATAFILE" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	if len(snap.Errors) != 1 || snap.Errors[0] != "bad file" {
		t.Errorf("unexpected errors: %v", snap.Errors)
	}
}

func TestJob_Complete(t *testing.T) {
	job := NewJob(KindImage, "deck.pptx", "", nil)
	job.Complete(4)
	snap := job.Snapshot()
	if snap.Status != StatusCompleted || snap.Tracks != 4 || !snap.Status.Done() {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	snap := NewJob(KindText, "a", "", nil).Snapshot()
	if snap.Errors == nil {
		t.Error("expected non-nil Errors slice in snapshot")
	}
}

func TestJob_ReleaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	job := NewJob(KindText, "upload.txt", path, nil)
	if err := job.releaseFile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected staged file to be removed")
	}
	if err := job.releaseFile(); err != nil {
		t.Errorf("second release should be a no-op, got %v", err)
	}
}

func TestJobStore_PutGetDelete(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob(KindText, "a", "", nil)
	store.Put(job)

	if got := store.Get(job.ID); got != job {
		t.Errorf("expected stored job, got %v", got)
	}
	if !store.Delete(job.ID) || store.Delete(job.ID) {
		t.Error("expected first delete true and second false")
	}
	if store.Get(job.ID) != nil {
		t.Error("expected job to be gone")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	old := NewJob(KindText, "old", "", nil)
	old.Complete(0)
	old.UpdatedAt = time.Now().Add(-100 * time.Millisecond)
	store.Put(old)

	running := NewJob(KindText, "running", "", nil)
	running.SetStatus(StatusAnalyzing, "analyzing")
	running.UpdatedAt = time.Now().Add(-100 * time.Millisecond)
	store.Put(running)

	fresh := NewJob(KindText, "fresh", "", nil)
	fresh.Complete(1)
	store.Put(fresh)

	removed := store.Cleanup()
	if len(removed) != 1 || removed[0] != old.ID {
		t.Errorf("expected only the old job removed, got %v", removed)
	}
	if store.Get(running.ID) == nil {
		t.Error("running job must survive cleanup")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("fresh job should survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	if removed := NewJobStore(time.Millisecond).Cleanup(); len(removed) != 0 {
		t.Errorf("expected nothing removed, got %v", removed)
	}
}
