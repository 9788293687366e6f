package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/dgallion1/docdetect/internal/config"
	"github.com/dgallion1/docdetect/internal/detection"
	"github.com/dgallion1/docdetect/internal/pipeline"
	"github.com/dgallion1/docdetect/internal/store"
)

const testKey = "secret"

// lengthComponent reports the file size and the job's properties.
type lengthComponent struct{}

func (lengthComponent) GetDetections(_ context.Context, job detection.Job) ([]detection.Track, error) {
	b, err := os.ReadFile(job.MediaPath)
	if err != nil {
		return nil, err
	}
	props := map[string]string{"SIZE": strconv.Itoa(len(b))}
	for k, v := range job.JobProperties {
		props[k] = v
	}
	return []detection.Track{{Confidence: -1, Properties: props}}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{APIKey: testKey, WorkerCount: 1, MaxQueueSize: 4, MaxUploadBytes: 1 << 20, JobTTL: time.Hour}

	results, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { results.Close() })

	components := map[pipeline.Kind]pipeline.Component{
		pipeline.KindText:  lengthComponent{},
		pipeline.KindImage: lengthComponent{},
	}
	orch := pipeline.NewOrchestrator(cfg, components, results, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, log, cfg)
}

func upload(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testKey)
	return req
}

func authed(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+testKey)
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

func waitCompleted(t *testing.T, s *Server, id string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, authed(http.MethodGet, "/api/jobs/"+id+"/status"))
		var snap pipeline.JobSnapshot
		decode(t, rec, &snap)
		if snap.Status.Done() {
			if snap.Status != pipeline.StatusCompleted {
				t.Fatalf("job failed: %+v", snap)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not complete", id)
}

func TestHealth_NoAuth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic " + testKey},
		{"wrong key", "Bearer nope"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", tt.name, rec.Code)
		}
	}
}

func TestJobLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, upload(t, "notes.txt", "hello", map[string]string{"MERGE_TEXT": "true"}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var submitted struct {
		JobID   string `json:"job_id"`
		Type    string `json:"type"`
		PollURL string `json:"poll_url"`
	}
	decode(t, rec, &submitted)
	if submitted.JobID == "" || submitted.Type != "text" || submitted.PollURL != "/api/jobs/"+submitted.JobID+"/status" {
		t.Fatalf("unexpected submit response %+v", submitted)
	}

	waitCompleted(t, s, submitted.JobID)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, authed(http.MethodGet, "/api/jobs/"+submitted.JobID+"/tracks"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got struct {
		Tracks []detection.Track `json:"tracks"`
	}
	decode(t, rec, &got)
	if len(got.Tracks) != 1 || got.Tracks[0].Properties["SIZE"] != "5" || got.Tracks[0].Properties["MERGE_TEXT"] != "true" {
		t.Errorf("unexpected tracks %+v", got.Tracks)
	}
	if got.Tracks[0].Confidence != -1 {
		t.Errorf("expected confidence -1, got %v", got.Tracks[0].Confidence)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, authed(http.MethodDelete, "/api/jobs/"+submitted.JobID))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, authed(http.MethodGet, "/api/jobs/"+submitted.JobID+"/status"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, authed(http.MethodGet, "/api/stats"))
	var stats struct {
		Jobs pipeline.StatsSnapshot `json:"jobs"`
	}
	decode(t, rec, &stats)
	text := stats.Jobs.ByKind[pipeline.KindText]
	if stats.Jobs.Completed != 1 || text.Completed != 1 || text.Detect.Count != 1 || text.Store.Count != 1 {
		t.Errorf("expected one completed text job in stats, got %+v", stats.Jobs)
	}
}

func TestSubmit_Rejections(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name     string
		filename string
		fields   map[string]string
		want     int
	}{
		{"unsupported text format", "virus.exe", nil, http.StatusBadRequest},
		{"unknown type", "a.txt", map[string]string{"type": "speech"}, http.StatusBadRequest},
		{"image from text file", "a.txt", map[string]string{"type": "image"}, http.StatusBadRequest},
		{"text from spreadsheet", "book.xlsx", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, upload(t, tt.filename, "x", tt.fields))
		if rec.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, rec.Code)
		}
	}
}

func TestSubmit_SpreadsheetImages(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, upload(t, "book.xlsx", "zip bytes", map[string]string{"type": "image"}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 for xlsx image job, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSubmit_MissingFile(t *testing.T) {
	s := newTestServer(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("type", "text")
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUnknownJob(t *testing.T) {
	s := newTestServer(t)
	for _, req := range []*http.Request{
		authed(http.MethodGet, "/api/jobs/nope/status"),
		authed(http.MethodGet, "/api/jobs/nope/tracks"),
		authed(http.MethodDelete, "/api/jobs/nope"),
	} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", req.Method, req.URL.Path, rec.Code)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":         "report.pdf",
		"../../etc/passwd":   "passwd",
		"a..b.txt":           "a_b.txt",
		"":                   "unnamed",
		"dir/sub/slide.pptx": "slide.pptx",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
