package pipeline

import (
	"testing"
	"time"
)

func millis(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestStats_Percentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	for _, n := range []int{100, 200, 300, 400, 500} {
		stats.Record(Timing{Kind: KindText, Detect: millis(n)})
	}

	got := stats.Snapshot().Total
	want := Latency{Count: 5, MinMs: 100, MaxMs: 500, AvgMs: 300, P50Ms: 300, P95Ms: 480, P99Ms: 496}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestStats_ByKindAndPhase(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(Timing{Kind: KindText, Detect: millis(40), Store: millis(10)})
	stats.Record(Timing{Kind: KindText, Detect: millis(60), Store: millis(30)})
	stats.Record(Timing{Kind: KindImage, Detect: millis(500), Store: millis(5)})
	stats.Record(Timing{Kind: KindImage, Detect: millis(9000), Failed: true})

	snap := stats.Snapshot()
	if snap.Completed != 3 || snap.Failed != 1 {
		t.Fatalf("completed=%d failed=%d", snap.Completed, snap.Failed)
	}
	if snap.Total.MaxMs != 505 {
		t.Errorf("failed jobs must not count towards latency, max=%d", snap.Total.MaxMs)
	}

	text := snap.ByKind[KindText]
	if text.Completed != 2 || text.Failed != 0 {
		t.Errorf("text counts: %+v", text)
	}
	if text.Detect.AvgMs != 50 || text.Store.AvgMs != 20 || text.Total.AvgMs != 70 {
		t.Errorf("text phases: detect %v store %v total %v", text.Detect.AvgMs, text.Store.AvgMs, text.Total.AvgMs)
	}

	img := snap.ByKind[KindImage]
	if img.Completed != 1 || img.Failed != 1 || img.Detect.Count != 1 || img.Detect.MaxMs != 500 {
		t.Errorf("image stats: %+v", img)
	}
}

func TestStats_OnlyFailures(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(Timing{Kind: KindText, Detect: millis(5), Failed: true})
	snap := stats.Snapshot()
	if snap.Failed != 1 || snap.Total.Count != 0 || snap.ByKind[KindText].Total.Count != 0 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestStats_ExpiresOldSamples(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	stats := NewStats(time.Minute)
	stats.now = func() time.Time { return now }

	stats.Record(Timing{Kind: KindText, Detect: millis(100)})
	now = now.Add(30 * time.Second)
	stats.Record(Timing{Kind: KindText, Detect: millis(200)})

	if got := stats.Snapshot().Total.Count; got != 2 {
		t.Fatalf("expected 2 samples inside the window, got %d", got)
	}

	now = now.Add(45 * time.Second)
	snap := stats.Snapshot()
	if snap.Total.Count != 1 || snap.Total.MinMs != 200 {
		t.Fatalf("expected only the 200ms sample, got %+v", snap.Total)
	}

	now = now.Add(time.Hour)
	if snap := stats.Snapshot(); snap.Completed != 0 || len(snap.ByKind) != 0 {
		t.Fatalf("expected empty window, got %+v", snap)
	}
}

func TestStats_ClampsNegativeDuration(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(Timing{Kind: KindText, Detect: -time.Second, Store: -time.Second})
	if snap := stats.Snapshot(); snap.Total.MinMs != 0 || snap.Total.Count != 1 {
		t.Fatalf("expected one clamped 0ms sample, got %+v", snap.Total)
	}
}

func TestNewStats_DefaultsWindow(t *testing.T) {
	if s := NewStats(0); s.window != time.Hour {
		t.Errorf("expected default window of an hour, got %v", s.window)
	}
	if got := NewStats(0).Snapshot().WindowSeconds; got != 3600 {
		t.Errorf("expected window_seconds=3600, got %v", got)
	}
}
