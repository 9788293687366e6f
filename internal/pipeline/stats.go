package pipeline

import (
	"slices"
	"sync"
	"time"
)

// Timing is what a worker measured for one finished job.
type Timing struct {
	Kind   Kind
	Detect time.Duration // component GetDetections
	Store  time.Duration // result persistence; zero when the job failed first
	Failed bool
}

func (t Timing) total() time.Duration { return t.Detect + t.Store }

type timedSample struct {
	at time.Time
	Timing
}

// Latency summarises a set of durations in milliseconds.
type Latency struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// KindStats breaks one job kind down by phase. Latencies cover completed
// jobs only; failures are counted.
type KindStats struct {
	Completed int     `json:"completed"`
	Failed    int     `json:"failed"`
	Total     Latency `json:"total"`
	Detect    Latency `json:"detect"`
	Store     Latency `json:"store"`
}

// StatsSnapshot aggregates the jobs finished within the window.
type StatsSnapshot struct {
	WindowSeconds float64            `json:"window_seconds"`
	Completed     int                `json:"completed"`
	Failed        int                `json:"failed"`
	Total         Latency            `json:"total"`
	ByKind        map[Kind]KindStats `json:"by_kind"`
}

// Stats keeps the timings of recently finished jobs in a rolling window.
type Stats struct {
	mu      sync.Mutex
	samples []timedSample
	window  time.Duration
	now     func() time.Time
}

// NewStats returns a tracker keeping samples for window (an hour when
// window is not positive).
func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window, now: time.Now}
}

// Record adds one finished job. Negative durations count as zero.
func (s *Stats) Record(t Timing) {
	t.Detect = max(t.Detect, 0)
	t.Store = max(t.Store, 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.expireLocked(now)
	s.samples = append(s.samples, timedSample{at: now, Timing: t})
}

// Snapshot summarises the window overall and per job kind.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	s.expireLocked(s.now())
	samples := slices.Clone(s.samples)
	s.mu.Unlock()

	snap := StatsSnapshot{
		WindowSeconds: s.window.Seconds(),
		ByKind:        make(map[Kind]KindStats),
	}
	var total []time.Duration
	type phases struct{ total, detect, store []time.Duration }
	perKind := make(map[Kind]*phases)
	for _, sm := range samples {
		ks := snap.ByKind[sm.Kind]
		if sm.Failed {
			snap.Failed++
			ks.Failed++
			snap.ByKind[sm.Kind] = ks
			continue
		}
		snap.Completed++
		ks.Completed++
		snap.ByKind[sm.Kind] = ks

		p := perKind[sm.Kind]
		if p == nil {
			p = &phases{}
			perKind[sm.Kind] = p
		}
		p.total = append(p.total, sm.total())
		p.detect = append(p.detect, sm.Detect)
		p.store = append(p.store, sm.Store)
		total = append(total, sm.total())
	}

	snap.Total = summarize(total)
	for kind, p := range perKind {
		ks := snap.ByKind[kind]
		ks.Total = summarize(p.total)
		ks.Detect = summarize(p.detect)
		ks.Store = summarize(p.store)
		snap.ByKind[kind] = ks
	}
	return snap
}

// expireLocked drops samples older than the window. Samples are appended in
// time order, so the expired ones form a prefix.
func (s *Stats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i, _ := slices.BinarySearchFunc(s.samples, cutoff, func(sm timedSample, c time.Time) int {
		return sm.at.Compare(c)
	})
	if i > 0 {
		s.samples = slices.Delete(s.samples, 0, i)
	}
}

func summarize(ds []time.Duration) Latency {
	if len(ds) == 0 {
		return Latency{}
	}
	ms := make([]int64, len(ds))
	var sum int64
	for i, d := range ds {
		ms[i] = d.Milliseconds()
		sum += ms[i]
	}
	slices.Sort(ms)
	return Latency{
		Count: len(ms),
		MinMs: ms[0],
		MaxMs: ms[len(ms)-1],
		AvgMs: float64(sum) / float64(len(ms)),
		P50Ms: quantile(ms, 50),
		P95Ms: quantile(ms, 95),
		P99Ms: quantile(ms, 99),
	}
}

// quantile returns the pct-th percentile of sorted, interpolating linearly
// between the closest ranks.
func quantile(sorted []int64, pct float64) float64 {
	pos := float64(len(sorted)-1) * pct / 100
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return float64(sorted[len(sorted)-1])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
