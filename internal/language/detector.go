package language

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Detector returns ranked language candidates for a span of text, highest
// confidence first.
type Detector interface {
	Detect(ctx context.Context, text string) ([]Candidate, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context, text string) ([]Candidate, error)

func (f DetectorFunc) Detect(ctx context.Context, text string) ([]Candidate, error) {
	return f(ctx, text)
}

// Backend names a detector implementation.
type Backend string

const (
	BackendLingua   Backend = "LINGUA"
	BackendWhatlang Backend = "WHATLANG"
	BackendTika     Backend = "TIKA"

	DefaultBackend = BackendLingua
)

// Select resolves a selector string. Unrecognised values fall back to the
// default backend and report ok=false.
func Select(name string) (Backend, bool) {
	switch b := Backend(strings.ToUpper(strings.TrimSpace(name))); b {
	case BackendLingua, BackendWhatlang, BackendTika:
		return b, true
	case "":
		return DefaultBackend, true
	}
	return DefaultBackend, false
}

// RegistryOptions configures how backends are built.
type RegistryOptions struct {
	TikaURL string // Tika Server base URL for the TIKA backend
	Preload bool   // load all lingua models when the backend is built
}

// Registry builds each backend at most once and shares it between jobs.
type Registry struct {
	log      *slog.Logger
	builders map[Backend]func() (Detector, error)
}

// NewRegistry returns a registry whose backends are built lazily.
func NewRegistry(opts RegistryOptions, log *slog.Logger) *Registry {
	return &Registry{
		log: log,
		builders: map[Backend]func() (Detector, error){
			BackendLingua:   sync.OnceValues(func() (Detector, error) { return NewLingua(opts.Preload) }),
			BackendWhatlang: sync.OnceValues(func() (Detector, error) { return NewWhatlang(), nil }),
			BackendTika:     sync.OnceValues(func() (Detector, error) { return NewTika(opts.TikaURL, nil) }),
		},
	}
}

// Get returns the detector for a selector, falling back to the default
// backend with a warning when the selector is not recognised.
func (r *Registry) Get(selector string) (Detector, error) {
	b, ok := Select(selector)
	if !ok {
		r.log.Warn("unknown language detector, using default", "selector", selector, "default", string(DefaultBackend))
	}
	d, err := r.builders[b]()
	if err != nil {
		return nil, fmt.Errorf("build %s language detector: %w", b, err)
	}
	return d, nil
}
