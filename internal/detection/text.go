package detection

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/dgallion1/docdetect/internal/doctree"
	"github.com/dgallion1/docdetect/internal/language"
	"github.com/dgallion1/docdetect/internal/parser"
	"github.com/dgallion1/docdetect/internal/tagging"
	"github.com/dgallion1/docdetect/internal/track"
)

// Detectors resolves a LANGUAGE_DETECTOR selector to a detector.
type Detectors interface {
	Get(selector string) (language.Detector, error)
}

// TextConfig wires a TextComponent.
type TextConfig struct {
	Parser          parser.Parser
	Detectors       Detectors
	DefaultDetector string // used when the job sets no LANGUAGE_DETECTOR
	TaggingFile     string // used when the job sets no TAGGING_FILE
}

// TextComponent extracts text tracks with language and tag properties.
type TextComponent struct {
	cfg TextConfig
	log *slog.Logger
}

func NewTextComponent(cfg TextConfig, log *slog.Logger) *TextComponent {
	return &TextComponent{cfg: cfg, log: log}
}

// Init builds the default language detector so model loading fails at
// startup rather than on the first job.
func (c *TextComponent) Init() error {
	if _, err := c.cfg.Detectors.Get(c.cfg.DefaultDetector); err != nil {
		return newError(DetectionFailed, err, "initialise language detector")
	}
	return nil
}

// GetDetections parses the job's document and returns one track per
// non-blank section, shaped by the job properties.
func (c *TextComponent) GetDetections(ctx context.Context, job Job) ([]Track, error) {
	log := c.log.With("job", job.Name)

	path, err := openable(job)
	if err != nil {
		return nil, err
	}
	o, err := textOptions(job)
	if err != nil {
		return nil, err
	}

	doc, err := c.cfg.Parser.Parse(ctx, path)
	if err != nil {
		if errors.Is(err, parser.ErrUnsupportedFormat) {
			return nil, newError(UnsupportedDataType, err, "cannot extract text from %s", path)
		}
		return nil, newError(CouldNotReadDatafile, err, "parse %s", path)
	}
	tree := doctree.Reduce(doc.Events, doctree.ReduceOptions{SuppressBlankSections: o.suppressBlank})
	log.Debug("document reduced", "content_type", doc.ContentType, "pages", tree.PageCount())

	detector, err := c.cfg.Detectors.Get(job.String(PropLanguageDetector, c.cfg.DefaultDetector))
	if err != nil {
		return nil, newError(DetectionFailed, err, "language detector")
	}
	rules := tagging.LoadOrEmpty(job.String(PropTaggingFile, c.cfg.TaggingFile), log)

	a := &track.Assembler{
		Analyzer: language.Ranker{Detector: detector, Policy: o.policy},
		Tagger:   rules,
		Log:      log,
	}
	o.assemble.PageNumbers = track.SupportsPageNumbers(doc.ContentType)
	records := a.Assemble(ctx, tree, doc.Metadata, o.assemble)

	tracks := make([]Track, len(records))
	for i, r := range records {
		tracks[i] = Track{Confidence: track.NoConfidence, Properties: r.Properties()}
	}
	log.Info("text detection complete", "tracks", len(tracks))
	return tracks, nil
}

type textOpts struct {
	assemble      track.Options
	policy        language.Policy
	suppressBlank bool
}

func textOptions(job Job) (textOpts, error) {
	var o textOpts
	var err error
	if o.assemble.ListAllPages, err = job.Bool(PropListAllPages, false); err != nil {
		return o, err
	}
	if o.assemble.MergeText, err = job.Bool(PropMergeText, false); err != nil {
		return o, err
	}
	if o.assemble.StoreMetadata, err = job.Bool(PropStoreMetadata, false); err != nil {
		return o, err
	}
	if o.assemble.MinCharsForLanguage, err = job.Int(PropMinCharsForLanguage, 0); err != nil {
		return o, err
	}
	if o.suppressBlank, err = job.Bool(PropSuppressBlankSection, false); err != nil {
		return o, err
	}
	o.policy = language.DefaultPolicy()
	if o.policy.MinLanguages, err = job.Int(PropMinLanguages, o.policy.MinLanguages); err != nil {
		return o, err
	}
	if o.policy.MaxLanguages, err = job.Int(PropMaxLanguages, o.policy.MaxLanguages); err != nil {
		return o, err
	}
	return o, nil
}

// openable resolves the job's media path and checks it can be opened.
func openable(job Job) (string, error) {
	path, err := job.LocalPath()
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", newError(CouldNotOpenDatafile, err, "open %s", path)
	}
	f.Close()
	return path, nil
}
