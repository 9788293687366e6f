package detection

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/docdetect/internal/images"
	"github.com/dgallion1/docdetect/internal/parser"
	"github.com/dgallion1/docdetect/internal/track"
)

// Image track property keys.
const (
	PropSavedImages     = "SAVED_IMAGES"
	PropImageCount      = "IMAGE_COUNT"
	PropImageDimensions = "IMAGE_DIMENSIONS" // WxH per saved image, parallel to SAVED_IMAGES
)

// ImageComponent saves a document's embedded images to disk.
type ImageComponent struct {
	OutputDir string // used when the job sets no IMAGE_OUTPUT_DIR
	log       *slog.Logger
}

func NewImageComponent(outputDir string, log *slog.Logger) *ImageComponent {
	return &ImageComponent{OutputDir: outputDir, log: log}
}

// GetDetections writes the images and returns one track per page holding
// images.
func (c *ImageComponent) GetDetections(ctx context.Context, job Job) ([]Track, error) {
	log := c.log.With("job", job.Name)

	path, err := openable(job)
	if err != nil {
		return nil, err
	}
	byPage, err := job.Bool(PropOrganizeByPage, false)
	if err != nil {
		return nil, err
	}
	outDir := job.String(PropImageOutputDir, c.OutputDir)
	if job.Name != "" {
		outDir = filepath.Join(outDir, filepath.Base(job.Name))
	}

	src, err := images.SourceFor(parser.ContentTypeFor(path))
	if err != nil {
		return nil, newError(UnsupportedDataType, err, "cannot extract images from %s", path)
	}
	imgs, err := src.Images(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, newError(CouldNotReadDatafile, err, "read images from %s", path)
	}

	ex := &images.Extractor{Log: log}
	pages, err := ex.Save(ctx, imgs, outDir, images.NewLayout(byPage))
	if err != nil {
		return nil, newError(DetectionFailed, err, "save images")
	}

	tracks := make([]Track, 0, len(pages))
	for _, p := range pages {
		paths := make([]string, len(p.Images))
		dims := make([]string, len(p.Images))
		for i, s := range p.Images {
			paths[i] = s.Path
			dims[i] = s.Dimensions()
		}
		tracks = append(tracks, Track{
			Confidence: track.NoConfidence,
			Properties: map[string]string{
				track.PropPageNum:   strconv.Itoa(p.Number),
				PropSavedImages:     strings.Join(paths, ", "),
				PropImageDimensions: strings.Join(dims, ", "),
				PropImageCount:      strconv.Itoa(p.Count),
			},
		})
	}
	log.Info("image extraction complete", "images", len(imgs), "pages", len(tracks))
	return tracks, nil
}
