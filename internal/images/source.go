package images

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// UnknownPage marks images whose page cannot be determined.
const UnknownPage = -1

// ErrNoSource is returned for content types that carry no extractable images.
var ErrNoSource = errors.New("no image source for content type")

// Image is one embedded image as found in a document.
type Image struct {
	Page int    // 1-based, or UnknownPage
	Name string // name inside the source document
	Ext  string // file extension including the dot
	Data []byte
}

// Source lists the embedded images of a document.
type Source interface {
	Images(ctx context.Context, path string) ([]Image, error)
}

// mediaDirs are the archive folders holding embedded media per format.
var mediaDirs = map[string][]string{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {"word/media/"},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {"ppt/media/"},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {"xl/media/"},
	"application/vnd.oasis.opendocument.text":                                   {"Pictures/"},
	"application/vnd.oasis.opendocument.presentation":                           {"Pictures/"},
}

// SourceFor picks the image source for a content type.
func SourceFor(contentType string) (Source, error) {
	ct, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	ct = strings.TrimSpace(ct)
	if ct == "application/pdf" {
		return PDFSource{}, nil
	}
	if dirs, ok := mediaDirs[ct]; ok {
		return ArchiveSource{Dirs: dirs}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoSource, contentType)
}

// PDFSource extracts image XObjects page by page with pdfcpu.
type PDFSource struct{}

func (PDFSource) Images(ctx context.Context, path string) ([]Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	var out []Image
	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := pdfcpu.ExtractPageImages(pctx, pageNr, false)
		if err != nil {
			return nil, fmt.Errorf("extract images from page %d: %w", pageNr, err)
		}
		objNrs := make([]int, 0, len(found))
		for nr := range found {
			objNrs = append(objNrs, nr)
		}
		slices.Sort(objNrs)
		for _, nr := range objNrs {
			img := found[nr]
			data, err := io.ReadAll(img)
			if err != nil {
				return nil, fmt.Errorf("read image %d on page %d: %w", nr, pageNr, err)
			}
			out = append(out, Image{
				Page: pageNr,
				Name: fmt.Sprintf("%s_%d", img.Name, nr),
				Ext:  "." + img.FileType,
				Data: data,
			})
		}
	}
	return out, nil
}

// ArchiveSource reads media files from ZIP-based office formats. The page an
// image belongs to is not recovered.
type ArchiveSource struct {
	Dirs []string
}

func (s ArchiveSource) Images(ctx context.Context, p string) ([]Image, error) {
	r, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var out []Image
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !s.inMedia(f.Name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		out = append(out, Image{
			Page: UnknownPage,
			Name: f.Name,
			Ext:  strings.ToLower(path.Ext(f.Name)),
			Data: data,
		})
	}
	return out, nil
}

func (s ArchiveSource) inMedia(name string) bool {
	for _, d := range s.Dirs {
		if strings.HasPrefix(name, d) {
			return true
		}
	}
	return false
}
