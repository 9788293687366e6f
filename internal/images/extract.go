package images

import (
	"bytes"
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/disintegration/imaging"
)

// Saved is one image written (or referenced) on a page.
type Saved struct {
	Path   string
	Width  int // zero when the image could not be decoded
	Height int
}

// UnknownDimensions is reported for images that could not be decoded.
const UnknownDimensions = "unknown"

// Dimensions formats the image size as WxH, or UnknownDimensions.
func (s Saved) Dimensions() string {
	if s.Width == 0 || s.Height == 0 {
		return UnknownDimensions
	}
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Page groups the images found on one page.
type Page struct {
	Number int // 1-based, or UnknownPage
	Images []Saved
	Count  int // images found on the page, duplicates included
}

// Extractor writes a document's images to disk.
type Extractor struct {
	Log *slog.Logger
}

// Save writes imgs under outDir using layout and groups the results by page,
// unknown page first. The same content is never listed twice for a page.
func (e *Extractor) Save(ctx context.Context, imgs []Image, outDir string, layout Layout) ([]Page, error) {
	log := e.Log
	if log == nil {
		log = slog.Default()
	}
	byPage := make(map[int]*Page)
	listed := make(map[string]bool)
	for _, img := range imgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hash := ContentHashHex(img.Data)
		rel, write := layout.Place(img.Page, hash, img.Ext)
		full := filepath.Join(outDir, rel)

		p := byPage[img.Page]
		if p == nil {
			p = &Page{Number: img.Page}
			byPage[img.Page] = p
		}
		p.Count++

		key := fmt.Sprintf("%d/%s", img.Page, full)
		if listed[key] {
			continue
		}
		listed[key] = true

		if write {
			if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
				return nil, fmt.Errorf("create image dir: %w", err)
			}
			if err := os.WriteFile(full, img.Data, 0o644); err != nil {
				return nil, fmt.Errorf("write image: %w", err)
			}
		}

		saved := Saved{Path: full}
		if decoded, err := imaging.Decode(bytes.NewReader(img.Data)); err != nil {
			log.Debug("image not decodable", "name", img.Name, "error", err)
		} else {
			b := decoded.Bounds()
			saved.Width, saved.Height = b.Dx(), b.Dy()
		}
		p.Images = append(p.Images, saved)
	}

	out := make([]Page, 0, len(byPage))
	for _, p := range byPage {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b Page) int { return cmp.Compare(a.Number, b.Number) })
	return out, nil
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
