package images

import (
	"fmt"
	"path/filepath"
)

// Layout decides where a saved image goes relative to the output directory
// and whether its bytes still need writing.
type Layout interface {
	Place(page int, hash, ext string) (rel string, write bool)
}

// NewLayout returns PerPageLayout when organizing by page and SharedLayout
// otherwise. Layouts hold per-document state; use a fresh one per job.
func NewLayout(byPage bool) Layout {
	if byPage {
		return &PerPageLayout{seen: make(map[string]bool)}
	}
	return &SharedLayout{seen: make(map[string]bool)}
}

// SharedLayout stores every image in one directory. An image appearing on
// many pages is written once and referenced from each.
type SharedLayout struct {
	seen map[string]bool
}

func (l *SharedLayout) Place(_ int, hash, ext string) (string, bool) {
	rel := fileName(hash, ext)
	if l.seen[rel] {
		return rel, false
	}
	l.seen[rel] = true
	return rel, true
}

// PerPageLayout stores images under page-N/, or common/ when the page is
// unknown. Duplicates are collapsed within a page only.
type PerPageLayout struct {
	seen map[string]bool
}

func (l *PerPageLayout) Place(page int, hash, ext string) (string, bool) {
	dir := "common"
	if page > 0 {
		dir = fmt.Sprintf("page-%d", page)
	}
	rel := filepath.Join(dir, fileName(hash, ext))
	if l.seen[rel] {
		return rel, false
	}
	l.seen[rel] = true
	return rel, true
}

func fileName(hash, ext string) string {
	if len(hash) > 16 {
		hash = hash[:16]
	}
	return "image-" + hash + ext
}
