package track

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docdetect/internal/doctree"
	"github.com/dgallion1/docdetect/internal/language"
)

// Analyzer identifies the languages of a text span.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (language.Result, error)
}

// Tagger returns the keyword-rule and regex-rule labels that match text.
type Tagger interface {
	Match(text string) (keywordTags, regexTags []string)
}

// Options shapes the assembled output.
type Options struct {
	ListAllPages        bool // emit a placeholder record for all-blank pages
	MergeText           bool // one record for the whole document
	StoreMetadata       bool // prepend a METADATA record
	MinCharsForLanguage int  // shorter trimmed text skips language detection
	PageNumbers         bool // report real page numbers instead of NoPage
}

// paginated lists the content types whose parser output carries real page
// boundaries.
var paginated = map[string]bool{
	"application/pdf":               true,
	"application/vnd.ms-powerpoint": true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"application/vnd.oasis.opendocument.presentation":                           true,
}

// SupportsPageNumbers reports whether records for contentType get page numbers.
func SupportsPageNumbers(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	return paginated[mt]
}

// Assembler turns a PageTree into ordered records.
type Assembler struct {
	Analyzer Analyzer
	Tagger   Tagger
	Log      *slog.Logger
}

// Assemble walks pages then sections in document order. Blank sections are
// skipped. Failures while analysing one section are logged and that section
// falls back to an unknown language with no tags.
func (a *Assembler) Assemble(ctx context.Context, tree *doctree.PageTree, metadata map[string]string, opts Options) []Record {
	var out []Record
	if opts.StoreMetadata {
		out = append(out, metadataRecord(metadata))
	}

	var texts []Record
	if opts.MergeText {
		texts = a.merged(ctx, tree, opts)
	} else {
		texts = a.perSection(ctx, tree, opts)
	}
	if len(texts) == 0 {
		a.log().Warn("no text extracted from document", "pages", tree.PageCount())
	}
	return append(out, texts...)
}

func (a *Assembler) perSection(ctx context.Context, tree *doctree.PageTree, opts Options) []Record {
	var out []Record
	for p, page := range tree.Pages {
		pageNum := NoPage
		if opts.PageNumbers {
			pageNum = p + 1
		}
		if page.IsBlank() {
			if opts.ListAllPages {
				out = append(out, Record{
					Page:     pageNum,
					Section:  1,
					Language: language.UnknownName,
					ISO:      language.UnknownISO,
				})
			}
			continue
		}
		for s, sec := range page.Sections {
			text := strings.TrimSpace(sec.Text())
			if text == "" {
				continue
			}
			rec := a.analyze(ctx, text, opts)
			rec.Page = pageNum
			rec.Section = s + 1
			out = append(out, rec)
		}
	}
	return out
}

func (a *Assembler) merged(ctx context.Context, tree *doctree.PageTree, opts Options) []Record {
	var parts []string
	for _, page := range tree.Pages {
		for _, sec := range page.Sections {
			if text := strings.TrimSpace(sec.Text()); text != "" {
				parts = append(parts, text)
			}
		}
	}
	if len(parts) == 0 {
		return nil
	}
	rec := a.analyze(ctx, strings.Join(parts, "\n"), opts)
	rec.Page = NoPage
	rec.Section = 1
	return []Record{rec}
}

func (a *Assembler) analyze(ctx context.Context, text string, opts Options) (rec Record) {
	rec = Record{Text: text, Language: language.UnknownName, ISO: language.UnknownISO}
	defer func() {
		if r := recover(); r != nil {
			a.log().Error("section analysis panicked", "error", fmt.Sprint(r))
			rec = Record{Text: text, Language: language.UnknownName, ISO: language.UnknownISO}
		}
	}()

	if a.Analyzer != nil && utf8.RuneCountInString(text) >= opts.MinCharsForLanguage {
		res, err := a.Analyzer.Analyze(ctx, text)
		if err != nil {
			a.log().Warn("language detection failed", "error", err)
		} else {
			rec.Language = res.Language
			rec.ISO = res.ISO
			rec.Confidence = res.Confidence
			if len(res.Secondary) > 0 {
				rec.SecondaryLanguages = res.SecondaryNames()
				rec.SecondaryConfidences = res.SecondaryConfidences()
			}
		}
	}
	if a.Tagger != nil {
		rec.KeywordTags, rec.RegexTags = a.Tagger.Match(text)
	}
	return rec
}

func metadataRecord(metadata map[string]string) Record {
	if metadata == nil {
		metadata = map[string]string{}
	}
	// Map keys marshal sorted, so output is stable.
	b, _ := json.Marshal(metadata)
	return Record{Page: NoPage, IsMetadata: true, Metadata: string(b)}
}

func (a *Assembler) log() *slog.Logger {
	if a.Log == nil {
		return slog.Default()
	}
	return a.Log
}
