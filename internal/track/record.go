package track

import (
	"strconv"
	"strings"
)

// Output property keys.
const (
	PropText                 = "TEXT"
	PropLanguage             = "TEXT_LANGUAGE"
	PropISOLanguage          = "ISO_LANGUAGE"
	PropLanguageConfidence   = "TEXT_LANGUAGE_CONFIDENCE"
	PropSecondaryLanguages   = "SECONDARY_TEXT_LANGUAGES"
	PropSecondaryConfidences = "SECONDARY_TEXT_LANGUAGE_CONFIDENCES"
	PropTagsString           = "TAGS_STRING"
	PropTagsRegex            = "TAGS_REGEX"
	PropPageNum              = "PAGE_NUM"
	PropSectionNum           = "SECTION_NUM"
	PropMetadata             = "METADATA"
)

// NoConfidence marks tracks whose detection type carries no confidence score.
const NoConfidence float32 = -1

// NoPage is the page number reported for formats without pagination.
const NoPage = -1

// listSep joins list-valued properties.
const listSep = ", "

// Record is one emitted track. Records are values and are never modified
// after Assemble returns them.
type Record struct {
	Page    int // 1-based, or NoPage
	Section int // 1-based

	Text                 string
	Language             string
	ISO                  string
	Confidence           string
	SecondaryLanguages   []string
	SecondaryConfidences []string
	KeywordTags          []string
	RegexTags            []string

	// Metadata is set only on the leading metadata record.
	Metadata   string
	IsMetadata bool
}

// Properties renders the record as the fixed string property map.
func (r Record) Properties() map[string]string {
	if r.IsMetadata {
		return map[string]string{PropMetadata: r.Metadata}
	}
	return map[string]string{
		PropText:                 r.Text,
		PropLanguage:             r.Language,
		PropISOLanguage:          r.ISO,
		PropLanguageConfidence:   r.Confidence,
		PropSecondaryLanguages:   strings.Join(r.SecondaryLanguages, listSep),
		PropSecondaryConfidences: strings.Join(r.SecondaryConfidences, listSep),
		PropTagsString:           strings.Join(r.KeywordTags, listSep),
		PropTagsRegex:            strings.Join(r.RegexTags, listSep),
		PropPageNum:              strconv.Itoa(r.Page),
		PropSectionNum:           strconv.Itoa(r.Section),
	}
}
