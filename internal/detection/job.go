package detection

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Recognised job and media properties.
const (
	PropListAllPages         = "LIST_ALL_PAGES"
	PropMergeText            = "MERGE_TEXT"
	PropStoreMetadata        = "STORE_METADATA"
	PropMinCharsForLanguage  = "MIN_CHARS_FOR_LANGUAGE_DETECTION"
	PropMinLanguages         = "MIN_LANGUAGES"
	PropMaxLanguages         = "MAX_REASONABLE_LANGUAGES"
	PropLanguageDetector     = "LANGUAGE_DETECTOR"
	PropTaggingFile          = "TAGGING_FILE"
	PropSuppressBlankSection = "SUPPRESS_BLANK_SECTIONS"
	PropOrganizeByPage       = "ORGANIZE_BY_PAGE"
	PropImageOutputDir       = "IMAGE_OUTPUT_DIR"
)

// Job describes one document to process.
type Job struct {
	Name            string
	MediaPath       string // filesystem path or file:// URI
	JobProperties   map[string]string
	MediaProperties map[string]string
}

// Track is one unit of detection output.
type Track struct {
	Confidence float32           `json:"confidence"`
	Properties map[string]string `json:"properties"`
}

// Property looks key up in the media properties, then the job properties.
func (j Job) Property(key string) (string, bool) {
	if v, ok := j.MediaProperties[key]; ok {
		return v, true
	}
	v, ok := j.JobProperties[key]
	return v, ok
}

// String returns the property or def when unset or blank.
func (j Job) String(key, def string) string {
	if v, ok := j.Property(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// Bool parses a boolean property.
func (j Job) Bool(key string, def bool) (bool, error) {
	v := j.String(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, newError(InvalidProperty, err, "property %s=%q is not a boolean", key, v)
	}
	return b, nil
}

// Int parses an integer property.
func (j Job) Int(key string, def int) (int, error) {
	v := j.String(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, newError(InvalidProperty, err, "property %s=%q is not an integer", key, v)
	}
	return n, nil
}

// LocalPath resolves MediaPath to a filesystem path.
func (j Job) LocalPath() (string, error) {
	if j.MediaPath == "" {
		return "", newError(CouldNotOpenDatafile, nil, "job %q has no media path", j.Name)
	}
	if !strings.Contains(j.MediaPath, "://") {
		return j.MediaPath, nil
	}
	u, err := url.Parse(j.MediaPath)
	if err != nil {
		return "", newError(CouldNotOpenDatafile, err, "invalid media URI %q", j.MediaPath)
	}
	if u.Scheme != "file" {
		return "", newError(CouldNotOpenDatafile, fmt.Errorf("scheme %q", u.Scheme), "unsupported media URI %q", j.MediaPath)
	}
	return u.Path, nil
}
