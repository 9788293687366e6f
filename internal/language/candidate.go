package language

import "strings"

// Tier is a detector's qualitative confidence in a candidate.
type Tier int

const (
	None Tier = iota
	Low
	Medium
	High
)

func (t Tier) String() string {
	switch t {
	case Low:
		return "LOW"
	case Medium:
		return "MEDIUM"
	case High:
		return "HIGH"
	}
	return "NONE"
}

// TierFor buckets a probability in [0,1] the way Tika's Optimaize adapter does.
func TierFor(score float64) Tier {
	switch {
	case score > 0.9:
		return High
	case score > 0.7:
		return Medium
	case score > 0:
		return Low
	}
	return None
}

// Candidate is one entry of a detector's ranked output.
type Candidate struct {
	Code    string // ISO 639-1 code as reported by the detector
	Tier    Tier
	Certain bool // detector considers the candidate reasonably certain
}

// Language is an accepted candidate resolved against the lookup tables.
type Language struct {
	Code       string
	Name       string
	ISO        string
	Confidence string
}

// Result is the policy-filtered ranking for one text span.
type Result struct {
	Language   string
	ISO        string
	Confidence string
	Secondary  []Language
}

const (
	UnknownName = "Unknown"
	UnknownISO  = "UNKNOWN"
)

// Unknown is the result reported when no candidate is accepted.
func Unknown() Result {
	return Result{Language: UnknownName, ISO: UnknownISO}
}

// IsUnknown reports whether no language was accepted.
func (r Result) IsUnknown() bool { return r.ISO == UnknownISO }

// SecondaryNames returns the display names of the secondary languages.
func (r Result) SecondaryNames() []string {
	out := make([]string, len(r.Secondary))
	for i, l := range r.Secondary {
		out[i] = l.Name
	}
	return out
}

// SecondaryConfidences returns the confidences parallel to SecondaryNames.
func (r Result) SecondaryConfidences() []string {
	out := make([]string, len(r.Secondary))
	for i, l := range r.Secondary {
		out[i] = l.Confidence
	}
	return out
}

func normalizeCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return code
}
