package language

import "context"

// Policy bounds how many candidates are reported.
type Policy struct {
	// MinLanguages candidates are accepted regardless of certainty.
	MinLanguages int
	// MaxLanguages caps the accepted list; <= 0 means no cap.
	MaxLanguages int
}

// DefaultPolicy reports at least two languages and no upper bound.
func DefaultPolicy() Policy {
	return Policy{MinLanguages: 2}
}

// Rank applies the policy to a detector's ranked candidates.
//
// Candidates are walked in the order given, which detectors guarantee to be
// highest confidence first. The first MinLanguages (bounded by the list
// length) are accepted unconditionally; beyond that a candidate must be
// reasonably certain. The walk stops at the first candidate whose code has
// no display name, or the first uncertain candidate past the floor.
func Rank(cands []Candidate, p Policy) Result {
	n := len(cands)
	effectiveMax := n
	if p.MaxLanguages > 0 && p.MaxLanguages < n {
		effectiveMax = p.MaxLanguages
	}
	effectiveMin := min(p.MinLanguages, n)
	if effectiveMin < 0 {
		effectiveMin = 0
	}

	var accepted []Language
	for i := 0; i < effectiveMax; i++ {
		c := cands[i]
		name, ok := DisplayName(c.Code)
		if !ok {
			break
		}
		if i >= effectiveMin && !c.Certain {
			break
		}
		iso, ok := ISO(c.Code)
		if !ok {
			iso = UnknownISO
		}
		accepted = append(accepted, Language{
			Code:       normalizeCode(c.Code),
			Name:       name,
			ISO:        iso,
			Confidence: c.Tier.String(),
		})
	}

	if len(accepted) == 0 {
		return Unknown()
	}
	res := Result{
		Language:   accepted[0].Name,
		ISO:        accepted[0].ISO,
		Confidence: accepted[0].Confidence,
	}
	if len(accepted) > 1 {
		res.Secondary = accepted[1:]
	}
	return res
}

// Ranker pairs a detector with a policy.
type Ranker struct {
	Detector Detector
	Policy   Policy
}

// Analyze detects and ranks the languages of text.
func (r Ranker) Analyze(ctx context.Context, text string) (Result, error) {
	cands, err := r.Detector.Detect(ctx, text)
	if err != nil {
		return Unknown(), err
	}
	return Rank(cands, r.Policy), nil
}
