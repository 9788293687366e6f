package language

import (
	"context"

	"github.com/abadojack/whatlanggo"
)

// Whatlang reports whatlanggo's single best guess.
type Whatlang struct{}

func NewWhatlang() *Whatlang { return &Whatlang{} }

func (Whatlang) Detect(_ context.Context, text string) ([]Candidate, error) {
	info := whatlanggo.Detect(text)
	if info.Confidence <= 0 {
		return nil, nil
	}
	code := FromISO3(info.Lang.Iso6393())
	if code == "" {
		return nil, nil
	}
	return []Candidate{{
		Code:    code,
		Tier:    TierFor(info.Confidence),
		Certain: info.IsReliable(),
	}}, nil
}
