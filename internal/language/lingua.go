package language

import (
	"context"
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Lingua ranks every language lingua-go knows by its confidence value.
type Lingua struct {
	detector lingua.LanguageDetector
}

// NewLingua builds a detector over all languages. With preload, every
// language model is loaded now instead of on first use.
func NewLingua(preload bool) (d *Lingua, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("load lingua models: %v", r)
		}
	}()
	b := lingua.NewLanguageDetectorBuilder().FromAllLanguages()
	if preload {
		b = b.WithPreloadedLanguageModels()
	}
	return &Lingua{detector: b.Build()}, nil
}

func (l *Lingua) Detect(_ context.Context, text string) ([]Candidate, error) {
	values := l.detector.ComputeLanguageConfidenceValues(text)
	cands := make([]Candidate, 0, len(values))
	for _, v := range values {
		if v.Value() <= 0 {
			continue
		}
		tier := TierFor(v.Value())
		cands = append(cands, Candidate{
			Code:    strings.ToLower(v.Language().IsoCode639_1().String()),
			Tier:    tier,
			Certain: tier == High,
		})
	}
	return cands, nil
}
