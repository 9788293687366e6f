package language

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-tika/tika"
)

// Tika asks a Tika Server to identify the language. The server answers with
// a bare code, so the candidate is never treated as certain.
type Tika struct {
	client *tika.Client
}

// NewTika returns a detector backed by the Tika Server at url.
func NewTika(url string, httpClient *http.Client) (*Tika, error) {
	if url == "" {
		return nil, fmt.Errorf("tika language detector requires a server url")
	}
	return &Tika{client: tika.NewClient(httpClient, url)}, nil
}

func (t *Tika) Detect(ctx context.Context, text string) ([]Candidate, error) {
	code, err := t.client.LanguageString(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("tika language: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	return []Candidate{{Code: code, Tier: Medium}}, nil
}
