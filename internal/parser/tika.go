package parser

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-tika/tika"
)

// tikaContentKey holds the extracted body in recursive metadata output.
const tikaContentKey = "X-TIKA:content"

// TikaParser sends documents to a Tika Server and tokenizes the XHTML it
// returns. Only the container document is used; embedded documents are
// ignored.
type TikaParser struct {
	client *tika.Client
}

// NewTika returns a parser talking to the Tika Server at url.
func NewTika(url string, httpClient *http.Client) *TikaParser {
	return &TikaParser{client: tika.NewClient(httpClient, url)}
}

func (p *TikaParser) Parse(ctx context.Context, path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	docs, err := p.client.MetaRecursiveType(ctx, f, "html")
	if err != nil {
		return nil, fmt.Errorf("tika parse: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("tika parse: empty response")
	}

	meta := make(map[string]string, len(docs[0]))
	var content string
	for k, v := range docs[0] {
		if k == tikaContentKey {
			content = strings.Join(v, "")
			continue
		}
		meta[k] = strings.Join(v, ", ")
	}
	if _, ok := meta["resourceName"]; !ok {
		meta["resourceName"] = filepath.Base(path)
	}
	return &Document{
		ContentType: meta["Content-Type"],
		Metadata:    meta,
		Events:      Tokenize(strings.NewReader(content)),
	}, nil
}
