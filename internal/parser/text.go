package parser

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
)

// TextParser handles plain text files, one paragraph per blank-line
// separated block.
type TextParser struct{}

func (p *TextParser) Parse(_ context.Context, path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	paras, err := scanParagraphs(f)
	if err != nil {
		return nil, err
	}
	return newDocument(path, TypeText, paragraphs(paras)), nil
}

func scanParagraphs(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paras []string
	var current strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paras = append(paras, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		paras = append(paras, current.String())
	}
	return paras, scanner.Err()
}

// splitParagraphs applies the same blank-line rule to in-memory text.
func splitParagraphs(text string) []string {
	paras, _ := scanParagraphs(strings.NewReader(text))
	return paras
}
