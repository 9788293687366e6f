package parser

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// csvBatchSize is the number of data rows rendered into one paragraph.
const csvBatchSize = 20

// CSVParser handles CSV files.
type CSVParser struct{}

func (p *CSVParser) Parse(_ context.Context, path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return newDocument(path, TypeCSV, nil), nil
	}

	// First row is headers.
	headers := records[0]
	dataRows := records[1:]

	var texts []string
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))
		var text strings.Builder
		for _, row := range dataRows[i:end] {
			for j, cell := range row {
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
				if j < len(row)-1 {
					text.WriteString(", ")
				}
			}
			text.WriteString("\n")
		}
		texts = append(texts, text.String())
	}
	return newDocument(path, TypeCSV, paragraphs(texts)), nil
}
