package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFLoader loads one unit per page. Page numbers in metadata are 0-based.
type PDFLoader struct{}

// NewPDFLoader creates a PDFLoader.
func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

func (l *PDFLoader) Load(ctx context.Context, path string) (units []Unit, err error) {
	// The parser panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			units = nil
			err = fmt.Errorf("failed to parse PDF %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		units = append(units, Unit{
			Text: text,
			Metadata: map[string]any{
				MetaSource:     path,
				MetaPage:       i - 1,
				MetaTotalPages: total,
			},
		})
	}

	if len(units) == 0 {
		return nil, fmt.Errorf("PDF %s contains no extractable text", path)
	}
	return units, nil
}
