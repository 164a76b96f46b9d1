package ingest

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"
)

// TextLoader loads a plain text file as a single unit.
type TextLoader struct{}

// NewTextLoader creates a TextLoader.
func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

func (l *TextLoader) Load(_ context.Context, path string) ([]Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text document: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("text document %s is not valid UTF-8", path)
	}
	return []Unit{{
		Text:     string(data),
		Metadata: map[string]any{MetaSource: path},
	}}, nil
}
