package ingest

import (
	"fmt"
	"maps"
	"strings"
	"unicode/utf8"
)

// DefaultSeparators are tried in order, coarsest first.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveSplitter splits text on the coarsest separator that occurs,
// recursing into pieces that are still too long, then merges adjacent
// pieces back up to the chunk size with the requested overlap.
// Sizes are measured in runes.
type RecursiveSplitter struct {
	Separators []string
}

// NewRecursiveSplitter creates a splitter using DefaultSeparators.
func NewRecursiveSplitter() *RecursiveSplitter {
	return &RecursiveSplitter{Separators: DefaultSeparators}
}

// Split chunks every unit. Chunk metadata copies the unit metadata and adds
// the chunk's position across the whole document.
func (s *RecursiveSplitter) Split(units []Unit, chunkSize, chunkOverlap int) ([]Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be greater than 0, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", chunkSize, chunkOverlap)
	}

	var chunks []Chunk
	for _, unit := range units {
		for _, piece := range s.SplitText(unit.Text, chunkSize, chunkOverlap) {
			meta := make(map[string]any, len(unit.Metadata)+1)
			maps.Copy(meta, unit.Metadata)
			meta[MetaChunkIndex] = len(chunks)
			chunks = append(chunks, Chunk{
				Index:    len(chunks),
				Text:     piece,
				Metadata: meta,
			})
		}
	}
	return chunks, nil
}

// SplitText splits a single string. Callers are expected to have validated the sizes.
func (s *RecursiveSplitter) SplitText(text string, chunkSize, chunkOverlap int) []string {
	seps := s.Separators
	if len(seps) == 0 {
		seps = DefaultSeparators
	}
	return s.split(text, seps, chunkSize, chunkOverlap)
}

func (s *RecursiveSplitter) split(text string, separators []string, chunkSize, chunkOverlap int) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var final, pending []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if utf8.RuneCountInString(piece) < chunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			final = append(final, merge(pending, chunkSize, chunkOverlap)...)
			pending = nil
		}
		if len(rest) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, rest, chunkSize, chunkOverlap)...)
		}
	}
	if len(pending) > 0 {
		final = append(final, merge(pending, chunkSize, chunkOverlap)...)
	}
	return final
}

// splitKeepingSeparator splits text so each separator stays at the start of the piece that follows it.
func splitKeepingSeparator(text, separator string) []string {
	if separator == "" {
		pieces := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, separator)
	pieces := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = separator + part
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

// merge joins pieces into chunks of at most chunkSize runes, carrying up to
// chunkOverlap runes of trailing pieces into the next chunk.
func merge(pieces []string, chunkSize, chunkOverlap int) []string {
	var chunks []string
	var window []string
	total := 0

	emit := func() {
		if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if total+n > chunkSize && len(window) > 0 {
			emit()
			for total > chunkOverlap || (total+n > chunkSize && total > 0) {
				total -= utf8.RuneCountInString(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += n
	}
	emit()
	return chunks
}
