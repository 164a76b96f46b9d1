package ingest

import (
	"math"
	"slices"
	"unicode/utf8"
)

// ChunkStats summarizes chunk lengths in runes.
type ChunkStats struct {
	Count int     `json:"count"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Mean  float64 `json:"mean"`
	P95   int     `json:"p95"`
}

// ComputeStats returns length statistics for chunks.
func ComputeStats(chunks []Chunk) ChunkStats {
	if len(chunks) == 0 {
		return ChunkStats{}
	}

	lengths := make([]int, len(chunks))
	sum := 0
	for i, c := range chunks {
		lengths[i] = utf8.RuneCountInString(c.Text)
		sum += lengths[i]
	}
	slices.Sort(lengths)

	p95Index := int(math.Ceil(float64(len(lengths))*0.95)) - 1
	if p95Index < 0 {
		p95Index = 0
	}

	mean := float64(sum) / float64(len(lengths))
	return ChunkStats{
		Count: len(lengths),
		Min:   lengths[0],
		Max:   lengths[len(lengths)-1],
		Mean:  math.Round(mean*100) / 100, // Round to 2 decimal places
		P95:   lengths[p95Index],
	}
}
