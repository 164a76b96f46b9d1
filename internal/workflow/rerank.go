package workflow

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"assistant-ai/internal/index"
	"assistant-ai/internal/ingest"
)

const (
	lexicalLengthScale = float32(10.0)
	maxLexicalScore    = float32(0.4)
	headingMatchBonus  = float32(0.1)
)

var lexicalStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {},
	"or": {}, "the": {}, "to": {}, "was": {}, "were": {}, "what": {}, "with": {},
}

// rerank orders retrieved chunks by vector score plus a bounded lexical
// bonus. The set of chunks is unchanged.
func rerank(question string, chunks []index.RetrievedChunk) []index.RetrievedChunk {
	queryTokens := filterStopwords(tokenize(question))
	if len(queryTokens) == 0 || len(chunks) < 2 {
		return chunks
	}

	type scored struct {
		chunk index.RetrievedChunk
		score float32
	}
	ranked := make([]scored, len(chunks))
	for i, c := range chunks {
		heading, _ := c.Metadata[ingest.MetaHeadingPath].(string)
		ranked[i] = scored{chunk: c, score: c.Score + lexicalScore(queryTokens, c.Text, heading)}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	out := make([]index.RetrievedChunk, len(ranked))
	for i, r := range ranked {
		out[i] = r.chunk
	}
	return out
}

// lexicalScore is a normalised term-overlap score in [0, maxLexicalScore].
func lexicalScore(queryTokens []string, chunkText, headingPath string) float32 {
	chunkTokens := tokenize(chunkText)
	if len(chunkTokens) == 0 {
		return 0
	}

	chunkFreq := make(map[string]int, len(chunkTokens))
	for _, token := range chunkTokens {
		chunkFreq[token]++
	}

	var rawMatches int
	for _, token := range queryTokens {
		rawMatches += chunkFreq[token]
	}
	score := (float32(rawMatches) / (1 + float32(len(chunkTokens)))) * lexicalLengthScale

	if headingTokens := tokenize(headingPath); len(headingTokens) > 0 {
		headingSet := make(map[string]struct{}, len(headingTokens))
		for _, token := range headingTokens {
			headingSet[token] = struct{}{}
		}
		for _, token := range queryTokens {
			if _, ok := headingSet[token]; ok {
				score += headingMatchBonus
			}
		}
	}

	return min(score, maxLexicalScore)
}

func tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func filterStopwords(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := lexicalStopwords[token]; isStop {
			continue
		}
		result = append(result, token)
	}
	return result
}
