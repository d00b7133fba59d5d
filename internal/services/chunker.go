package services

import (
	"strings"
	"unicode/utf8"
)

// Chunk splits extracted text into overlapping windows sized by a token
// budget (~charsPerToken characters per token). Windows are measured and cut
// in runes so multibyte text never splits mid-character. Each window's end is
// snapped to the nearest sentence or paragraph break found in the last 30%
// of the window, so chunks end on natural boundaries where possible. With
// overlap smaller than the window the chunks cover the whole input.
func Chunk(text string, tokensPerChunk, overlapTokens, charsPerToken int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	chunkChars := tokensPerChunk * charsPerToken
	overlapChars := overlapTokens * charsPerToken
	if chunkChars <= 0 {
		return []string{text}
	}
	if overlapChars >= chunkChars {
		overlapChars = chunkChars / 2
	}

	runes := []rune(text)
	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + chunkChars
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		end = snapToBreak(runes, start, end)
		chunks = append(chunks, string(runes[start:end]))

		next := end - overlapChars
		if next <= start {
			// Overlap would stall the window; force forward progress.
			next = start + 1
		}
		start = next
	}
	return chunks
}

// Break markers in priority order; a paragraph break beats a sentence end.
var breakMarkers = []string{"\n\n", ". ", "! ", "? ", "\n"}

// snapToBreak moves the window end back to the nearest break found in the
// final 30% of the window. The break itself stays inside the chunk. Offsets
// are rune indices; the markers are ASCII, so their rune and byte lengths
// coincide.
func snapToBreak(runes []rune, start, end int) int {
	searchFrom := end - (end-start)*30/100
	window := string(runes[searchFrom:end])

	for _, marker := range breakMarkers {
		if idx := strings.LastIndex(window, marker); idx >= 0 {
			return searchFrom + utf8.RuneCountInString(window[:idx]) + len(marker)
		}
	}
	return end
}
