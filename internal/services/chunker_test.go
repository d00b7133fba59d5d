package services

import (
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestChunkEmptyInput(t *testing.T) {
	assert.Nil(t, Chunk("", 500, 50, 4))
	assert.Nil(t, Chunk("   \n  ", 500, 50, 4))
}

func TestChunkShortInputIsSingleChunk(t *testing.T) {
	text := "A short note about photosynthesis."
	chunks := Chunk(text, 500, 50, 4)
	assert.Equal(t, []string{text}, chunks)
}

func TestChunkCoversWholeInput(t *testing.T) {
	// Unique sentences so each chunk has one position in the input.
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("Fact number ")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(" covers a distinct topic in the notes. ")
	}
	text := strings.TrimSpace(b.String())

	chunks := Chunk(text, 100, 20, 4)
	assert.Greater(t, len(chunks), 1)

	// With overlaps discounted the chunks reconstruct the input: every
	// chunk starts at or before the previous chunk's end and the final
	// chunk reaches the end of the text.
	pos := 0
	for i, chunk := range chunks {
		start := strings.Index(text, chunk)
		assert.GreaterOrEqual(t, start, 0, "chunk %d not found in input", i)
		assert.LessOrEqual(t, start, pos, "gap before chunk %d", i)
		if end := start + len(chunk); end > pos {
			pos = end
		}
	}
	assert.Equal(t, len(text), pos, "chunks do not reach the end of the input")
}

func TestChunkSnapsToSentenceBreak(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("Cells divide by mitosis. ")
	}
	text := strings.TrimSpace(b.String())

	chunks := Chunk(text, 50, 10, 4)
	assert.Greater(t, len(chunks), 1)
	// All chunks except the last should end on a sentence boundary.
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk, ". "), "chunk does not end on a sentence break: %q", chunk[len(chunk)-10:])
	}
}

func TestChunkKeepsRuneBoundaries(t *testing.T) {
	// No break markers anywhere, so every cut lands mid-sentence; accented
	// words must still come out as valid UTF-8.
	text := strings.TrimSpace(strings.Repeat("émile étudié la photosynthèse à l'école ", 100))

	chunks := Chunk(text, 25, 5, 4)
	assert.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk), "chunk %d is not valid UTF-8: %q", i, chunk)
		assert.Contains(t, text, chunk, "chunk %d is not a substring of the input", i)
	}
}

func TestChunkOverlapLargerThanWindowStillProgresses(t *testing.T) {
	text := strings.Repeat("abcdefghij", 100)
	chunks := Chunk(text, 10, 20, 4)
	assert.NotEmpty(t, chunks)
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	assert.GreaterOrEqual(t, total, len(text))
}
