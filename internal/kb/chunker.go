package kb

import (
	"strings"
	"unicode"
)

// ChunkText splits text into fixed-size character chunks with overlap.
// Boundaries are rune-safe, so multi-byte characters are never split.
// Identical input always yields identical chunks.
func ChunkText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}

	text = normalizeWhitespace(text)
	runes := []rune(text)
	if len(runes) == 0 {
		return []string{}
	}

	var chunks []string
	stride := chunkSize - overlap

	for i := 0; i < len(runes); i += stride {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// normalizeWhitespace collapses runs of whitespace to a single space so
// chunk boundaries do not depend on the document's line wrapping.
func normalizeWhitespace(text string) string {
	var result strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace {
				result.WriteRune(' ')
				prevSpace = true
			}
		} else {
			result.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(result.String())
}
