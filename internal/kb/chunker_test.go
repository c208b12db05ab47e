package kb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextSizes(t *testing.T) {
	text := strings.Repeat("a", 2500)

	chunks := ChunkText(text, 1000, 200)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 1000)
	assert.Len(t, chunks[1], 1000)
	assert.Len(t, chunks[2], 900)
}

func TestChunkTextOverlap(t *testing.T) {
	var b strings.Builder
	for i := 0; b.Len() < 2500; i++ {
		b.WriteString("word ")
	}
	text := b.String()

	chunks := ChunkText(text, 1000, 200)
	require.GreaterOrEqual(t, len(chunks), 2)

	// The tail of each chunk reappears at the head of the next.
	tail := chunks[0][len(chunks[0])-200:]
	assert.Equal(t, tail, chunks[1][:200])
}

func TestChunkTextIdempotent(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 100)

	first := ChunkText(text, 1000, 200)
	second := ChunkText(text, 1000, 200)
	assert.Equal(t, first, second)
}

func TestChunkTextShortInput(t *testing.T) {
	chunks := ChunkText("tiny", 1000, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "tiny", chunks[0])
}

func TestChunkTextEmpty(t *testing.T) {
	assert.Empty(t, ChunkText("", 1000, 200))
	assert.Empty(t, ChunkText("   \n\t  ", 1000, 200))
}

func TestChunkTextRuneSafe(t *testing.T) {
	text := strings.Repeat("日本語テキスト処理 ", 300)

	chunks := ChunkText(text, 1000, 200)
	for i, chunk := range chunks {
		assert.True(t, strings.ToValidUTF8(chunk, "") == chunk, "chunk %d split a rune", i)
	}
}

func TestChunkTextNormalizesWhitespace(t *testing.T) {
	chunks := ChunkText("hello\n\n\tworld   again", 1000, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world again", chunks[0])
}

func TestChunkTextGuards(t *testing.T) {
	// Degenerate parameters fall back to workable ones.
	assert.NotEmpty(t, ChunkText(strings.Repeat("x", 50), 0, -5))
	assert.NotEmpty(t, ChunkText(strings.Repeat("x", 50), 10, 10))
}
