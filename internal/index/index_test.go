package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextShortInput(t *testing.T) {
	assert.Nil(t, chunkText(""))
	assert.Equal(t, []string{"short text"}, chunkText("short text"))
}

func TestChunkTextSplitsOnWordBoundaries(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 200) // ~5400 chars

	chunks := chunkText(text)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.LessOrEqual(t, len(c), chunkChars)
		if i < len(chunks)-1 {
			assert.False(t, strings.HasSuffix(c, "lore"), "chunk %d split mid-word", i)
		}
	}
}

func TestChunkTextOverlaps(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta epsilon ", 100) // ~3100 chars

	chunks := chunkText(text)
	require.Greater(t, len(chunks), 1)

	// consecutive chunks share their boundary region
	tail := chunks[0][len(chunks[0])-50:]
	assert.Contains(t, chunks[1], tail)
}

func TestChunkTextCoversWholeInput(t *testing.T) {
	text := strings.Repeat("word ", 1000)
	chunks := chunkText(text)
	require.NotEmpty(t, chunks)
	assert.True(t, strings.HasSuffix(text, chunks[len(chunks)-1]))
	assert.True(t, strings.HasPrefix(text, chunks[0]))
}
