package plagiarism

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	unrelatedA = "The mitochondria is the powerhouse of the cell, converting nutrients into usable chemical energy."
	unrelatedB = "Stock prices fell sharply on Tuesday after quarterly earnings missed analyst forecasts."

	paraphraseA = "Machine learning is a subset of artificial intelligence that focuses on developing algorithms that allow computers to learn from data. Through iterative processes, models identify patterns."
	paraphraseB = "Machine learning represents a branch of artificial intelligence dedicated to creating algorithms enabling computers to learn from information. Via repeated processes, models discover patterns."
)

func TestSimilarityReflexive(t *testing.T) {
	assert.Equal(t, 1.0, Similarity(paraphraseA, paraphraseA))
	assert.Equal(t, 1.0, Similarity("", ""))
}

func TestSimilaritySymmetric(t *testing.T) {
	assert.Equal(t, Similarity(unrelatedA, paraphraseA), Similarity(paraphraseA, unrelatedA))
}

func TestSimilarityIgnoresCaseAndWhitespace(t *testing.T) {
	mangled := "  THE   mitochondria IS the\n\npowerhouse of the cell,  converting nutrients into usable chemical energy.\t"
	assert.Equal(t, 1.0, Similarity(unrelatedA, mangled))
}

func TestSimilarityUnrelatedTextsScoreLow(t *testing.T) {
	sim := Similarity(unrelatedA, unrelatedB)
	assert.Less(t, sim, 0.30)
}

func TestSimilarityParaphraseLandsInMidBand(t *testing.T) {
	sim := Similarity(paraphraseA, paraphraseB)
	assert.GreaterOrEqual(t, sim, 0.40)
	assert.LessOrEqual(t, sim, 0.80)
}

func TestSimilarityEmptyAgainstNonEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", unrelatedA))
}

func TestClassifyBands(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, "exact", th.Classify(0.97))
	assert.Equal(t, "exact", th.Classify(0.95))
	assert.Equal(t, "near_exact", th.Classify(0.90))
	assert.Equal(t, "paraphrased", th.Classify(0.75))
	assert.Equal(t, "structural", th.Classify(0.50))
}

func TestChunkOverlapAndStride(t *testing.T) {
	words := make([]string, 250)
	for i := range words {
		words[i] = "alpha"
	}
	text := strings.Join(words, " ")

	chunks := Chunk(text, 100)
	require.NotEmpty(t, chunks)
	// stride 50 over 250 words: starts at 0, 50, 100, then the 150 tail
	assert.Len(t, chunks, 4)
	first := strings.Fields(chunks[0])
	assert.Len(t, first, 100)
}

func TestChunkDropsShortFragments(t *testing.T) {
	assert.Empty(t, Chunk("tiny bit", 100))
	assert.Nil(t, Chunk(paraphraseA, 0))
}

func TestFindMatchesIdenticalText(t *testing.T) {
	text := strings.Repeat(paraphraseA+" ", 5)
	matches := FindMatches(DefaultThresholds(), text, text, 20, 30)
	require.NotEmpty(t, matches)

	assert.Equal(t, 100.0, matches[0].SimilarityPct)
	assert.Equal(t, "exact", matches[0].Kind)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].SimilarityPct, matches[i].SimilarityPct)
	}
}

func TestFindMatchesUnrelatedText(t *testing.T) {
	a := strings.Repeat(unrelatedA+" ", 5)
	b := strings.Repeat(unrelatedB+" ", 5)
	assert.Empty(t, FindMatches(DefaultThresholds(), a, b, 20, 30))
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	ascii := strings.Repeat("a", 300)
	assert.Equal(t, 200, len(truncate(ascii, 200)))
	assert.Equal(t, "short", truncate("short", 200))

	accented := strings.Repeat("é", 150) // 2 bytes per rune
	cut := truncate(accented, 100)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, 100, utf8.RuneCountInString(cut))
}

func TestFindMatchesTruncatesExcerpts(t *testing.T) {
	text := strings.Repeat(paraphraseA+" ", 20)
	matches := FindMatches(DefaultThresholds(), text, text, 100, 30)
	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.LessOrEqual(t, len(m.SourceExcerpt), excerptDisplayLen)
	}
}
