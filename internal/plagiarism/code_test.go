package plagiarism

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sumFunc = `def calculate_sum(numbers):
    total = 0
    for num in numbers:
        total += num
    return total`

	sumFuncRenamed = `def compute_total(nums):
    sum_val = 0
    for n in nums:
        sum_val += n
    return sum_val`

	sumFuncCommented = `# helper that adds up a list
def calculate_sum(numbers):
    total = 0
    # accumulate
    for num in numbers:
        total += num
    return total`

	configLoader = `class ConfigLoader:
    def load(self, path):
        with open(path) as fh:
            return json.loads(fh.read())`
)

func TestNormalizeCodeStripsComments(t *testing.T) {
	assert.Equal(t, NormalizeCode(sumFunc), NormalizeCode(sumFuncCommented))

	withBlock := "int x = 1; /* set\nup */ int y = 2; // done"
	assert.Equal(t, "int x = 1; int y = 2;", NormalizeCode(withBlock))

	withDocstring := `def f():
    """returns one"""
    return 1`
	assert.Equal(t, "def f(): return 1", NormalizeCode(withDocstring))
}

func TestNormalizedSimilarityIgnoresComments(t *testing.T) {
	sim := Similarity(NormalizeCode(sumFunc), NormalizeCode(sumFuncCommented))
	assert.Equal(t, 1.0, sim)
}

func TestExtractIdentifiers(t *testing.T) {
	idents := ExtractIdentifiers(sumFunc)
	// function names first, then assignment targets; += is not an assignment
	assert.Equal(t, []string{"calculate_sum", "total"}, idents)

	idents = ExtractIdentifiers(configLoader)
	assert.Contains(t, idents, "ConfigLoader")
	assert.Contains(t, idents, "load")
}

func TestExtractIdentifiersSkipsComparisons(t *testing.T) {
	idents := ExtractIdentifiers("if x == 1:\n    y = 2")
	assert.Equal(t, []string{"y"}, idents)
}

func TestExtractIdentifiersGoAndJS(t *testing.T) {
	goCode := "func ParseHeader(r io.Reader) error {\n\tbuf = make([]byte, 4)\n}"
	assert.Contains(t, ExtractIdentifiers(goCode), "ParseHeader")

	jsCode := "function renderList(items) { let html = '' }"
	assert.Contains(t, ExtractIdentifiers(jsCode), "renderList")
}

func TestCodeSimilarityRenamedCopyOutscoresDifferentProgram(t *testing.T) {
	th := DefaultThresholds()

	renamed := CodeSimilarity(th, sumFunc, sumFuncRenamed)
	different := CodeSimilarity(th, sumFunc, configLoader)

	assert.Greater(t, renamed.OverallPct, different.OverallPct)
	assert.Greater(t, renamed.OverallPct, 55.0)
	assert.Less(t, different.OverallPct, 40.0)
}

func TestCodeSimilarityIdentical(t *testing.T) {
	res := CodeSimilarity(DefaultThresholds(), sumFunc, sumFunc)
	require.Equal(t, 100.0, res.OverallPct)
	assert.Equal(t, "exact", res.Verdict)
}

func TestCodeSimilarityComponentBlend(t *testing.T) {
	res := CodeSimilarity(DefaultThresholds(), sumFunc, sumFuncCommented)
	// comments differ, so raw text < normalized; structure is identical
	assert.Equal(t, 100.0, res.NormalizedPct)
	assert.Equal(t, 100.0, res.StructuralPct)
	assert.Less(t, res.TextPct, 100.0)
	assert.Less(t, res.OverallPct, 100.0)
}
