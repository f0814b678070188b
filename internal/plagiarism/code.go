package plagiarism

import (
	"regexp"
	"strings"
)

var (
	lineCommentRe  = regexp.MustCompile(`(?m)(//|#).*$`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	tripleDoubleRe = regexp.MustCompile(`(?s)""".*?"""`)
	tripleSingleRe = regexp.MustCompile(`(?s)'''.*?'''`)

	funcDefRe  = regexp.MustCompile(`(?:\bdef|\bfunc|\bfunction)\s+(\w+)`)
	classDefRe = regexp.MustCompile(`\bclass\s+(\w+)`)
	// single '=' only; the trailing class excludes == comparisons
	assignRe = regexp.MustCompile(`(\w+)\s*=[^=]`)
)

// maxAssignIdents bounds how many assignment targets feed the structural
// fingerprint; beyond the first few they are mostly loop-body noise.
const maxAssignIdents = 10

// NormalizeCode strips line comments (// and #), block comments (/* */) and
// triple-quoted blocks, then collapses whitespace. Scoring normalized code
// separately keeps comment prose from inflating raw-text similarity.
func NormalizeCode(code string) string {
	code = blockCommentRe.ReplaceAllString(code, "")
	code = tripleDoubleRe.ReplaceAllString(code, "")
	code = tripleSingleRe.ReplaceAllString(code, "")
	code = lineCommentRe.ReplaceAllString(code, "")
	return strings.Join(strings.Fields(code), " ")
}

// ExtractIdentifiers pulls function names, class names, and the first ten
// assignment targets out of code via pattern matching. Deliberately
// language-agnostic: it covers def/func/function/class, which is enough for
// a structural fingerprint without a parser per language.
func ExtractIdentifiers(code string) []string {
	var idents []string

	for _, m := range funcDefRe.FindAllStringSubmatch(code, -1) {
		idents = append(idents, m[1])
	}
	for _, m := range classDefRe.FindAllStringSubmatch(code, -1) {
		idents = append(idents, m[1])
	}

	assigns := assignRe.FindAllStringSubmatch(code, -1)
	if len(assigns) > maxAssignIdents {
		assigns = assigns[:maxAssignIdents]
	}
	for _, m := range assigns {
		idents = append(idents, m[1])
	}

	return idents
}

// CodeSimilarityResult breaks a code comparison into its component scores.
// All percentages are [0,100].
type CodeSimilarityResult struct {
	OverallPct    float64 `json:"overall_similarity"`
	TextPct       float64 `json:"text_similarity"`
	NormalizedPct float64 `json:"normalized_similarity"`
	StructuralPct float64 `json:"structure_similarity"`
	Verdict       string  `json:"verdict"`
}

// CodeSimilarity scores two code snippets as the fixed weighted blend of raw
// text similarity, comment-stripped similarity, and identifier-list
// similarity. The normalized score carries the most weight because it is the
// hardest to game by renaming or re-commenting.
func CodeSimilarity(th Thresholds, a, b string) CodeSimilarityResult {
	text := Similarity(a, b)
	normalized := Similarity(NormalizeCode(a), NormalizeCode(b))
	structural := Similarity(
		strings.Join(ExtractIdentifiers(a), " "),
		strings.Join(ExtractIdentifiers(b), " "),
	)

	overall := 0.3*text + 0.4*normalized + 0.3*structural

	return CodeSimilarityResult{
		OverallPct:    round2(overall * 100),
		TextPct:       round2(text * 100),
		NormalizedPct: round2(normalized * 100),
		StructuralPct: round2(structural * 100),
		Verdict:       th.Classify(overall),
	}
}
