package models

// Verdict is the classifier's final call on a content blob.
type Verdict string

const (
	VerdictAIGenerated       Verdict = "ai_generated"
	VerdictHumanWritten      Verdict = "human_written"
	VerdictHeavilyAIAssisted Verdict = "heavily_ai_assisted"
	VerdictLightlyAIAssisted Verdict = "lightly_ai_assisted"
	VerdictUncertain         Verdict = "uncertain"
)

// IsAI reports whether the verdict indicates AI involvement strong enough to
// surface as a match.
func (v Verdict) IsAI() bool {
	return v == VerdictAIGenerated || v == VerdictHeavilyAIAssisted
}

// Severity grades one piece of AI evidence.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Category names for the deep-analysis score breakdown. Keys of
// AIClassificationResult.CategoryScores are fixed to this set.
const (
	CategoryDocumentation Category = "documentation_style"
	CategoryStructure     Category = "structure_formatting"
	CategoryNaming        Category = "naming_identifiers"
	CategoryErrorHandling Category = "error_handling"
	CategoryComplexity    Category = "complexity"
	CategoryPersonalStyle Category = "personal_style"
)

type Category = string

// AIEvidence is one itemised indicator from the deep analysis.
type AIEvidence struct {
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Excerpt     string   `json:"specificEvidence"`
	Explanation string   `json:"explanation"`
}

// HumanSignal is counter-evidence suggesting human authorship.
type HumanSignal struct {
	Excerpt     string `json:"evidence"`
	Explanation string `json:"explanation"`
}

// AIClassificationResult is the classifier output for one content blob.
//
// Confidence is 0-100, unlike SimilarityMatch.Confidence which is 0-1;
// callers normalize when converting between the two. Verdict and Confidence
// come straight from the LLM's top-level fields and are not reconciled
// against the weighted category scores (the LLM's explicit call wins).
type AIClassificationResult struct {
	IsAIGenerated  bool                 `json:"isAiGenerated"`
	Verdict        Verdict              `json:"verdict"`
	Confidence     float64              `json:"confidence"` // [0,100]
	CategoryScores map[Category]float64 `json:"confidenceBreakdown,omitempty"`
	Evidence       []AIEvidence         `json:"detailedIndicators,omitempty"`
	HumanSignals   []HumanSignal        `json:"humanElements,omitempty"`
	Indicators     []string             `json:"indicators,omitempty"`
	ToolSignature  string               `json:"aiToolSignature,omitempty"`
	Explanation    string               `json:"explanation"`
	Recommendation string               `json:"recommendation,omitempty"`
	Alternatives   []string             `json:"alternativeExplanations,omitempty"`
}

// Classification tags an AIClassificationResult with how it was produced, so
// callers can tell a trustworthy structured parse from a degraded fallback.
type Classification struct {
	Result   AIClassificationResult `json:"result"`
	Degraded bool                   `json:"degraded"`
	Reason   string                 `json:"reason,omitempty"` // why the result is degraded; empty when fully parsed
}
