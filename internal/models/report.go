package models

import "time"

// MatchKind classifies the relationship behind a SimilarityMatch.
type MatchKind string

const (
	MatchExact           MatchKind = "exact"
	MatchNearExact       MatchKind = "near_exact"
	MatchParaphrased     MatchKind = "paraphrased"
	MatchStructural      MatchKind = "structural"
	MatchInternalCopy    MatchKind = "internal_copy"
	MatchCrossSubmission MatchKind = "cross_submission"
	MatchAIGenerated     MatchKind = "ai_generated"
)

// RiskLevel is the coarse triage bucket derived from the originality score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskFromOriginality maps an originality score to a risk level.
// Thresholds are monotonic: >=85 low, >=70 medium, >=50 high, else critical.
func RiskFromOriginality(score float64) RiskLevel {
	switch {
	case score >= 85:
		return RiskLow
	case score >= 70:
		return RiskMedium
	case score >= 50:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// MatchEvidence is one excerpt pair backing a SimilarityMatch. Excerpts are
// truncated for display, never for scoring.
type MatchEvidence struct {
	SourceExcerpt   string  `json:"sourceExcerpt"`
	TargetExcerpt   string  `json:"targetExcerpt"`
	LocalSimilarity float64 `json:"localSimilarity"`
}

// SimilarityMatch is one detected relationship between the submission under
// test and another artifact (a peer submission, a sibling file, or the
// synthetic "ai_generated" source). Immutable once constructed.
type SimilarityMatch struct {
	CounterpartID    string          `json:"counterpartId"`
	CounterpartLabel string          `json:"counterpartLabel"`
	SimilarityPct    float64         `json:"similarityPercentage"`
	Kind             MatchKind       `json:"matchType"`
	Confidence       float64         `json:"confidence"` // [0,1]
	Flagged          bool            `json:"flagged"`
	Evidence         []MatchEvidence `json:"matchingSections,omitempty"`
}

// FlaggedExcerpt is a display-oriented view of a match that crossed the
// flagging threshold.
type FlaggedExcerpt struct {
	SourceLabel   string  `json:"sourceSubmission"`
	Excerpt       string  `json:"text"`
	SimilarityPct float64 `json:"similarity"`
	Category      string  `json:"type"`
}

// PlagiarismReport is the aggregate output of one detection run. It is created
// once per invocation and never mutated afterwards; persistence is the
// caller's concern.
type PlagiarismReport struct {
	SubmissionID     string            `json:"submissionId"`
	Student          string            `json:"studentName"`
	Kind             SubmissionKind    `json:"submissionType"`
	OriginalityScore float64           `json:"overallOriginalityScore"`
	RiskLevel        RiskLevel         `json:"riskLevel"`
	TotalMatches     int               `json:"totalMatchesFound"`
	Matches          []SimilarityMatch `json:"similarityMatches"`
	FlaggedExcerpts  []FlaggedExcerpt  `json:"flaggedSections"`
	SourcesChecked   int               `json:"sourcesChecked"`
	AIAnalysis       Classification    `json:"aiAnalysis"`
	Recommendations  []string          `json:"recommendations"`
	GeneratedAt      time.Time         `json:"analysisTimestamp"`
}
