package plagiarism

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/proctoriq/proctoriq/internal/llm"
	"github.com/proctoriq/proctoriq/internal/models"
)

const forensicContentLimit = 1200

const forensicSystemPrompt = "You are a forensic plagiarism analyst comparing two files from the same submission. Respond ONLY with valid JSON."

const forensicPromptTemplate = `Two files from the SAME student submission show %.1f%% similarity.

FILE A (%s):
` + "```\n%s\n```" + `

FILE B (%s):
` + "```\n%s\n```" + `

TASK: Judge whether one file was copied from the other, both derive from a shared template, or the overlap is coincidental (boilerplate, assignment scaffolding).

RESPOND IN JSON:
{
  "is_copy_paste": true/false,
  "evidence_quality": "strong" | "moderate" | "weak",
  "specific_findings": ["exact pattern or line shared between the files"],
  "verdict": "direct_copy" | "heavy_copying" | "shared_template" | "coincidental_similarity",
  "unique_differences": ["what genuinely differs between the files"],
  "explanation": "2-3 sentence forensic conclusion",
  "recommendation": "specific action for instructor"
}`

// ForensicFinding is the LLM's structured judgment on how two similar files
// inside one submission relate to each other.
type ForensicFinding struct {
	IsCopyPaste       bool     `json:"is_copy_paste"`
	EvidenceQuality   string   `json:"evidence_quality"`
	Findings          []string `json:"specific_findings"`
	Verdict           string   `json:"verdict"`
	UniqueDifferences []string `json:"unique_differences"`
	Explanation       string   `json:"explanation"`
	Recommendation    string   `json:"recommendation"`
}

// FilePair is one reportable pairing of files within a submission.
// Forensic stays nil when the similarity alone had to carry the judgment.
type FilePair struct {
	FileA         string           `json:"file_a"`
	FileB         string           `json:"file_b"`
	SimilarityPct float64          `json:"similarity_pct"`
	Verdict       string           `json:"verdict"`
	Flagged       bool             `json:"flagged"`
	AddedChars    int              `json:"added_chars"`
	RemovedChars  int              `json:"removed_chars"`
	Matches       []SectionMatch   `json:"matches,omitempty"`
	Forensic      *ForensicFinding `json:"detailed_analysis,omitempty"`
}

// InternalScanner finds duplication between the files of a single
// submission: the whole-file copy with a renamed function, the solution
// pasted twice with cosmetic edits.
type InternalScanner struct {
	th          Thresholds
	client      llm.Client
	chunkSize   int
	minMatchLen int
	maxEvidence int
}

func NewInternalScanner(th Thresholds, client llm.Client, chunkSize, minMatchLen, maxEvidence int) *InternalScanner {
	return &InternalScanner{
		th:          th,
		client:      client,
		chunkSize:   chunkSize,
		minMatchLen: minMatchLen,
		maxEvidence: maxEvidence,
	}
}

// Scan compares every pair of non-empty files and returns the pairs above
// the reporting threshold, most similar first. LLM forensics are best
// effort: a failed call leaves Forensic nil and the pair stands on its
// similarity number alone.
func (s *InternalScanner) Scan(ctx context.Context, sub models.Submission) []FilePair {
	var files []models.SubmissionFile
	for _, f := range sub.Files {
		if strings.TrimSpace(f.Content) != "" {
			files = append(files, f)
		}
	}

	var pairs []FilePair
	for i := 0; i < len(files); i++ {
		for j := i + 1; j < len(files); j++ {
			pair, ok := s.comparePair(ctx, files[i], files[j])
			if ok {
				pairs = append(pairs, pair)
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].SimilarityPct > pairs[j].SimilarityPct
	})
	if len(pairs) > 0 {
		log.Info().
			Str("submission", sub.ID).
			Int("pairs", len(pairs)).
			Float64("top_similarity", pairs[0].SimilarityPct).
			Msg("internal duplication found")
	}
	return pairs
}

func (s *InternalScanner) comparePair(ctx context.Context, a, b models.SubmissionFile) (FilePair, bool) {
	sim := Similarity(a.Content, b.Content)
	pct := round2(sim * 100)
	if sim <= s.th.Report {
		return FilePair{}, false
	}

	added, removed := diffChars(a.Content, b.Content)

	pair := FilePair{
		FileA:         a.Name,
		FileB:         b.Name,
		SimilarityPct: pct,
		Verdict:       pairVerdict(pct),
		Flagged:       sim > s.th.Medium,
		AddedChars:    added,
		RemovedChars:  removed,
	}

	matches := FindMatches(s.th, a.Content, b.Content, s.chunkSize, s.minMatchLen)
	if len(matches) > s.maxEvidence {
		matches = matches[:s.maxEvidence]
	}
	pair.Matches = matches

	if sim > s.th.Forensic && s.client != nil {
		pair.Forensic = s.forensic(ctx, a, b, pct)
	}
	return pair, true
}

// pairVerdict labels an intra-submission pair. Bands are intentionally
// coarser than the four-way Classify: these drive instructor triage, not
// scoring.
func pairVerdict(pct float64) string {
	switch {
	case pct > 85:
		return "Critical"
	case pct > 70:
		return "Suspicious"
	default:
		return "Similar"
	}
}

func (s *InternalScanner) forensic(ctx context.Context, a, b models.SubmissionFile, pct float64) *ForensicFinding {
	prompt := fmt.Sprintf(forensicPromptTemplate, pct,
		a.Name, truncate(a.Content, forensicContentLimit),
		b.Name, truncate(b.Content, forensicContentLimit))

	text, err := s.client.Complete(ctx, forensicSystemPrompt, prompt, llm.Options{
		Temperature: 0.1,
		MaxTokens:   500,
	})
	if err != nil {
		log.Warn().Err(err).Str("file_a", a.Name).Str("file_b", b.Name).
			Msg("forensic pair analysis failed")
		return nil
	}

	payload, ok := extractJSON(text)
	if !ok {
		return nil
	}
	var finding ForensicFinding
	if err := json.Unmarshal([]byte(payload), &finding); err != nil {
		log.Warn().Err(err).Msg("forensic analysis returned unparseable JSON")
		return nil
	}
	return &finding
}

// diffChars counts characters inserted and deleted going from a to b.
func diffChars(a, b string) (added, removed int) {
	dmp := diffmatchpatch.New()
	for _, d := range dmp.DiffMain(a, b, false) {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += len(d.Text)
		case diffmatchpatch.DiffDelete:
			removed += len(d.Text)
		}
	}
	return added, removed
}
