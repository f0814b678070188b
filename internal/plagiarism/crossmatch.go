package plagiarism

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/proctoriq/proctoriq/internal/index"
	"github.com/proctoriq/proctoriq/internal/models"
)

// CrossMatcher compares a submission against the corpus of prior
// submissions. The vector index is only a recall stage: it proposes
// candidate submissions cheaply, then every candidate is re-scored with the
// exact sequence ratio before anything is reported.
type CrossMatcher struct {
	th          Thresholds
	idx         index.Index
	maxNeighbor int
	chunkSize   int
	minMatchLen int
	maxEvidence int
}

func NewCrossMatcher(th Thresholds, idx index.Index, maxNeighbors, chunkSize, minMatchLen, maxEvidence int) *CrossMatcher {
	return &CrossMatcher{
		th:          th,
		idx:         idx,
		maxNeighbor: maxNeighbors,
		chunkSize:   chunkSize,
		minMatchLen: minMatchLen,
		maxEvidence: maxEvidence,
	}
}

type candidate struct {
	submissionID string
	student      string
	chunks       []string
}

// Match returns the prior submissions similar enough to report, most
// similar first, plus the number of distinct submissions examined. An
// unreachable index degrades to an empty result: the rest of the pipeline
// still runs and the report notes zero sources checked.
func (m *CrossMatcher) Match(ctx context.Context, sub models.Submission) ([]models.SimilarityMatch, int) {
	if m.idx == nil {
		return nil, 0
	}
	text := sub.CombinedText()
	if strings.TrimSpace(text) == "" {
		return nil, 0
	}

	neighbors, err := m.idx.Query(ctx, text, m.maxNeighbor)
	if err != nil {
		log.Error().Err(err).Str("submission", sub.ID).
			Msg("similarity index unavailable, skipping cross-submission check")
		return nil, 0
	}

	// Group hits by originating submission, preserving chunk order as
	// returned. Hits from the submission under test are its own indexed
	// copy, not evidence.
	byID := make(map[string]*candidate)
	var order []string
	for _, n := range neighbors {
		if n.SubmissionID == "" || n.SubmissionID == sub.ID {
			continue
		}
		c, ok := byID[n.SubmissionID]
		if !ok {
			c = &candidate{submissionID: n.SubmissionID, student: n.Student}
			byID[n.SubmissionID] = c
			order = append(order, n.SubmissionID)
		}
		c.chunks = append(c.chunks, n.Content)
	}

	var matches []models.SimilarityMatch
	for _, id := range order {
		c := byID[id]
		counterpart := strings.Join(c.chunks, "\n")
		sim := Similarity(text, counterpart)
		if sim < m.th.Report {
			continue
		}

		// every corpus hit carries the cross_submission kind; the finer
		// exact/paraphrase banding stays a presentation concern
		match := models.SimilarityMatch{
			CounterpartID:    c.submissionID,
			CounterpartLabel: c.student,
			SimilarityPct:    round2(sim * 100),
			Kind:             models.MatchCrossSubmission,
			Confidence:       round2(sim),
			Flagged:          sim > m.th.Medium,
		}
		for _, sm := range capMatches(FindMatches(m.th, text, counterpart, m.chunkSize, m.minMatchLen), m.maxEvidence) {
			match.Evidence = append(match.Evidence, models.MatchEvidence{
				SourceExcerpt:   sm.SourceExcerpt,
				TargetExcerpt:   sm.TargetExcerpt,
				LocalSimilarity: sm.SimilarityPct,
			})
		}
		matches = append(matches, match)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SimilarityPct > matches[j].SimilarityPct
	})
	return matches, len(order)
}

func capMatches(matches []SectionMatch, max int) []SectionMatch {
	if len(matches) > max {
		return matches[:max]
	}
	return matches
}
