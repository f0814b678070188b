package plagiarism

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/proctoriq/proctoriq/internal/config"
	"github.com/proctoriq/proctoriq/internal/index"
	"github.com/proctoriq/proctoriq/internal/llm"
	"github.com/proctoriq/proctoriq/internal/models"
)

// Detector wires the pipeline stages together and assembles the final
// report. Stages always run in the same order: internal duplication, then
// cross-submission matching, then AI classification. Each stage degrades
// independently, so a dead index or a dead LLM never blocks a report.
type Detector struct {
	cfg        *config.Config
	th         Thresholds
	client     llm.Client
	classifier *AIClassifier
	scanner    *InternalScanner
	matcher    *CrossMatcher
}

func NewDetector(cfg *config.Config, client llm.Client, idx index.Index) *Detector {
	th := Thresholds{
		Report:   cfg.ReportThreshold,
		Low:      cfg.FlagThreshold,
		Medium:   cfg.FlagThreshold,
		High:     cfg.HighThreshold,
		Exact:    cfg.ExactThreshold,
		Forensic: cfg.ForensicThreshold,
	}
	return &Detector{
		cfg:        cfg,
		th:         th,
		client:     client,
		classifier: NewAIClassifier(client),
		scanner:    NewInternalScanner(th, client, cfg.ChunkSize, cfg.MinMatchLen, cfg.MaxEvidence),
		matcher:    NewCrossMatcher(th, idx, cfg.MaxNeighbors, cfg.ChunkSize, cfg.MinMatchLen, cfg.MaxEvidence),
	}
}

// Check runs the full pipeline on one submission.
func (d *Detector) Check(ctx context.Context, sub models.Submission) (*models.PlagiarismReport, error) {
	if sub.ID == "" {
		return nil, fmt.Errorf("submission has no id")
	}
	start := time.Now()

	pairs := d.scanner.Scan(ctx, sub)
	crossMatches, sourcesChecked := d.matcher.Match(ctx, sub)

	// AI classification applies to code submissions with actual content;
	// prose AI detection is a separate instructor workflow.
	text := sub.CombinedText()
	aiRan := sub.Kind == models.KindCode && d.client != nil && strings.TrimSpace(text) != ""
	var cls models.Classification
	if aiRan {
		cls = d.classifier.Classify(ctx, text, string(sub.Kind))
		// The LLM sometimes sets a verdict of ai_generated while leaving
		// the boolean false. The verdict wins.
		if !cls.Result.IsAIGenerated && cls.Result.Verdict.IsAI() {
			cls.Result.IsAIGenerated = true
		}
	} else {
		cls = degraded("AI detection not run for this submission")
	}
	if aiRan {
		sourcesChecked++
	}

	report := d.assemble(sub, pairs, crossMatches, sourcesChecked, cls)

	log.Info().
		Str("submission", sub.ID).
		Float64("originality", report.OriginalityScore).
		Str("risk", string(report.RiskLevel)).
		Int("matches", report.TotalMatches).
		Dur("elapsed", time.Since(start)).
		Msg("plagiarism check complete")
	return report, nil
}

// assemble builds the report. Match insertion order reflects the phase
// order (internal, cross-submission, AI), not severity.
func (d *Detector) assemble(sub models.Submission, pairs []FilePair, crossMatches []models.SimilarityMatch, sourcesChecked int, cls models.Classification) *models.PlagiarismReport {
	matches := make([]models.SimilarityMatch, 0, len(pairs)+len(crossMatches)+1)

	for _, p := range pairs {
		m := models.SimilarityMatch{
			CounterpartID:    sub.ID,
			CounterpartLabel: fmt.Sprintf("%s vs %s", p.FileA, p.FileB),
			SimilarityPct:    p.SimilarityPct,
			Kind:             models.MatchInternalCopy,
			Confidence:       round2(p.SimilarityPct / 100),
			Flagged:          p.Flagged,
		}
		for _, sm := range p.Matches {
			m.Evidence = append(m.Evidence, models.MatchEvidence{
				SourceExcerpt:   sm.SourceExcerpt,
				TargetExcerpt:   sm.TargetExcerpt,
				LocalSimilarity: sm.SimilarityPct,
			})
		}
		matches = append(matches, m)
	}

	matches = append(matches, crossMatches...)

	if cls.Result.IsAIGenerated {
		matches = append(matches, models.SimilarityMatch{
			CounterpartLabel: "AI Tool",
			SimilarityPct:    cls.Result.Confidence,
			Kind:             models.MatchAIGenerated,
			Confidence:       round2(cls.Result.Confidence / 100),
			// lower bar than text matches: even a weak AI call is worth
			// an instructor's attention
			Flagged: cls.Result.Confidence > 50,
		})
	}

	var flagged []models.FlaggedExcerpt
	for _, m := range matches {
		if !m.Flagged {
			continue
		}
		for _, ev := range m.Evidence {
			flagged = append(flagged, models.FlaggedExcerpt{
				SourceLabel:   m.CounterpartLabel,
				Excerpt:       ev.SourceExcerpt,
				SimilarityPct: ev.LocalSimilarity,
				Category:      string(m.Kind),
			})
		}
	}
	if cls.Result.IsAIGenerated {
		for _, ev := range cls.Result.Evidence {
			flagged = append(flagged, models.FlaggedExcerpt{
				SourceLabel:   "AI Tool",
				Excerpt:       ev.Excerpt,
				SimilarityPct: cls.Result.Confidence,
				Category:      ev.Category,
			})
		}
	}

	var maxSim float64
	for _, m := range matches {
		if m.SimilarityPct > maxSim {
			maxSim = m.SimilarityPct
		}
	}
	originality := clamp(100-maxSim, 0, 100)

	report := &models.PlagiarismReport{
		SubmissionID:     sub.ID,
		Student:          sub.Student,
		Kind:             sub.Kind,
		OriginalityScore: round2(originality),
		RiskLevel:        models.RiskFromOriginality(originality),
		TotalMatches:     len(matches),
		Matches:          matches,
		FlaggedExcerpts:  flagged,
		SourcesChecked:   sourcesChecked,
		AIAnalysis:       cls,
		GeneratedAt:      time.Now().UTC(),
	}
	report.Recommendations = recommendations(report, pairs, cls)
	return report
}

// recommendations assembles the fixed instructor-guidance template: overall
// assessment, one paragraph per nonempty match category, kind-keyed best
// practices, then the next-actions checklist for low-originality work.
func recommendations(report *models.PlagiarismReport, pairs []FilePair, cls models.Classification) []string {
	var recs []string

	switch report.RiskLevel {
	case models.RiskLow:
		recs = append(recs, "No significant integrity issues detected. No action required.")
	case models.RiskMedium:
		recs = append(recs, "Minor overlap detected. Spot-check the flagged sections before grading.")
	case models.RiskHigh:
		recs = append(recs, "Substantial overlap detected. A detailed review of this submission is recommended.")
	default:
		recs = append(recs, "Severe integrity concerns. Escalate this submission for formal review.")
	}

	if cls.Result.IsAIGenerated {
		if cls.Result.Confidence >= 70 {
			recs = append(recs, fmt.Sprintf(
				"High-confidence AI generation signal (%.0f%%). Conduct an oral defense of the submitted work.",
				cls.Result.Confidence))
		} else {
			recs = append(recs,
				"Moderate AI generation signal. Consider a follow-up discussion about the submission's approach.")
		}
	}

	if len(pairs) > 0 {
		var worst float64
		for _, p := range pairs {
			if p.SimilarityPct > worst {
				worst = p.SimilarityPct
			}
		}
		if worst > 80 {
			recs = append(recs, fmt.Sprintf(
				"%d file pair(s) within this submission are near-duplicates. Verify each file was authored independently.",
				len(pairs)))
		} else {
			recs = append(recs, fmt.Sprintf(
				"%d file pair(s) within this submission share significant content. Check whether shared scaffolding explains the overlap.",
				len(pairs)))
		}
	}

	verbatim, paraphrased := 0, 0
	for _, m := range report.Matches {
		if m.Kind != models.MatchCrossSubmission {
			continue
		}
		switch {
		case m.SimilarityPct >= 85:
			verbatim++
		case m.Flagged:
			paraphrased++
		}
	}
	if verbatim > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d prior submission(s) match nearly verbatim. Review the matched excerpts with the student.",
			verbatim))
	}
	if paraphrased > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d prior submission(s) show paraphrase-level similarity. Compare the phrasing side by side.",
			paraphrased))
	}

	switch report.Kind {
	case models.KindCode:
		recs = append(recs,
			"Best practice: compare code structure and variable naming against the student's earlier work.")
	case models.KindWriteup:
		recs = append(recs,
			"Best practice: check citations and writing style consistency against the student's earlier work.")
	default:
		recs = append(recs,
			"Best practice: compare both code and prose against the student's earlier work for style consistency.")
	}

	if report.OriginalityScore < 70 {
		recs = append(recs,
			"Review checklist: (1) interview the student, (2) compare against flagged sources, (3) request work-in-progress artifacts, (4) check timestamps and edit history, (5) document findings before any decision.")
	}

	return recs
}

// QuickResult is the answer to a direct two-text comparison, no LLM and no
// index involved.
type QuickResult struct {
	SimilarityPct float64 `json:"similarity_pct"`
	Verdict       string  `json:"verdict"`
	Flagged       bool    `json:"flagged"`
}

// QuickCheck compares two texts directly. Useful for spot checks from the
// command line when a full pipeline run is overkill.
func (d *Detector) QuickCheck(a, b string) QuickResult {
	sim := Similarity(a, b)
	return QuickResult{
		SimilarityPct: round2(sim * 100),
		Verdict:       d.th.Classify(sim),
		Flagged:       sim > d.th.Medium,
	}
}
