package plagiarism

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/proctoriq/proctoriq/internal/models"
)

// ExportJSON serializes a report with stable indentation, suitable for
// archival next to the submission.
func ExportJSON(report *models.PlagiarismReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

const maxDisplayMatches = 10

// RenderMarkdown formats a report for human review.
func RenderMarkdown(report *models.PlagiarismReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Plagiarism Report: %s\n\n", report.Student)
	fmt.Fprintf(&b, "- **Submission:** %s (%s)\n", report.SubmissionID, report.Kind)
	fmt.Fprintf(&b, "- **Generated:** %s\n", report.GeneratedAt.Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "- **Originality score:** %.1f / 100\n", report.OriginalityScore)
	fmt.Fprintf(&b, "- **Risk level:** %s\n", strings.ToUpper(string(report.RiskLevel)))
	fmt.Fprintf(&b, "- **Sources checked:** %d\n\n", report.SourcesChecked)

	if len(report.Matches) > 0 {
		// display cap only; scoring always sees the full list
		shown := report.Matches
		if len(shown) > maxDisplayMatches {
			shown = shown[:maxDisplayMatches]
		}
		b.WriteString("## Matches\n\n")
		b.WriteString("| Source | Similarity | Type | Flagged |\n")
		b.WriteString("|--------|-----------:|------|---------|\n")
		for _, m := range shown {
			flag := ""
			if m.Flagged {
				flag = "yes"
			}
			fmt.Fprintf(&b, "| %s | %.1f%% | %s | %s |\n",
				m.CounterpartLabel, m.SimilarityPct, m.Kind, flag)
		}
		if len(report.Matches) > maxDisplayMatches {
			fmt.Fprintf(&b, "\n_... and %d more match(es)._\n", len(report.Matches)-maxDisplayMatches)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("## Matches\n\nNo matches above the reporting threshold.\n\n")
	}

	if len(report.FlaggedExcerpts) > 0 {
		b.WriteString("## Flagged Excerpts\n\n")
		for i, fx := range report.FlaggedExcerpts {
			fmt.Fprintf(&b, "**%d. %s** (%.1f%%, %s)\n\n", i+1, fx.SourceLabel, fx.SimilarityPct, fx.Category)
			fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(fx.Excerpt, "\n", "\n> "))
		}
	}

	b.WriteString("## AI Content Analysis\n\n")
	ai := report.AIAnalysis.Result
	fmt.Fprintf(&b, "- **Verdict:** %s (confidence %.0f%%)\n", ai.Verdict, ai.Confidence)
	if ai.ToolSignature != "" && ai.ToolSignature != "unknown" {
		fmt.Fprintf(&b, "- **Suspected tool:** %s\n", ai.ToolSignature)
	}
	if report.AIAnalysis.Degraded {
		fmt.Fprintf(&b, "- **Note:** degraded analysis (%s)\n", report.AIAnalysis.Reason)
	}
	if ai.Explanation != "" {
		fmt.Fprintf(&b, "\n%s\n", ai.Explanation)
	}
	for _, ind := range ai.Indicators {
		fmt.Fprintf(&b, "- %s\n", ind)
	}
	b.WriteString("\n")

	b.WriteString("## Recommendations\n\n")
	for i, rec := range report.Recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}

	return b.String()
}
