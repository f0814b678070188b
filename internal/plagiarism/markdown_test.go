package plagiarism

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proctoriq/proctoriq/internal/models"
)

func sampleReport(t *testing.T) *models.PlagiarismReport {
	t.Helper()
	sub := models.Submission{
		ID:      "dup-9",
		Student: "Robin",
		Kind:    models.KindCode,
		Files: []models.SubmissionFile{
			{Name: "main.py", Content: sumFunc},
			{Name: "copy.py", Content: sumFunc},
		},
	}
	report, err := newTestDetector(nil, nil).Check(context.Background(), sub)
	require.NoError(t, err)
	return report
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(sampleReport(t))

	assert.Contains(t, md, "# Plagiarism Report: Robin")
	assert.Contains(t, md, "**Risk level:** CRITICAL")
	assert.Contains(t, md, "## Matches")
	assert.Contains(t, md, "main.py vs copy.py")
	assert.Contains(t, md, "internal_copy")
	assert.Contains(t, md, "## Recommendations")
	assert.Contains(t, md, "1. ")
}

func TestRenderMarkdownNoMatches(t *testing.T) {
	report, err := newTestDetector(nil, nil).Check(context.Background(), models.Submission{
		ID:      "clean-9",
		Student: "Dana",
		Kind:    models.KindWriteup,
		Text:    unrelatedA,
	})
	require.NoError(t, err)

	md := RenderMarkdown(report)
	assert.Contains(t, md, "No matches above the reporting threshold.")
	assert.Contains(t, md, "degraded analysis")
}

func TestExportJSONRoundTrip(t *testing.T) {
	data, err := ExportJSON(sampleReport(t))
	require.NoError(t, err)

	var decoded models.PlagiarismReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "dup-9", decoded.SubmissionID)
	assert.Equal(t, models.RiskCritical, decoded.RiskLevel)
	assert.Len(t, decoded.Matches, 1)
}
