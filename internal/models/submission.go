package models

import "strings"

// SubmissionKind tells the detector which phases apply to a submission.
type SubmissionKind string

const (
	KindCode    SubmissionKind = "code"
	KindWriteup SubmissionKind = "writeup"
	KindMixed   SubmissionKind = "mixed"
)

// SubmissionFile is one already-extracted plain-text file of a submission.
// Upstream extraction (OCR, docx, PDF) happens outside this core; unreadable
// files arrive as empty content.
type SubmissionFile struct {
	Name    string `json:"filename"`
	Content string `json:"content"`
}

// Submission is the input to one detection run.
type Submission struct {
	ID      string           `json:"submissionId"`
	Student string           `json:"studentName"`
	Kind    SubmissionKind   `json:"submissionType"`
	Text    string           `json:"text"`
	Files   []SubmissionFile `json:"files,omitempty"`
}

// CombinedText flattens the submission to the single text blob that
// whole-document scoring and indexing operate on. Text wins when set;
// otherwise the non-empty file contents are concatenated in order.
func (s Submission) CombinedText() string {
	if s.Text != "" {
		return s.Text
	}
	var parts []string
	for _, f := range s.Files {
		if strings.TrimSpace(f.Content) != "" {
			parts = append(parts, f.Content)
		}
	}
	return strings.Join(parts, "\n")
}
