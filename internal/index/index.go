// Package index wraps the external semantic index consumed by the
// cross-submission phase. The index service itself (embeddings, persistence)
// is a black-box collaborator; this package only speaks its query/upsert
// contract.
package index

import (
	"context"

	"github.com/proctoriq/proctoriq/internal/models"
)

// Neighbor is one chunk returned by a nearest-neighbor query, with the
// metadata of the submission it was indexed under.
type Neighbor struct {
	Content      string
	SubmissionID string
	Student      string
	Filename     string
	Certainty    float64
}

// Index is the contract the detector depends on. Implementations must be
// safe to call with a cancelled context and should return errors rather than
// block forever; the caller absorbs failures and degrades.
type Index interface {
	// Query returns up to k neighbor chunks for the given text, restricted to
	// indexed submission documents.
	Query(ctx context.Context, text string, k int) ([]Neighbor, error)
	// Upsert chunks a submission's text and stores the chunks under its id.
	Upsert(ctx context.Context, sub models.Submission) error
}

const (
	chunkChars   = 1000
	overlapChars = 200
)

// chunkText splits text into ~chunkChars character chunks with a fixed
// character overlap, splitting on whitespace so words stay intact.
func chunkText(text string) []string {
	if len(text) <= chunkChars {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + chunkChars
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}
		// back off to the previous space so chunks end on a word boundary
		cut := end
		for cut > start && text[cut] != ' ' && text[cut] != '\n' {
			cut--
		}
		if cut == start {
			cut = end
		}
		chunks = append(chunks, text[start:cut])
		next := cut - overlapChars
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}
