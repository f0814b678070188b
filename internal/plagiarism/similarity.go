package plagiarism

import (
	"sort"
	"strings"
)

// Thresholds are the empirical similarity cutoffs used throughout detection.
// The defaults come from calibration against graded submissions; deployments
// can override them via config.
type Thresholds struct {
	Report   float64 // minimum similarity worth reporting
	Low      float64
	Medium   float64 // also the flagging threshold
	High     float64
	Exact    float64
	Forensic float64 // internal pairs above this get an LLM forensic pass
}

// DefaultThresholds returns the calibrated defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Report:   0.40,
		Low:      0.50,
		Medium:   0.70,
		High:     0.85,
		Exact:    0.95,
		Forensic: 0.60,
	}
}

// Classify maps a similarity ratio to a match kind. The structural branch is
// unreachable from FindMatches (which filters at Medium) but is used by the
// code-similarity verdict, which feeds unfiltered ratios through it.
func (t Thresholds) Classify(similarity float64) string {
	switch {
	case similarity >= t.Exact:
		return "exact"
	case similarity >= t.High:
		return "near_exact"
	case similarity >= t.Medium:
		return "paraphrased"
	default:
		return "structural"
	}
}

// normalizeText case-folds and collapses all whitespace runs to single
// spaces, so formatting differences do not inflate or deflate scores.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Similarity computes the sequence-matching ratio of the two normalized
// texts: 2*M/T where M is the total length of matched blocks and T the
// combined length. Symmetric and reflexive; 1.0 for two empty inputs. Not a
// metric (no triangle inequality) and not intended to be one.
func Similarity(a, b string) float64 {
	na := []rune(normalizeText(a))
	nb := []rune(normalizeText(b))

	total := len(na) + len(nb)
	if total == 0 {
		return 1.0
	}

	matched := newMatcher(na, nb).matchingTotal()
	return 2.0 * float64(matched) / float64(total)
}

// matcher implements Ratcliff/Obershelp: recursively take the longest
// matching block, then match what is left on either side of it.
type matcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	return &matcher{a: a, b: b, b2j: b2j}
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] within the given
// window, preferring the earliest block in a on ties.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)

	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}

// matchingTotal sums the sizes of all matching blocks.
func (m *matcher) matchingTotal() int {
	type window struct{ alo, ahi, blo, bhi int }
	queue := []window{{0, len(m.a), 0, len(m.b)}}
	total := 0

	for len(queue) > 0 {
		w := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := m.longestMatch(w.alo, w.ahi, w.blo, w.bhi)
		if k == 0 {
			continue
		}
		total += k
		if w.alo < i && w.blo < j {
			queue = append(queue, window{w.alo, i, w.blo, j})
		}
		if i+k < w.ahi && j+k < w.bhi {
			queue = append(queue, window{i + k, w.ahi, j + k, w.bhi})
		}
	}
	return total
}

// Chunk splits text into word chunks of the given size with 50% overlap.
// Fragments shorter than 20 characters are dropped so degenerate tails do
// not produce spurious matches.
func Chunk(text string, size int) []string {
	if size <= 0 {
		return nil
	}
	words := strings.Fields(text)
	stride := size / 2
	if stride < 1 {
		stride = 1
	}

	var chunks []string
	for i := 0; i < len(words); i += stride {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.Join(words[i:end], " ")
		if len(chunk) > 20 {
			chunks = append(chunks, chunk)
		}
		if end == len(words) {
			break
		}
	}
	return chunks
}

// SectionMatch is one chunk pair scoring above the medium threshold.
type SectionMatch struct {
	SourceIndex   int
	TargetIndex   int
	SourceExcerpt string
	TargetExcerpt string
	SimilarityPct float64
	Length        int
	Kind          string
}

const excerptDisplayLen = 200

// FindMatches compares every chunk of a against every chunk of b and returns
// the pairs scoring at or above the medium threshold, highest first. minLen
// filters out short source chunks whose ratios are unstable.
func FindMatches(th Thresholds, a, b string, chunkSize, minLen int) []SectionMatch {
	chunksA := Chunk(a, chunkSize)
	chunksB := Chunk(b, chunkSize)

	var matches []SectionMatch
	for i, ca := range chunksA {
		if len(ca) < minLen {
			continue
		}
		for j, cb := range chunksB {
			sim := Similarity(ca, cb)
			if sim < th.Medium {
				continue
			}
			matches = append(matches, SectionMatch{
				SourceIndex:   i,
				TargetIndex:   j,
				SourceExcerpt: truncate(ca, excerptDisplayLen),
				TargetExcerpt: truncate(cb, excerptDisplayLen),
				SimilarityPct: round2(sim * 100),
				Length:        len(ca),
				Kind:          th.Classify(sim),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SimilarityPct > matches[j].SimilarityPct
	})
	return matches
}

// truncate cuts s to at most n runes, never splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
