package services

import (
	"strings"

	"mindgraph-backend/domain/config"
)

// DuplicateFilter rejects proposed nodes whose label is a near-duplicate of
// a committed one. Exact case-insensitive matches are duplicates; otherwise
// labels are compared by token overlap against the smaller token set.
//
// Candidates are only checked against committed state, never against each
// other within one delta.
type DuplicateFilter struct {
	cfg *config.DomainConfig
}

// NewDuplicateFilter creates a duplicate filter
func NewDuplicateFilter(cfg *config.DomainConfig) *DuplicateFilter {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &DuplicateFilter{cfg: cfg}
}

// IsDuplicate reports whether the candidate label duplicates any existing
// label.
func (f *DuplicateFilter) IsDuplicate(candidate string, existing []string) bool {
	for _, label := range existing {
		if f.Matches(candidate, label) {
			return true
		}
	}
	return false
}

// Matches compares two labels for near-duplication
func (f *DuplicateFilter) Matches(a, b string) bool {
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
		return true
	}
	return f.Similarity(a, b) > f.cfg.DuplicateThreshold
}

// Similarity returns |tokensA ∩ tokensB| / min(|tokensA|, |tokensB|), or 0
// when either label has no qualifying tokens. Short labels therefore never
// fuzzy-match, which avoids a divide by zero and false positives.
func (f *DuplicateFilter) Similarity(a, b string) float64 {
	tokensA := f.tokenize(a)
	tokensB := f.tokenize(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	overlap := 0
	for token := range tokensA {
		if tokensB[token] {
			overlap++
		}
	}

	smaller := len(tokensA)
	if len(tokensB) < smaller {
		smaller = len(tokensB)
	}
	return float64(overlap) / float64(smaller)
}

// tokenize splits on whitespace and keeps only tokens long enough to carry
// meaning, which filters stopword-ish noise.
func (f *DuplicateFilter) tokenize(label string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(label)) {
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if len(word) >= f.cfg.MinTokenLength {
			tokens[word] = true
		}
	}
	return tokens
}
