package usecase

import (
	"strings"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

// topicScanChars limits identifier detection to the head of the fragment
// text, where regulatory documents cite their own codes.
const topicScanChars = 500

// filterByTopic drops candidates whose detected identifiers conflict with
// the ones the query names. Candidates without any detectable identifier
// are kept (generic content), as are fragments from source documents whose
// name carries no identifier pattern (general cross-topic documents).
func filterByTopic(candidates []domain.ScoredCandidate, topics []string) []domain.ScoredCandidate {
	if len(topics) == 0 {
		return candidates
	}

	wanted := make(map[string]struct{}, len(topics))
	for _, topic := range topics {
		wanted[topic] = struct{}{}
	}

	out := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if keepForTopics(candidate.Fragment, wanted) {
			out = append(out, candidate)
		}
	}
	return out
}

func keepForTopics(fragment domain.Fragment, wanted map[string]struct{}) bool {
	detected := fragmentIdentifiers(fragment)
	if len(detected) == 0 {
		return true
	}
	for _, id := range detected {
		if _, ok := wanted[id]; ok {
			return true
		}
	}
	// Identifiers were found in the body only: a source whose name names no
	// regulation is treated as a general document that may cite many.
	return !hasIdentifierPattern(fragment.SourceDocument)
}

func fragmentIdentifiers(fragment domain.Fragment) []string {
	var b strings.Builder
	b.WriteString(fragment.SourceDocument)
	for _, label := range fragment.Labels {
		b.WriteString(" ")
		b.WriteString(label)
	}
	b.WriteString(" ")
	b.WriteString(headRunes(fragment.Text, topicScanChars))
	return extractIdentifiers(b.String())
}

func headRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
