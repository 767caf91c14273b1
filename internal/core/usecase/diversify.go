package usecase

import (
	"github.com/jlozanoz/normateca/internal/core/domain"
)

// diversify makes a greedy pass in score order: a candidate is kept only
// while its word-set Jaccard similarity against every kept candidate stays
// at or below the threshold and its source document has not exhausted
// maxPerSource (zero means uncapped). The kept list is truncated to topK.
func diversify(candidates []domain.ScoredCandidate, diversityThreshold float64, maxPerSource, topK int) []domain.ScoredCandidate {
	kept := make([]domain.ScoredCandidate, 0, topK)
	keptTokens := make([]map[string]struct{}, 0, topK)
	perSource := make(map[string]int)

	for _, candidate := range candidates {
		if topK > 0 && len(kept) >= topK {
			break
		}
		if maxPerSource > 0 && perSource[candidate.Fragment.SourceDocument] >= maxPerSource {
			continue
		}

		tokens := toTokenSet(candidate.Fragment.Text)
		tooSimilar := false
		for _, existing := range keptTokens {
			if jaccardSimilarity(tokens, existing) > diversityThreshold {
				tooSimilar = true
				break
			}
		}
		if tooSimilar {
			continue
		}

		kept = append(kept, candidate)
		keptTokens = append(keptTokens, tokens)
		perSource[candidate.Fragment.SourceDocument]++
	}
	return kept
}

func jaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	intersection := 0
	for token := range small {
		if _, ok := large[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
