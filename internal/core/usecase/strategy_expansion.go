package usecase

import (
	"context"
	"strings"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

// expansionCandidates widens recall through the curated vocabulary table.
// The orchestrator invokes it only when the primary strategies leave the
// result set short of top-k.
func (uc *RetrieveUseCase) expansionCandidates(
	ctx context.Context,
	query domain.Query,
	n int,
) ([]domain.ScoredCandidate, error) {
	if len(query.Keywords) == 0 {
		return nil, nil
	}

	original := query.Keywords
	expanded := make([]string, 0, len(original))
	seen := make(map[string]struct{}, len(original))
	for _, keyword := range original {
		seen[keyword] = struct{}{}
	}
	for _, keyword := range original {
		for _, term := range uc.expander.Expand(keyword) {
			term = strings.ToLower(strings.TrimSpace(term))
			if term == "" {
				continue
			}
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			expanded = append(expanded, term)
		}
	}

	fragments, err := uc.store.ListAll(ctx, maxScanFragments)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStoreUnavailable, "scan fragments", err)
	}

	totalTerms := float64(len(original) + len(expanded))
	out := make([]domain.ScoredCandidate, 0, n)
	for _, fragment := range fragments {
		lower := strings.ToLower(fragment.Text)

		var score float64
		for _, keyword := range original {
			score += 0.3 * float64(strings.Count(lower, keyword))
		}
		for _, term := range expanded {
			score += 0.1 * float64(strings.Count(lower, term))
		}
		score = clamp01(score / totalTerms)
		if score <= 0 {
			continue
		}

		out = append(out, domain.ScoredCandidate{
			Fragment: fragment,
			Strategy: domain.StrategyExpansion,
			RawScore: score,
		})
	}

	sortCandidatesByScore(out)
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}
