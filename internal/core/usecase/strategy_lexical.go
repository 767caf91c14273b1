package usecase

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

// maxScanFragments bounds the full-corpus scan used when no text index is
// wired or the index call fails.
const maxScanFragments = 2000

// lexicalCandidates scores fragments by keyword coverage: 0.2 per exact
// keyword occurrence, 0.1 per naive singular/plural variant occurrence and
// a 0.5 bonus when the whole question appears verbatim.
func (uc *RetrieveUseCase) lexicalCandidates(
	ctx context.Context,
	query domain.Query,
	n int,
) ([]domain.ScoredCandidate, error) {
	if len(query.Keywords) == 0 {
		return nil, nil
	}

	fragments, err := uc.lexicalPool(ctx, query.Keywords, n)
	if err != nil {
		return nil, err
	}

	rawQuery := strings.ToLower(strings.TrimSpace(query.RawText))
	out := make([]domain.ScoredCandidate, 0, n)
	for _, fragment := range fragments {
		score := lexicalScore(fragment.Text, query.Keywords, rawQuery)
		if score <= 0 {
			continue
		}
		out = append(out, domain.ScoredCandidate{
			Fragment: fragment,
			Strategy: domain.StrategyLexical,
			RawScore: score,
		})
	}

	sortCandidatesByScore(out)
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// lexicalPool narrows candidates through the text index when one is wired;
// an index failure falls back to scanning the store rather than emptying
// the strategy.
func (uc *RetrieveUseCase) lexicalPool(ctx context.Context, keywords []string, n int) ([]domain.Fragment, error) {
	if uc.textIndex != nil {
		hits, err := uc.textIndex.Match(ctx, keywords, 4*n)
		if err == nil {
			fragments := make([]domain.Fragment, 0, len(hits))
			for _, hit := range hits {
				fragment, err := uc.store.Get(ctx, hit.FragmentKey)
				if err != nil {
					if domain.IsKind(err, domain.ErrFragmentNotFound) {
						continue
					}
					return nil, domain.WrapError(domain.ErrStoreUnavailable, "resolve fragment", err)
				}
				fragments = append(fragments, *fragment)
			}
			return fragments, nil
		}
		slog.Warn("text_index_fallback_scan", "error", err)
	}

	fragments, err := uc.store.ListAll(ctx, maxScanFragments)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStoreUnavailable, "scan fragments", err)
	}
	return fragments, nil
}

func lexicalScore(text string, keywords []string, rawQuery string) float64 {
	lower := strings.ToLower(text)

	var score float64
	for _, keyword := range keywords {
		score += 0.2 * float64(strings.Count(lower, keyword))
		for _, variant := range wordVariants(keyword) {
			score += 0.1 * float64(strings.Count(lower, variant))
		}
	}
	score /= float64(len(keywords))

	if rawQuery != "" && strings.Contains(lower, rawQuery) {
		score += 0.5
	}
	return clamp01(score)
}

// wordVariants toggles naive Spanish/English plural forms to raise recall.
func wordVariants(word string) []string {
	var out []string
	switch {
	case strings.HasSuffix(word, "es") && len(word) > 4:
		out = append(out, strings.TrimSuffix(word, "es"), strings.TrimSuffix(word, "s"))
	case strings.HasSuffix(word, "s") && len(word) > 3:
		out = append(out, strings.TrimSuffix(word, "s"))
	default:
		out = append(out, word+"s", word+"es")
	}
	return out
}

// sortCandidatesByScore orders by raw score descending with the fragment
// key as a deterministic tie-break.
func sortCandidatesByScore(candidates []domain.ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].RawScore != candidates[j].RawScore {
			return candidates[i].RawScore > candidates[j].RawScore
		}
		return candidates[i].Fragment.Key < candidates[j].Fragment.Key
	})
}
