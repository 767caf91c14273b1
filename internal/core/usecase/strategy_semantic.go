package usecase

import (
	"context"
	"fmt"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

// semanticCandidates embeds the query, asks the vector index for 2n
// neighbors and keeps the first n whose similarity clears the threshold.
func (uc *RetrieveUseCase) semanticCandidates(
	ctx context.Context,
	query domain.Query,
	n int,
	threshold float64,
) ([]domain.ScoredCandidate, error) {
	text := query.RawText
	if query.IsCitation && query.EnhancedText != "" {
		text = query.EnhancedText
	}

	vector, err := uc.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbeddingUnavailable, "embed query", err)
	}

	hits, err := uc.vectorIndex.Nearest(ctx, vector, 2*n)
	if err != nil {
		return nil, fmt.Errorf("vector nearest: %w", err)
	}

	out := make([]domain.ScoredCandidate, 0, n)
	for _, hit := range hits {
		if len(out) >= n {
			break
		}
		similarity := clamp01(1 - hit.Distance)
		if similarity < threshold {
			continue
		}

		fragment, err := uc.store.Get(ctx, hit.FragmentKey)
		if err != nil {
			if domain.IsKind(err, domain.ErrFragmentNotFound) {
				continue
			}
			return nil, domain.WrapError(domain.ErrStoreUnavailable, "resolve fragment", err)
		}

		out = append(out, domain.ScoredCandidate{
			Fragment: *fragment,
			Strategy: domain.StrategySemantic,
			RawScore: similarity,
		})
	}
	return out, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
