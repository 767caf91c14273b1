package usecase

import (
	"math"
	"sort"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

// Position decay per rank step within a strategy's own result list.
// Metadata and expansion results carry no decay.
const (
	semanticRankDecay = 0.95
	lexicalRankDecay  = 0.97
	expansionWeight   = 0.3
)

type strategyResults struct {
	semantic  []domain.ScoredCandidate
	lexical   []domain.ScoredCandidate
	metadata  []domain.ScoredCandidate
	expansion []domain.ScoredCandidate
}

// fuseCandidates merges per-strategy lists into one cross-strategy ranking.
// Deduplication is first-strategy-wins in the order semantic, lexical,
// metadata, expansion: a fragment key seen earlier is never re-added, even
// when the later strategy scored it higher.
func fuseCandidates(results strategyResults, cfg domain.RetrievalConfig) []domain.ScoredCandidate {
	total := len(results.semantic) + len(results.lexical) + len(results.metadata) + len(results.expansion)
	out := make([]domain.ScoredCandidate, 0, total)
	seen := make(map[string]struct{}, total)

	addList := func(candidates []domain.ScoredCandidate, weight, rankDecay float64) {
		for rank, candidate := range candidates {
			if _, ok := seen[candidate.Fragment.Key]; ok {
				continue
			}
			seen[candidate.Fragment.Key] = struct{}{}

			decay := 1.0
			if rankDecay > 0 {
				decay = math.Pow(rankDecay, float64(rank))
			}
			candidate.WeightedScore = candidate.RawScore * weight * decay
			out = append(out, candidate)
		}
	}

	addList(results.semantic, cfg.SemanticWeight, semanticRankDecay)
	addList(results.lexical, cfg.LexicalWeight, lexicalRankDecay)
	addList(results.metadata, 1.0, 0)
	addList(results.expansion, expansionWeight, 0)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WeightedScore != out[j].WeightedScore {
			return out[i].WeightedScore > out[j].WeightedScore
		}
		return out[i].Fragment.Key < out[j].Fragment.Key
	})
	return out
}
