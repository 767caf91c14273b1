package usecase

import (
	"context"
	"strings"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

// metadataCandidates surfaces fragments whose relevance is signaled by the
// source document name or document-level labels rather than body text.
func (uc *RetrieveUseCase) metadataCandidates(
	ctx context.Context,
	query domain.Query,
	n int,
) ([]domain.ScoredCandidate, error) {
	if len(query.Keywords) == 0 {
		return nil, nil
	}

	fragments, err := uc.store.ListAll(ctx, maxScanFragments)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStoreUnavailable, "scan fragments", err)
	}

	rawQuery := strings.ToLower(strings.TrimSpace(query.RawText))
	sourceScores := make(map[string]float64)

	out := make([]domain.ScoredCandidate, 0, n)
	for _, fragment := range fragments {
		score, ok := sourceScores[fragment.SourceDocument]
		if !ok {
			score = metadataScore(fragment.SourceDocument, fragment.Labels, query.Keywords, rawQuery)
			sourceScores[fragment.SourceDocument] = score
		}
		if score <= 0 {
			continue
		}
		out = append(out, domain.ScoredCandidate{
			Fragment: fragment,
			Strategy: domain.StrategyMetadata,
			RawScore: score,
		})
	}

	sortCandidatesByScore(out)
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// metadataScore weighs the fraction of query keywords present in the source
// name (0.9) and in the label field (0.7), plus a 0.9 bonus for a verbatim
// match of the whole question in either field.
func metadataScore(sourceName string, labels []string, keywords []string, rawQuery string) float64 {
	name := strings.ToLower(sourceName)
	labelText := strings.ToLower(strings.Join(labels, " "))

	var nameHits, labelHits int
	for _, keyword := range keywords {
		if strings.Contains(name, keyword) {
			nameHits++
		}
		if labelText != "" && strings.Contains(labelText, keyword) {
			labelHits++
		}
	}

	total := float64(len(keywords))
	score := 0.9*(float64(nameHits)/total) + 0.7*(float64(labelHits)/total)

	if rawQuery != "" && (strings.Contains(name, rawQuery) || (labelText != "" && strings.Contains(labelText, rawQuery))) {
		score += 0.9
	}
	return clamp01(score)
}
