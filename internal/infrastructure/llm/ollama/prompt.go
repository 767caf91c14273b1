package ollama

import (
	"fmt"
	"strings"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

func buildAnswerPrompt(question string, candidates []domain.ScoredCandidate) string {
	var contextBuilder strings.Builder
	for idx, candidate := range candidates {
		contextBuilder.WriteString(fmt.Sprintf(
			"[%d] source=%s page=%d score=%.3f\n%s\n\n",
			idx+1,
			candidate.Fragment.SourceDocument,
			candidate.Fragment.Page,
			candidate.WeightedScore,
			candidate.Fragment.Text,
		))
	}

	return fmt.Sprintf(`Answer the user question only from the context below.
Answer in the same language as the question.
Cite the source document name for every claim.
If the context is insufficient, say it directly.

Question:
%s

Context:
%s
`, question, contextBuilder.String())
}
