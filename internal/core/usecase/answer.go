package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jlozanoz/normateca/internal/core/domain"
	"github.com/jlozanoz/normateca/internal/core/ports"
)

const noInformationAnswer = "No he encontrado información relevante en los documentos indexados para responder a esa pregunta."

// AnswerUseCase composes retrieval-grounded answers. Inventory meta-queries
// are answered by formatting the inventory directly, without the generator.
type AnswerUseCase struct {
	retriever ports.FragmentRetriever
	generator ports.AnswerGenerator
	cfg       domain.RetrievalConfig
}

func NewAnswerUseCase(
	retriever ports.FragmentRetriever,
	generator ports.AnswerGenerator,
	cfg domain.RetrievalConfig,
) *AnswerUseCase {
	return &AnswerUseCase{
		retriever: retriever,
		generator: generator,
		cfg:       cfg.Normalize(),
	}
}

func (uc *AnswerUseCase) Answer(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	result, err := uc.retriever.Retrieve(ctx, question, topK, uc.cfg)
	if err != nil {
		return nil, fmt.Errorf("retrieve fragments: %w", err)
	}

	if result.Inventory != nil {
		return &domain.Answer{
			Text:    formatInventoryAnswer(result.Inventory),
			Sources: []domain.ScoredCandidate{},
		}, nil
	}

	if len(result.Candidates) == 0 {
		return &domain.Answer{
			Text:     noInformationAnswer,
			Sources:  []domain.ScoredCandidate{},
			Degraded: result.Degraded,
		}, nil
	}

	text, err := uc.generator.GenerateAnswer(ctx, question, result.Candidates)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:     text,
		Sources:  result.Candidates,
		Degraded: result.Degraded,
	}, nil
}

func formatInventoryAnswer(inventory *domain.Inventory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tengo %d documentos indexados con %d fragmentos en total.\n",
		inventory.TotalDocuments, inventory.TotalFragments)
	for _, source := range inventory.Sources {
		fmt.Fprintf(&b, "- %s (%d fragmentos", source.SourceDocument, source.FragmentCount)
		if len(source.Labels) > 0 {
			fmt.Fprintf(&b, ", %s", strings.Join(source.Labels, ", "))
		}
		b.WriteString(")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
