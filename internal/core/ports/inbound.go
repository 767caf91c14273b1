package ports

import (
	"context"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

// FragmentRetriever is the inbound contract for ranked fragment retrieval.
type FragmentRetriever interface {
	Retrieve(ctx context.Context, question string, topK int, cfg domain.RetrievalConfig) (*domain.RankedResult, error)
}

// InventoryService summarizes the indexed corpus for meta-queries.
type InventoryService interface {
	ListInventory(ctx context.Context) (*domain.Inventory, error)
}

// AnswerService is the inbound contract for retrieval-grounded answering.
type AnswerService interface {
	Answer(ctx context.Context, question string, topK int) (*domain.Answer, error)
}

// FragmentAdmitter accepts pre-chunked fragments for one source document.
type FragmentAdmitter interface {
	Admit(ctx context.Context, source string, inputs []domain.FragmentInput) (*domain.IndexTask, error)
}

// SourceIndexer is the inbound contract for asynchronous index runs.
type SourceIndexer interface {
	IndexSource(ctx context.Context, taskID string) error
}

// TaskReader is the inbound read model for index task state.
type TaskReader interface {
	GetTask(ctx context.Context, id string) (*domain.IndexTask, error)
}
