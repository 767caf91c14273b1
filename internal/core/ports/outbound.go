package ports

import (
	"context"
	"io"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

// Embedder builds vectors for fragment batches and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex stores fragment vectors and performs dense nearest-neighbor
// search.
type VectorIndex interface {
	Upsert(ctx context.Context, fragments []domain.Fragment, vectors [][]float32) error
	Nearest(ctx context.Context, vector []float32, n int) ([]domain.VectorHit, error)
}

// TextIndex narrows lexical candidates by keyword coverage. Optional: the
// lexical retriever falls back to scanning the fragment store when none is
// wired.
type TextIndex interface {
	Match(ctx context.Context, keywords []string, n int) ([]domain.TextHit, error)
}

// FragmentStore reads the admitted fragment corpus.
type FragmentStore interface {
	Get(ctx context.Context, key string) (*domain.Fragment, error)
	ListAll(ctx context.Context, limit int) ([]domain.Fragment, error)
	ListBySource(ctx context.Context, source string) ([]domain.Fragment, error)
	ListDistinctSources(ctx context.Context) ([]string, error)
	ListSourceSummaries(ctx context.Context) ([]domain.SourceSummary, error)
}

// FragmentWriter persists admitted fragment batches.
type FragmentWriter interface {
	SaveBatch(ctx context.Context, fragments []domain.Fragment) error
}

// TermExpander returns curated related terms for a keyword. Unknown terms
// yield nothing.
type TermExpander interface {
	Expand(term string) []string
}

// IndexTaskStore persists index task state.
type IndexTaskStore interface {
	CreateTask(ctx context.Context, task *domain.IndexTask) error
	GetTaskByID(ctx context.Context, id string) (*domain.IndexTask, error)
	UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus, errMessage string) error
}

// ArchiveStore keeps raw admitted batches for audit and re-indexing.
type ArchiveStore interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes admission and index lifecycle events.
type MessageQueue interface {
	PublishFragmentsAdmitted(ctx context.Context, taskID string) error
	SubscribeFragmentsAdmitted(ctx context.Context, handler func(context.Context, string) error) error
	PublishSourceIndexed(ctx context.Context, source string) error
	SubscribeSourceIndexed(ctx context.Context, handler func(context.Context, string) error) error
}

// AnswerGenerator creates the final user-facing answer.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, candidates []domain.ScoredCandidate) (string, error)
}
