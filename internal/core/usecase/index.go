package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jlozanoz/normateca/internal/core/domain"
	"github.com/jlozanoz/normateca/internal/core/ports"
)

// IndexUseCase runs the asynchronous embed-and-index pipeline for one
// admitted source, tracking progress on the index task row.
type IndexUseCase struct {
	tasks       ports.IndexTaskStore
	store       ports.FragmentStore
	embedder    ports.Embedder
	vectorIndex ports.VectorIndex
	queue       ports.MessageQueue
}

func NewIndexUseCase(
	tasks ports.IndexTaskStore,
	store ports.FragmentStore,
	embedder ports.Embedder,
	vectorIndex ports.VectorIndex,
	queue ports.MessageQueue,
) *IndexUseCase {
	return &IndexUseCase{
		tasks:       tasks,
		store:       store,
		embedder:    embedder,
		vectorIndex: vectorIndex,
		queue:       queue,
	}
}

func (uc *IndexUseCase) IndexSource(ctx context.Context, taskID string) error {
	task, err := uc.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("fetch index task: %w", err)
	}

	if err := uc.markStatus(ctx, task.ID, domain.TaskIndexing, ""); err != nil {
		return fmt.Errorf("set status=indexing: %w", err)
	}

	if err := uc.indexPipeline(ctx, task.SourceDocument); err != nil {
		if failErr := uc.markFailed(ctx, task.ID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, task.ID, domain.TaskReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}

	if err := uc.queue.PublishSourceIndexed(ctx, task.SourceDocument); err != nil {
		return fmt.Errorf("publish indexed event: %w", err)
	}
	return nil
}

func (uc *IndexUseCase) indexPipeline(ctx context.Context, source string) error {
	fragments, err := uc.store.ListBySource(ctx, source)
	if err != nil {
		return fmt.Errorf("load fragments by source: %w", err)
	}
	if len(fragments) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "index source", errors.New("no fragments admitted for source"))
	}

	texts := make([]string, len(fragments))
	for i, fragment := range fragments {
		texts[i] = fragment.Text
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed fragments: %w", err)
	}
	if len(vectors) != len(fragments) {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"embed fragments",
			fmt.Errorf("vectors/fragments mismatch: %d/%d", len(vectors), len(fragments)),
		)
	}

	if err := uc.vectorIndex.Upsert(ctx, fragments, vectors); err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}
	return nil
}

func (uc *IndexUseCase) markStatus(ctx context.Context, taskID string, status domain.TaskStatus, errMessage string) error {
	return uc.tasks.UpdateTaskStatus(ctx, taskID, status, errMessage)
}

func (uc *IndexUseCase) markFailed(ctx context.Context, taskID string, indexErr error) error {
	if indexErr == nil {
		return nil
	}
	return uc.markStatus(ctx, taskID, domain.TaskFailed, indexErr.Error())
}

// TaskUseCase is the read model for index task state.
type TaskUseCase struct {
	tasks ports.IndexTaskStore
}

func NewTaskUseCase(tasks ports.IndexTaskStore) *TaskUseCase {
	return &TaskUseCase{tasks: tasks}
}

func (uc *TaskUseCase) GetTask(ctx context.Context, id string) (*domain.IndexTask, error) {
	return uc.tasks.GetTaskByID(ctx, id)
}
