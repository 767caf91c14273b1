package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jlozanoz/normateca/internal/core/domain"
	"github.com/jlozanoz/normateca/internal/core/ports"
)

// AdmitUseCase accepts pre-chunked fragments for one source document,
// persists them, archives the raw batch and enqueues the index run.
type AdmitUseCase struct {
	writer  ports.FragmentWriter
	tasks   ports.IndexTaskStore
	archive ports.ArchiveStore
	queue   ports.MessageQueue
}

func NewAdmitUseCase(
	writer ports.FragmentWriter,
	tasks ports.IndexTaskStore,
	archive ports.ArchiveStore,
	queue ports.MessageQueue,
) *AdmitUseCase {
	return &AdmitUseCase{
		writer:  writer,
		tasks:   tasks,
		archive: archive,
		queue:   queue,
	}
}

func (uc *AdmitUseCase) Admit(
	ctx context.Context,
	source string,
	inputs []domain.FragmentInput,
) (*domain.IndexTask, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "admit fragments", errors.New("source document name is required"))
	}
	if len(inputs) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "admit fragments", errors.New("at least one fragment is required"))
	}

	fragments := make([]domain.Fragment, 0, len(inputs))
	for i, input := range inputs {
		if strings.TrimSpace(input.Text) == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "admit fragments", fmt.Errorf("fragment %d has empty text", i))
		}
		// Keys are stable across re-admission of the same source, so
		// re-indexing overwrites instead of duplicating.
		fragments = append(fragments, domain.Fragment{
			Key:            fmt.Sprintf("%s:%d", source, i),
			Text:           input.Text,
			SourceDocument: source,
			Page:           input.Page,
			ChunkIndex:     i,
			Labels:         input.Labels,
		})
	}

	if err := uc.writer.SaveBatch(ctx, fragments); err != nil {
		return nil, fmt.Errorf("save fragment batch: %w", err)
	}

	now := time.Now().UTC()
	task := &domain.IndexTask{
		ID:             uuid.NewString(),
		SourceDocument: source,
		FragmentCount:  len(fragments),
		Status:         domain.TaskPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	batchJSON, err := json.Marshal(fragments)
	if err != nil {
		return nil, fmt.Errorf("marshal batch archive: %w", err)
	}
	archiveKey := fmt.Sprintf("%s_%s.json", task.ID, sanitizeSourceName(source))
	if err := uc.archive.Save(ctx, archiveKey, bytes.NewReader(batchJSON)); err != nil {
		return nil, fmt.Errorf("archive fragment batch: %w", err)
	}

	if err := uc.tasks.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create index task: %w", err)
	}

	if err := uc.queue.PublishFragmentsAdmitted(ctx, task.ID); err != nil {
		return nil, fmt.Errorf("publish admission event: %w", err)
	}

	return task, nil
}

func sanitizeSourceName(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" {
		return "source"
	}
	return name
}
