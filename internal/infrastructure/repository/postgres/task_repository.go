package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082502)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS index_tasks (
	id TEXT PRIMARY KEY,
	source_document TEXT NOT NULL,
	fragment_count INTEGER NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_index_tasks_status ON index_tasks(status);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *TaskRepository) CreateTask(ctx context.Context, task *domain.IndexTask) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO index_tasks (id, source_document, fragment_count, status, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, task.ID, task.SourceDocument, task.FragmentCount, string(task.Status), task.Error, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create index task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetTaskByID(ctx context.Context, id string) (*domain.IndexTask, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, source_document, fragment_count, status, error_message, created_at, updated_at
FROM index_tasks
WHERE id = $1
`, id)

	var task domain.IndexTask
	var status string
	err := row.Scan(
		&task.ID, &task.SourceDocument, &task.FragmentCount, &status, &task.Error, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrTaskNotFound, "get index task", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan index task: %w", err)
	}
	task.Status = domain.TaskStatus(status)
	return &task, nil
}

func (r *TaskRepository) UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE index_tasks
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update index task status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update index task rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrTaskNotFound, "update index task status", fmt.Errorf("id=%s", id))
	}
	return nil
}
