package domain

import "time"

type TaskStatus string

const (
	TaskPending  TaskStatus = "pending"
	TaskIndexing TaskStatus = "indexing"
	TaskReady    TaskStatus = "ready"
	TaskFailed   TaskStatus = "failed"
)

// IndexTask tracks the asynchronous embed-and-index run for one admitted
// source document.
type IndexTask struct {
	ID             string     `json:"id"`
	SourceDocument string     `json:"source_document"`
	FragmentCount  int        `json:"fragment_count"`
	Status         TaskStatus `json:"status"`
	Error          string     `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
