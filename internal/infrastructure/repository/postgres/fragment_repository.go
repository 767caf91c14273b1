package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

// FragmentRepository persists the admitted fragment corpus and doubles as
// the lexical text-matching index via ILIKE narrowing.
type FragmentRepository struct {
	db *sql.DB
}

func NewFragmentRepository(db *sql.DB) *FragmentRepository {
	return &FragmentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *FragmentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS fragments (
	key TEXT PRIMARY KEY,
	source_document TEXT NOT NULL,
	page INTEGER NOT NULL DEFAULT 0,
	chunk_index INTEGER NOT NULL,
	labels JSONB NOT NULL DEFAULT '[]'::jsonb,
	text TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fragments_source ON fragments(source_document);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *FragmentRepository) SaveBatch(ctx context.Context, fragments []domain.Fragment) error {
	if len(fragments) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for _, fragment := range fragments {
		labelsJSON, err := json.Marshal(fragment.Labels)
		if err != nil {
			return fmt.Errorf("marshal labels: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO fragments (key, source_document, page, chunk_index, labels, text, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (key) DO UPDATE
SET source_document = EXCLUDED.source_document,
    page = EXCLUDED.page,
    chunk_index = EXCLUDED.chunk_index,
    labels = EXCLUDED.labels,
    text = EXCLUDED.text
`, fragment.Key, fragment.SourceDocument, fragment.Page, fragment.ChunkIndex, labelsJSON, fragment.Text, now)
		if err != nil {
			return fmt.Errorf("upsert fragment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch tx: %w", err)
	}
	return nil
}

const fragmentColumns = "key, source_document, page, chunk_index, labels, text"

func (r *FragmentRepository) Get(ctx context.Context, key string) (*domain.Fragment, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+fragmentColumns+`
FROM fragments
WHERE key = $1
`, key)

	fragment, err := scanFragmentRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrFragmentNotFound, "get fragment", fmt.Errorf("key=%s", key))
		}
		return nil, fmt.Errorf("scan fragment: %w", err)
	}
	return fragment, nil
}

func (r *FragmentRepository) ListAll(ctx context.Context, limit int) ([]domain.Fragment, error) {
	query := `
SELECT ` + fragmentColumns + `
FROM fragments
ORDER BY source_document, chunk_index
`
	args := []any{}
	if limit > 0 {
		query += "LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fragments: %w", err)
	}
	defer rows.Close()

	return collectFragments(rows)
}

func (r *FragmentRepository) ListBySource(ctx context.Context, source string) ([]domain.Fragment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+fragmentColumns+`
FROM fragments
WHERE source_document = $1
ORDER BY chunk_index
`, source)
	if err != nil {
		return nil, fmt.Errorf("list fragments by source: %w", err)
	}
	defer rows.Close()

	return collectFragments(rows)
}

func (r *FragmentRepository) ListDistinctSources(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT DISTINCT source_document
FROM fragments
ORDER BY source_document
`)
	if err != nil {
		return nil, fmt.Errorf("list distinct sources: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return out, nil
}

func (r *FragmentRepository) ListSourceSummaries(ctx context.Context) ([]domain.SourceSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT source_document, COUNT(*) AS fragment_count, (array_agg(labels ORDER BY chunk_index))[1] AS labels
FROM fragments
GROUP BY source_document
ORDER BY source_document
`)
	if err != nil {
		return nil, fmt.Errorf("list source summaries: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SourceSummary, 0)
	for rows.Next() {
		var summary domain.SourceSummary
		var labelsRaw []byte
		if err := rows.Scan(&summary.SourceDocument, &summary.FragmentCount, &labelsRaw); err != nil {
			return nil, fmt.Errorf("scan source summary: %w", err)
		}
		if len(labelsRaw) > 0 {
			if err := json.Unmarshal(labelsRaw, &summary.Labels); err != nil {
				return nil, fmt.Errorf("unmarshal labels: %w", err)
			}
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source summaries: %w", err)
	}
	return out, nil
}

// Match narrows lexical candidates to fragments containing at least one
// keyword. The reported score is the fraction of keywords present; the
// lexical retriever re-scores survivors with its full formula.
func (r *FragmentRepository) Match(ctx context.Context, keywords []string, n int) ([]domain.TextHit, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	if n <= 0 {
		n = 50
	}

	conditions := make([]string, 0, len(keywords))
	args := make([]any, 0, len(keywords)+1)
	for i, keyword := range keywords {
		conditions = append(conditions, fmt.Sprintf("text ILIKE $%d", i+1))
		args = append(args, "%"+keyword+"%")
	}
	args = append(args, n)

	query := fmt.Sprintf(`
SELECT key, text
FROM fragments
WHERE %s
ORDER BY key
LIMIT $%d
`, strings.Join(conditions, " OR "), len(keywords)+1)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("match fragments: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TextHit, 0, n)
	for rows.Next() {
		var key, text string
		if err := rows.Scan(&key, &text); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, domain.TextHit{
			FragmentKey: key,
			Score:       keywordCoverage(text, keywords),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return out, nil
}

func keywordCoverage(text string, keywords []string) float64 {
	lower := strings.ToLower(text)
	hits := 0
	for _, keyword := range keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFragmentRow(row rowScanner) (*domain.Fragment, error) {
	var fragment domain.Fragment
	var labelsRaw []byte

	err := row.Scan(
		&fragment.Key,
		&fragment.SourceDocument,
		&fragment.Page,
		&fragment.ChunkIndex,
		&labelsRaw,
		&fragment.Text,
	)
	if err != nil {
		return nil, err
	}

	if len(labelsRaw) > 0 {
		if err := json.Unmarshal(labelsRaw, &fragment.Labels); err != nil {
			return nil, fmt.Errorf("unmarshal labels: %w", err)
		}
	}
	return &fragment, nil
}

func collectFragments(rows *sql.Rows) ([]domain.Fragment, error) {
	out := make([]domain.Fragment, 0)
	for rows.Next() {
		fragment, err := scanFragmentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fragment: %w", err)
		}
		out = append(out, *fragment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fragments: %w", err)
	}
	return out, nil
}
