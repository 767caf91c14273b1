package domain

// Fragment is one pre-chunked unit of indexed document text. Fragments are
// created at admission time and read-only afterwards; Key is stable across
// re-admission of the same source.
type Fragment struct {
	Key            string   `json:"key"`
	Text           string   `json:"text"`
	SourceDocument string   `json:"source_document"`
	Page           int      `json:"page,omitempty"`
	ChunkIndex     int      `json:"chunk_index"`
	Labels         []string `json:"labels,omitempty"`
	EmbeddingRef   string   `json:"embedding_ref,omitempty"`
}

// FragmentInput is one pre-chunked fragment as submitted for admission.
type FragmentInput struct {
	Text   string   `json:"text"`
	Page   int      `json:"page,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

type SourceSummary struct {
	SourceDocument string   `json:"source_document"`
	FragmentCount  int      `json:"fragment_count"`
	Labels         []string `json:"labels,omitempty"`
}

type Inventory struct {
	TotalDocuments int             `json:"total_documents"`
	TotalFragments int             `json:"total_fragments"`
	Sources        []SourceSummary `json:"sources"`
}
