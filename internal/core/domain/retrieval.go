package domain

type Strategy string

const (
	StrategySemantic  Strategy = "semantic"
	StrategyLexical   Strategy = "lexical"
	StrategyMetadata  Strategy = "metadata"
	StrategyExpansion Strategy = "expansion"
)

// Query is the analyzed form of one incoming question. Keywords are
// lower-cased, stopword-stripped, longer than two characters, deduplicated
// in first-seen order.
type Query struct {
	RawText          string   `json:"raw_text"`
	Keywords         []string `json:"keywords"`
	TopicIdentifiers []string `json:"topic_identifiers,omitempty"`
	IsCitation       bool     `json:"is_citation"`
	EnhancedText     string   `json:"enhanced_text,omitempty"`
	IsInventory      bool     `json:"is_inventory"`
}

// ScoredCandidate annotates a fragment with retrieval provenance for one
// pass. WeightedScore is cross-strategy comparable; RawScore is on the
// owning strategy's own scale.
type ScoredCandidate struct {
	Fragment      Fragment `json:"fragment"`
	Strategy      Strategy `json:"strategy"`
	RawScore      float64  `json:"raw_score"`
	WeightedScore float64  `json:"weighted_score"`
}

// RankedResult is the final retrieval output: candidates in non-increasing
// WeightedScore order, unique by fragment key. Inventory is set instead of
// candidates when the question was a document-inventory meta-query.
type RankedResult struct {
	Candidates         []ScoredCandidate `json:"candidates"`
	Degraded           bool              `json:"degraded,omitempty"`
	DegradedStrategies []Strategy        `json:"degraded_strategies,omitempty"`
	StrategyCandidates map[Strategy]int  `json:"strategy_candidates,omitempty"`
	Inventory          *Inventory        `json:"inventory,omitempty"`
}

type Answer struct {
	Text     string            `json:"text"`
	Sources  []ScoredCandidate `json:"sources"`
	Degraded bool              `json:"degraded,omitempty"`
}

// VectorHit is one nearest-neighbor result. Distance is the index's raw
// distance; similarity is derived as 1-distance by the semantic retriever.
type VectorHit struct {
	FragmentKey string  `json:"fragment_key"`
	Distance    float64 `json:"distance"`
}

// TextHit is one keyword-coverage result from the text index.
type TextHit struct {
	FragmentKey string  `json:"fragment_key"`
	Score       float64 `json:"score"`
}

// RetrievalConfig tunes one retrieval call. MaxPerSource zero means no
// per-source cap.
type RetrievalConfig struct {
	SimilarityThreshold float64 `json:"similarity_threshold"`
	SemanticWeight      float64 `json:"semantic_weight"`
	LexicalWeight       float64 `json:"lexical_weight"`
	DiversityThreshold  float64 `json:"diversity_threshold"`
	MaxPerSource        int     `json:"max_per_source"`
}

func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		SimilarityThreshold: 0.05,
		SemanticWeight:      0.6,
		LexicalWeight:       0.3,
		DiversityThreshold:  0.85,
		MaxPerSource:        0,
	}
}

func (c RetrievalConfig) Normalize() RetrievalConfig {
	out := c
	def := DefaultRetrievalConfig()

	if out.SimilarityThreshold < 0 || out.SimilarityThreshold > 1 {
		out.SimilarityThreshold = def.SimilarityThreshold
	}
	if out.SemanticWeight <= 0 {
		out.SemanticWeight = def.SemanticWeight
	}
	if out.LexicalWeight <= 0 {
		out.LexicalWeight = def.LexicalWeight
	}
	// The weights must sum to at most one; rescale proportionally when a
	// caller overshoots.
	if sum := out.SemanticWeight + out.LexicalWeight; sum > 1 {
		out.SemanticWeight /= sum
		out.LexicalWeight /= sum
	}
	if out.DiversityThreshold <= 0 || out.DiversityThreshold > 1 {
		out.DiversityThreshold = def.DiversityThreshold
	}
	if out.MaxPerSource < 0 {
		out.MaxPerSource = 0
	}
	return out
}
