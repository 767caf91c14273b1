package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jlozanoz/normateca/internal/core/domain"
	"github.com/jlozanoz/normateca/internal/core/ports"
)

const defaultTopK = 5

// RetrieveUseCase orchestrates the four retrieval strategies and the
// fusion/filter/diversification pipeline behind ports.FragmentRetriever.
type RetrieveUseCase struct {
	embedder    ports.Embedder
	vectorIndex ports.VectorIndex
	textIndex   ports.TextIndex
	store       ports.FragmentStore
	expander    ports.TermExpander
	inventory   ports.InventoryService

	strategyTimeout time.Duration
}

// NewRetrieveUseCase wires the retrieval pipeline. textIndex may be nil;
// the lexical strategy then scans the store instead.
func NewRetrieveUseCase(
	embedder ports.Embedder,
	vectorIndex ports.VectorIndex,
	textIndex ports.TextIndex,
	store ports.FragmentStore,
	expander ports.TermExpander,
	inventory ports.InventoryService,
	strategyTimeout time.Duration,
) *RetrieveUseCase {
	if strategyTimeout <= 0 {
		strategyTimeout = 10 * time.Second
	}
	return &RetrieveUseCase{
		embedder:        embedder,
		vectorIndex:     vectorIndex,
		textIndex:       textIndex,
		store:           store,
		expander:        expander,
		inventory:       inventory,
		strategyTimeout: strategyTimeout,
	}
}

// Retrieve analyzes the question, fans the primary strategies out in
// parallel, conditionally runs the expansion pass and reduces everything to
// one ranked, topic-filtered, diversified result. Embedding failures and
// per-strategy timeouts degrade to smaller results; only fragment store
// failures abort the call.
func (uc *RetrieveUseCase) Retrieve(
	ctx context.Context,
	question string,
	topK int,
	cfg domain.RetrievalConfig,
) (*domain.RankedResult, error) {
	cfg = cfg.Normalize()
	if topK <= 0 {
		topK = defaultTopK
	}

	query := analyzeQuery(question)

	if query.IsInventory {
		inventory, err := uc.inventory.ListInventory(ctx)
		if err != nil {
			return nil, fmt.Errorf("list inventory: %w", err)
		}
		return &domain.RankedResult{
			Candidates: []domain.ScoredCandidate{},
			Inventory:  inventory,
		}, nil
	}

	if len(query.Keywords) == 0 {
		return &domain.RankedResult{Candidates: []domain.ScoredCandidate{}}, nil
	}

	var results strategyResults
	var degraded [4]bool

	type strategySlot struct {
		strategy domain.Strategy
		out      *[]domain.ScoredCandidate
		failed   *bool
		run      func(context.Context) ([]domain.ScoredCandidate, error)
	}
	slots := []strategySlot{
		{domain.StrategySemantic, &results.semantic, &degraded[0], func(c context.Context) ([]domain.ScoredCandidate, error) {
			return uc.semanticCandidates(c, query, topK, cfg.SimilarityThreshold)
		}},
		{domain.StrategyLexical, &results.lexical, &degraded[1], func(c context.Context) ([]domain.ScoredCandidate, error) {
			return uc.lexicalCandidates(c, query, topK)
		}},
		{domain.StrategyMetadata, &results.metadata, &degraded[2], func(c context.Context) ([]domain.ScoredCandidate, error) {
			return uc.metadataCandidates(c, query, topK)
		}},
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, slot := range slots {
		group.Go(func() error {
			return uc.runStrategy(groupCtx, slot.strategy, slot.out, slot.failed, slot.run)
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if uniqueCandidateKeys(results) < topK {
		err := uc.runStrategy(ctx, domain.StrategyExpansion, &results.expansion, &degraded[3], func(c context.Context) ([]domain.ScoredCandidate, error) {
			return uc.expansionCandidates(c, query, topK)
		})
		if err != nil {
			return nil, err
		}
	}

	fused := fuseCandidates(results, cfg)
	filtered := filterByTopic(fused, query.TopicIdentifiers)
	final := diversify(filtered, cfg.DiversityThreshold, cfg.MaxPerSource, topK)

	result := &domain.RankedResult{
		Candidates: final,
		StrategyCandidates: map[domain.Strategy]int{
			domain.StrategySemantic:  len(results.semantic),
			domain.StrategyLexical:   len(results.lexical),
			domain.StrategyMetadata:  len(results.metadata),
			domain.StrategyExpansion: len(results.expansion),
		},
	}
	for i, strategy := range []domain.Strategy{
		domain.StrategySemantic, domain.StrategyLexical, domain.StrategyMetadata, domain.StrategyExpansion,
	} {
		if degraded[i] {
			result.Degraded = true
			result.DegradedStrategies = append(result.DegradedStrategies, strategy)
		}
	}
	return result, nil
}

// runStrategy executes one strategy under its own timeout. Fragment store
// failures and caller cancellation propagate; any other failure empties the
// strategy and marks it degraded.
func (uc *RetrieveUseCase) runStrategy(
	ctx context.Context,
	strategy domain.Strategy,
	out *[]domain.ScoredCandidate,
	failed *bool,
	run func(context.Context) ([]domain.ScoredCandidate, error),
) error {
	strategyCtx, cancel := context.WithTimeout(ctx, uc.strategyTimeout)
	defer cancel()

	candidates, err := run(strategyCtx)
	if err != nil {
		if domain.IsKind(err, domain.ErrStoreUnavailable) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("retrieval_strategy_degraded", "strategy", string(strategy), "error", err)
		*failed = true
		return nil
	}
	*out = candidates
	return nil
}

// uniqueCandidateKeys counts distinct fragment keys across the primary
// strategies; duplicated hits add no coverage toward top-k.
func uniqueCandidateKeys(results strategyResults) int {
	seen := make(map[string]struct{})
	for _, list := range [][]domain.ScoredCandidate{results.semantic, results.lexical, results.metadata} {
		for _, candidate := range list {
			seen[candidate.Fragment.Key] = struct{}{}
		}
	}
	return len(seen)
}
