package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jlozanoz/normateca/internal/core/domain"
	"github.com/jlozanoz/normateca/internal/core/ports"
)

// InventoryUseCase summarizes the indexed corpus. Summaries are cached for
// a TTL and invalidated when a source finishes indexing.
type InventoryUseCase struct {
	store ports.FragmentStore
	ttl   time.Duration

	mu        sync.Mutex
	cached    *domain.Inventory
	fetchedAt time.Time
}

func NewInventoryUseCase(store ports.FragmentStore, ttl time.Duration) *InventoryUseCase {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &InventoryUseCase{store: store, ttl: ttl}
}

func (uc *InventoryUseCase) ListInventory(ctx context.Context) (*domain.Inventory, error) {
	uc.mu.Lock()
	if uc.cached != nil && time.Since(uc.fetchedAt) < uc.ttl {
		cached := *uc.cached
		uc.mu.Unlock()
		return &cached, nil
	}
	uc.mu.Unlock()

	summaries, err := uc.store.ListSourceSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source summaries: %w", err)
	}

	inventory := &domain.Inventory{
		TotalDocuments: len(summaries),
		Sources:        summaries,
	}
	for _, summary := range summaries {
		inventory.TotalFragments += summary.FragmentCount
	}

	uc.mu.Lock()
	uc.cached = inventory
	uc.fetchedAt = time.Now()
	uc.mu.Unlock()

	copied := *inventory
	return &copied, nil
}

// Invalidate drops the cached inventory; the next call rebuilds it.
func (uc *InventoryUseCase) Invalidate() {
	uc.mu.Lock()
	uc.cached = nil
	uc.mu.Unlock()
}
