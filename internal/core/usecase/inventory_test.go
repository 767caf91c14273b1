package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

func TestInventoryUseCaseSummarizes(t *testing.T) {
	store := &fragmentStoreFake{summaries: []domain.SourceSummary{
		{SourceDocument: "a.pdf", FragmentCount: 3, Labels: []string{"seguridad"}},
		{SourceDocument: "b.pdf", FragmentCount: 2},
	}}
	uc := NewInventoryUseCase(store, time.Minute)

	inventory, err := uc.ListInventory(context.Background())
	if err != nil {
		t.Fatalf("ListInventory() error = %v", err)
	}
	if inventory.TotalDocuments != 2 {
		t.Fatalf("expected 2 documents, got %d", inventory.TotalDocuments)
	}
	if inventory.TotalFragments != 5 {
		t.Fatalf("expected 5 fragments, got %d", inventory.TotalFragments)
	}
}

func TestInventoryUseCaseCachesWithinTTL(t *testing.T) {
	store := &fragmentStoreFake{summaries: []domain.SourceSummary{{SourceDocument: "a.pdf", FragmentCount: 1}}}
	uc := NewInventoryUseCase(store, time.Minute)

	if _, err := uc.ListInventory(context.Background()); err != nil {
		t.Fatalf("ListInventory() error = %v", err)
	}
	if _, err := uc.ListInventory(context.Background()); err != nil {
		t.Fatalf("ListInventory() error = %v", err)
	}
	if store.summaryCalls != 1 {
		t.Fatalf("expected single store call within TTL, got %d", store.summaryCalls)
	}
}

func TestInventoryUseCaseInvalidate(t *testing.T) {
	store := &fragmentStoreFake{summaries: []domain.SourceSummary{{SourceDocument: "a.pdf", FragmentCount: 1}}}
	uc := NewInventoryUseCase(store, time.Minute)

	if _, err := uc.ListInventory(context.Background()); err != nil {
		t.Fatalf("ListInventory() error = %v", err)
	}
	uc.Invalidate()
	if _, err := uc.ListInventory(context.Background()); err != nil {
		t.Fatalf("ListInventory() error = %v", err)
	}
	if store.summaryCalls != 2 {
		t.Fatalf("expected refetch after invalidate, got %d calls", store.summaryCalls)
	}
}

func TestInventoryUseCaseStoreError(t *testing.T) {
	store := &fragmentStoreFake{summariesErr: errors.New("db down")}
	uc := NewInventoryUseCase(store, time.Minute)

	if _, err := uc.ListInventory(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
