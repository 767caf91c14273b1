package usecase

import (
	"context"
	"math"
	"testing"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

func TestSemanticCandidatesAppliesThreshold(t *testing.T) {
	store := &fragmentStoreFake{fragments: decreeCorpus()}
	vector := &vectorIndexFake{hits: []domain.VectorHit{
		{FragmentKey: "Decreto 123.pdf:0", Distance: 0.1},
		{FragmentKey: "Guia practica.pdf:0", Distance: 0.97},
	}}
	uc := newTestRetrieveUseCase(&embedderFake{}, vector, store, &expanderFake{}, &inventoryServiceFake{})

	candidates, err := uc.semanticCandidates(context.Background(), analyzeQuery("protección de datos"), 5, 0.3)
	if err != nil {
		t.Fatalf("semanticCandidates() error = %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected one candidate above threshold, got %d", len(candidates))
	}
	if candidates[0].Fragment.Key != "Decreto 123.pdf:0" {
		t.Fatalf("expected Decreto 123.pdf:0, got %s", candidates[0].Fragment.Key)
	}
	if math.Abs(candidates[0].RawScore-0.9) > 1e-9 {
		t.Fatalf("similarity = %v, want 0.9", candidates[0].RawScore)
	}
	if vector.limit != 10 {
		t.Fatalf("expected 2n=10 neighbors requested, got %d", vector.limit)
	}
}

func TestSemanticCandidatesUsesEnhancedTextForCitations(t *testing.T) {
	embedder := &embedderFake{}
	store := &fragmentStoreFake{fragments: decreeCorpus()}
	uc := newTestRetrieveUseCase(embedder, &vectorIndexFake{}, store, &expanderFake{}, &inventoryServiceFake{})

	query := analyzeQuery("¿Qué propone García (2019) sobre los datos?")
	if !query.IsCitation {
		t.Fatalf("expected citation query")
	}
	if _, err := uc.semanticCandidates(context.Background(), query, 5, 0.05); err != nil {
		t.Fatalf("semanticCandidates() error = %v", err)
	}
	if embedder.queryText != query.EnhancedText {
		t.Fatalf("expected the enhanced text embedded, got %q", embedder.queryText)
	}
}

func TestSemanticCandidatesSkipsMissingFragments(t *testing.T) {
	store := &fragmentStoreFake{fragments: decreeCorpus()}
	vector := &vectorIndexFake{hits: []domain.VectorHit{
		{FragmentKey: "deleted.pdf:9", Distance: 0.1},
		{FragmentKey: "Decreto 123.pdf:0", Distance: 0.2},
	}}
	uc := newTestRetrieveUseCase(&embedderFake{}, vector, store, &expanderFake{}, &inventoryServiceFake{})

	candidates, err := uc.semanticCandidates(context.Background(), analyzeQuery("protección de datos"), 5, 0.05)
	if err != nil {
		t.Fatalf("semanticCandidates() error = %v", err)
	}
	if len(candidates) != 1 || candidates[0].Fragment.Key != "Decreto 123.pdf:0" {
		t.Fatalf("expected stale hit skipped, got %+v", candidates)
	}
}

func TestLexicalScoreCountsKeywordsAndVariants(t *testing.T) {
	score := lexicalScore("datos datos protección", []string{"datos", "protección"}, "")
	// datos: 2 exact (0.4) + 2 "dato" variant hits (0.2); protección: 1 exact
	// (0.2); divided by 2 keywords.
	if math.Abs(score-0.4) > 1e-9 {
		t.Fatalf("lexicalScore = %v, want 0.4", score)
	}
}

func TestLexicalScoreVerbatimBonus(t *testing.T) {
	without := lexicalScore("la protección de datos importa", []string{"protección", "datos"}, "")
	with := lexicalScore("la protección de datos importa", []string{"protección", "datos"}, "protección de datos")
	if with <= without {
		t.Fatalf("expected verbatim bonus: %v <= %v", with, without)
	}
	if math.Abs((with-without)-0.5) > 1e-9 {
		t.Fatalf("verbatim bonus = %v, want 0.5", with-without)
	}
}

func TestLexicalScoreClamped(t *testing.T) {
	text := "datos datos datos datos datos datos datos datos datos datos"
	if score := lexicalScore(text, []string{"datos"}, "datos"); score != 1 {
		t.Fatalf("expected clamp to 1, got %v", score)
	}
}

func TestWordVariants(t *testing.T) {
	cases := []struct {
		word string
		want []string
	}{
		{"normas", []string{"norma"}},
		{"controles", []string{"control", "controle"}},
		{"ley", []string{"leys", "leyes"}},
	}
	for _, tc := range cases {
		got := wordVariants(tc.word)
		if len(got) != len(tc.want) {
			t.Fatalf("wordVariants(%q) = %v, want %v", tc.word, got, tc.want)
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Fatalf("wordVariants(%q) = %v, want %v", tc.word, got, tc.want)
			}
		}
	}
}

func TestMetadataScoreNameAndLabels(t *testing.T) {
	// name hits 2/2 (0.9) plus label hits 1/2 (0.35) overshoot and clamp.
	score := metadataScore("Politica Seguridad ISO 27001.pdf", []string{"seguridad", "normativa"}, []string{"seguridad", "27001"}, "")
	if score != 1.0 {
		t.Fatalf("metadataScore = %v, want clamped 1.0", score)
	}

	half := metadataScore("Politica Seguridad.pdf", nil, []string{"seguridad", "27001"}, "")
	if math.Abs(half-0.45) > 1e-9 {
		t.Fatalf("metadataScore = %v, want 0.45", half)
	}

	partial := metadataScore("Manual general.pdf", nil, []string{"seguridad", "27001"}, "")
	if partial != 0 {
		t.Fatalf("expected zero score for unrelated metadata, got %v", partial)
	}
}

func TestMetadataCandidatesScoresWholeSource(t *testing.T) {
	store := &fragmentStoreFake{fragments: map[string]domain.Fragment{
		"Decreto 123.pdf:0": {Key: "Decreto 123.pdf:0", SourceDocument: "Decreto 123.pdf", Text: "capítulo uno"},
		"Decreto 123.pdf:1": {Key: "Decreto 123.pdf:1", SourceDocument: "Decreto 123.pdf", Text: "capítulo dos"},
		"Otro.pdf:0":        {Key: "Otro.pdf:0", SourceDocument: "Otro.pdf", Text: "sin relación"},
	}}
	uc := newTestRetrieveUseCase(&embedderFake{}, &vectorIndexFake{}, store, &expanderFake{}, &inventoryServiceFake{})

	candidates, err := uc.metadataCandidates(context.Background(), analyzeQuery("decreto 123"), 10)
	if err != nil {
		t.Fatalf("metadataCandidates() error = %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected both fragments of the matching source, got %d", len(candidates))
	}
	for _, candidate := range candidates {
		if candidate.Fragment.SourceDocument != "Decreto 123.pdf" {
			t.Fatalf("unexpected source %s", candidate.Fragment.SourceDocument)
		}
		if candidate.Strategy != domain.StrategyMetadata {
			t.Fatalf("unexpected strategy %s", candidate.Strategy)
		}
	}
}

func TestExpansionCandidatesUsesExpandedTerms(t *testing.T) {
	store := &fragmentStoreFake{fragments: map[string]domain.Fragment{
		"a.pdf:0": {Key: "a.pdf:0", SourceDocument: "a.pdf", Text: "la información es un activo"},
		"b.pdf:0": {Key: "b.pdf:0", SourceDocument: "b.pdf", Text: "contenido sin relación alguna"},
	}}
	expander := &expanderFake{terms: map[string][]string{"datos": {"información"}}}
	uc := newTestRetrieveUseCase(&embedderFake{}, &vectorIndexFake{}, store, expander, &inventoryServiceFake{})

	candidates, err := uc.expansionCandidates(context.Background(), analyzeQuery("datos"), 10)
	if err != nil {
		t.Fatalf("expansionCandidates() error = %v", err)
	}
	if len(candidates) != 1 || candidates[0].Fragment.Key != "a.pdf:0" {
		t.Fatalf("expected the expanded-term match only, got %+v", candidates)
	}
	if candidates[0].Strategy != domain.StrategyExpansion {
		t.Fatalf("unexpected strategy %s", candidates[0].Strategy)
	}
	// One original term plus one expansion term; one expansion occurrence.
	if math.Abs(candidates[0].RawScore-0.05) > 1e-9 {
		t.Fatalf("expansion score = %v, want 0.05", candidates[0].RawScore)
	}
}
