package usecase

import (
	"testing"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

func topicCandidate(key, source, text string, labels ...string) domain.ScoredCandidate {
	return domain.ScoredCandidate{
		Fragment: domain.Fragment{
			Key:            key,
			SourceDocument: source,
			Text:           text,
			Labels:         labels,
		},
		Strategy: domain.StrategyLexical,
		RawScore: 0.5,
	}
}

func TestFilterByTopicNoTopicsKeepsEverything(t *testing.T) {
	candidates := []domain.ScoredCandidate{
		topicCandidate("a:0", "ISO 27001.pdf", "controles de acceso"),
		topicCandidate("b:0", "ISO 31000.pdf", "gestión de riesgos"),
	}

	kept := filterByTopic(candidates, nil)
	if len(kept) != 2 {
		t.Fatalf("expected all candidates kept, got %d", len(kept))
	}
}

func TestFilterByTopicIsolatesStandards(t *testing.T) {
	candidates := []domain.ScoredCandidate{
		topicCandidate("a:0", "ISO 27001 Seguridad.pdf", "La norma ISO 27001 define el SGSI."),
		topicCandidate("b:0", "ISO 31000 Riesgos.pdf", "La norma ISO 31000 guía la gestión de riesgos."),
		topicCandidate("c:0", "Manual general.pdf", "procedimientos internos de la organización"),
	}

	kept := filterByTopic(candidates, []string{"iso 27001"})
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept candidates, got %d", len(kept))
	}
	if kept[0].Fragment.Key != "a:0" || kept[1].Fragment.Key != "c:0" {
		t.Fatalf("expected [a:0 c:0], got [%s %s]", kept[0].Fragment.Key, kept[1].Fragment.Key)
	}
}

func TestFilterByTopicKeepsGeneralSourceCitingOtherRegulations(t *testing.T) {
	// A source whose name carries no identifier is a general document; it
	// survives even when its body cites a different regulation.
	general := topicCandidate("g:0", "Resumen normativo.pdf", "Este resumen cubre el Decreto 456 y otras normas.")

	kept := filterByTopic([]domain.ScoredCandidate{general}, []string{"decreto 123"})
	if len(kept) != 1 {
		t.Fatalf("expected general document kept, got %d candidates", len(kept))
	}
}

func TestFilterByTopicDropsConflictingDedicatedSource(t *testing.T) {
	conflicting := topicCandidate("d:0", "Decreto 456.pdf", "El Decreto 456 regula otra materia.")

	kept := filterByTopic([]domain.ScoredCandidate{conflicting}, []string{"decreto 123"})
	if len(kept) != 0 {
		t.Fatalf("expected conflicting source dropped, got %d candidates", len(kept))
	}
}

func TestFilterByTopicMatchesIdentifierFromLabels(t *testing.T) {
	labeled := topicCandidate("l:0", "Anexo tecnico.pdf", "detalles de implementación", "ISO 27001")

	kept := filterByTopic([]domain.ScoredCandidate{labeled}, []string{"iso 27001"})
	if len(kept) != 1 {
		t.Fatalf("expected label-matched candidate kept, got %d", len(kept))
	}
}

func TestFilterByTopicScansOnlyFragmentHead(t *testing.T) {
	var filler string
	for i := 0; i < topicScanChars; i++ {
		filler += "x"
	}
	// The conflicting identifier sits past the scan window, so the fragment
	// counts as generic and is kept.
	deep := topicCandidate("h:0", "Apuntes.pdf", filler+" ISO 31000")

	kept := filterByTopic([]domain.ScoredCandidate{deep}, []string{"iso 27001"})
	if len(kept) != 1 {
		t.Fatalf("expected candidate with deep identifier kept, got %d", len(kept))
	}
}
