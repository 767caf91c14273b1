package vocabulary

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table is a static curated synonym/related-term table backing the
// expansion retriever. Terms without an entry expand to nothing.
type Table struct {
	terms map[string][]string
}

// LoadFile reads a YAML mapping of term -> related terms. An empty path
// yields the built-in default table.
func LoadFile(path string) (*Table, error) {
	if path == "" {
		return NewStatic(defaultTerms), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary file: %w", err)
	}

	var parsed map[string][]string
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse vocabulary yaml: %w", err)
	}
	return NewStatic(parsed), nil
}

func NewStatic(terms map[string][]string) *Table {
	normalized := make(map[string][]string, len(terms))
	for term, related := range terms {
		key := strings.ToLower(strings.TrimSpace(term))
		if key == "" {
			continue
		}
		out := make([]string, 0, len(related))
		for _, r := range related {
			r = strings.ToLower(strings.TrimSpace(r))
			if r != "" && r != key {
				out = append(out, r)
			}
		}
		normalized[key] = out
	}
	return &Table{terms: normalized}
}

func (t *Table) Expand(term string) []string {
	related, ok := t.terms[strings.ToLower(strings.TrimSpace(term))]
	if !ok || len(related) == 0 {
		return nil
	}
	out := make([]string, len(related))
	copy(out, related)
	return out
}

// defaultTerms covers the regulatory vocabulary the corpus leans on; a
// deployment overrides it with VOCABULARY_PATH.
var defaultTerms = map[string][]string{
	"derecho":       {"derechos", "garantía", "facultad"},
	"información":   {"datos", "documentación"},
	"acceso":        {"consulta", "transparencia"},
	"decreto":       {"norma", "reglamento"},
	"ley":           {"norma", "legislación", "normativa"},
	"seguridad":     {"protección", "ciberseguridad"},
	"riesgo":        {"amenaza", "vulnerabilidad"},
	"auditoría":     {"revisión", "control"},
	"cumplimiento":  {"conformidad", "adecuación"},
	"tratamiento":   {"procesamiento", "gestión"},
	"responsable":   {"encargado", "titular"},
	"sanción":       {"multa", "infracción"},
	"procedimiento": {"trámite", "proceso"},
	"documento":     {"documentación", "expediente"},
	"privacy":       {"privacidad", "confidencialidad"},
	"security":      {"seguridad", "protección"},
	"compliance":    {"cumplimiento", "conformidad"},
}
