package usecase

import (
	"strings"
	"unicode"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

// stopwords covers Spanish and English; tokens found here never become
// query keywords.
var stopwords = map[string]struct{}{
	// Spanish
	"los": {}, "las": {}, "una": {}, "unos": {}, "unas": {}, "del": {},
	"que": {}, "qué": {}, "como": {}, "cómo": {}, "para": {}, "por": {},
	"con": {}, "sin": {}, "sobre": {}, "entre": {}, "desde": {}, "hasta": {},
	"este": {}, "esta": {}, "estos": {}, "estas": {}, "ese": {}, "esa": {},
	"eso": {}, "cual": {}, "cuál": {}, "cuales": {}, "cuáles": {},
	"quien": {}, "quién": {}, "donde": {}, "dónde": {}, "cuando": {},
	"cuándo": {}, "muy": {}, "más": {}, "mas": {}, "pero": {}, "sus": {},
	"son": {}, "ser": {}, "está": {}, "hay": {}, "dice": {},
	"tiene": {}, "tienen": {}, "puede": {}, "debe": {}, "deben": {},
	// English
	"the": {}, "and": {}, "for": {}, "are": {}, "was": {}, "were": {},
	"what": {}, "which": {}, "who": {}, "how": {}, "why": {}, "when": {},
	"where": {}, "does": {}, "did": {}, "has": {}, "have": {}, "had": {},
	"about": {}, "with": {}, "from": {}, "into": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "can": {}, "could": {}, "should": {},
	"would": {}, "not": {}, "you": {}, "your": {}, "its": {}, "they": {},
}

// citationBoostTerms are appended to the enhanced text of citation queries
// so the embedding leans toward academic-context passages.
var citationBoostTerms = []string{"según", "cita", "investigación", "estudio", "publicación"}

// inventoryPhrases short-circuit retrieval into a corpus inventory answer.
var inventoryPhrases = []string{
	"qué documentos tienes",
	"que documentos tienes",
	"qué documentos hay",
	"que documentos hay",
	"lista de documentos",
	"listado de documentos",
	"documentos disponibles",
	"what documents do you have",
	"which documents do you have",
	"list of documents",
	"available documents",
}

// analyzeQuery parses a raw question into keywords, citation hints and
// topic identifiers. It never fails; an unusable question simply yields an
// empty keyword set.
func analyzeQuery(raw string) domain.Query {
	query := domain.Query{RawText: raw}

	lower := strings.ToLower(raw)
	for _, phrase := range inventoryPhrases {
		if strings.Contains(lower, phrase) {
			query.IsInventory = true
			break
		}
	}

	query.Keywords = normalizeKeywords(raw)
	query.TopicIdentifiers = extractIdentifiers(raw)

	if author, year, ok := detectCitation(raw); ok {
		query.IsCitation = true
		parts := append([]string{raw, author, year}, citationBoostTerms...)
		query.EnhancedText = strings.Join(parts, " ")
	}

	return query
}

// normalizeKeywords lower-cases, splits on non-letter/digit boundaries,
// drops stopwords and tokens of length <= 2, and deduplicates preserving
// first-seen order.
func normalizeKeywords(raw string) []string {
	tokens := splitWordsLower(raw)
	if len(tokens) == 0 {
		return nil
	}

	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if len([]rune(token)) <= 2 {
			continue
		}
		if _, ok := stopwords[token]; ok {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

// splitWordsLower tokenizes on word boundaries keeping accented letters, so
// Spanish terms survive intact.
func splitWordsLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

func toTokenSet(s string) map[string]struct{} {
	tokens := splitWordsLower(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}
