package usecase

import (
	"regexp"
	"strings"
)

// identifierRule is one tagged pattern family for regulatory and standard
// identifiers. normalize receives the regexp submatches and returns the
// canonical form shared by queries and documents.
type identifierRule struct {
	name      string
	pattern   *regexp.Regexp
	normalize func(match []string) string
}

// identifierRules is the registry of identifier families. Adding a family
// means adding an entry; detection iterates the table uniformly.
var identifierRules = []identifierRule{
	{
		name:    "iso_standard",
		pattern: regexp.MustCompile(`(?i)\biso(?:\s*/\s*iec)?[\s-]*(\d{3,5})(?::\d{4})?\b`),
		normalize: func(match []string) string {
			return "iso " + match[1]
		},
	},
	{
		name:    "une_standard",
		pattern: regexp.MustCompile(`(?i)\bune(?:-en)?[\s-]+(\d{3,6})\b`),
		normalize: func(match []string) string {
			return "une " + match[1]
		},
	},
	{
		name:    "decree",
		pattern: regexp.MustCompile(`(?i)\b(?:real\s+)?decreto(?:[\s-]+(?:supremo|legislativo|ley))?\s*(?:n[º°o]\.?\s*)?(\d{1,5})(?:\s*/\s*\d{4})?\b`),
		normalize: func(match []string) string {
			// Year suffixes are dropped so "decreto 123" intersects
			// "Decreto 123/2018".
			return "decreto " + match[1]
		},
	},
	{
		name:    "law",
		pattern: regexp.MustCompile(`(?i)\bley(?:\s+orgánica)?\s*(?:n[º°o]\.?\s*)?(\d{1,4})(?:\s*/\s*\d{4}|\s+de\s+\d{4})?\b`),
		normalize: func(match []string) string {
			return "ley " + match[1]
		},
	},
	{
		name:    "nist_publication",
		pattern: regexp.MustCompile(`(?i)\bnist(?:\s+sp)?[\s-]*(800-\d{1,3})\b`),
		normalize: func(match []string) string {
			return "nist " + strings.ToLower(match[1])
		},
	},
	{
		name:    "named_framework",
		pattern: regexp.MustCompile(`(?i)\b(rgpd|gdpr|lopdgdd|lopd|ens)\b`),
		normalize: func(match []string) string {
			return strings.ToLower(match[1])
		},
	},
}

// extractIdentifiers returns the normalized topic identifiers found in
// text, in first-match order without duplicates.
func extractIdentifiers(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	var seen map[string]struct{}
	for _, rule := range identifierRules {
		for _, match := range rule.pattern.FindAllStringSubmatch(text, -1) {
			id := rule.normalize(match)
			if id == "" {
				continue
			}
			if seen == nil {
				seen = make(map[string]struct{})
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func hasIdentifierPattern(text string) bool {
	if text == "" {
		return false
	}
	for _, rule := range identifierRules {
		if rule.pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// citationRule matches academic citation shapes: a capitalized author name
// next to a four-digit year.
type citationRule struct {
	name    string
	pattern *regexp.Regexp
}

var citationRules = []citationRule{
	{
		name:    "author_year_paren",
		pattern: regexp.MustCompile(`\b(\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+)?)\s*(?:et\s+al\.?\s*)?\(\s*((?:19|20)\d{2})\s*\)`),
	},
	{
		name:    "author_year_plain",
		pattern: regexp.MustCompile(`\b(\p{Lu}\p{Ll}+)(?:\s+et\s+al\.?)?[,\s]+((?:19|20)\d{2})\b`),
	},
}

// detectCitation returns the first author/year pair matched by the citation
// rules.
func detectCitation(text string) (author, year string, ok bool) {
	for _, rule := range citationRules {
		match := rule.pattern.FindStringSubmatch(text)
		if len(match) >= 3 {
			return match[1], match[2], true
		}
	}
	return "", "", false
}
