package usecase

import (
	"testing"
)

func TestExtractIdentifiersStandards(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"Controles de ISO 27001 para accesos", []string{"iso 27001"}},
		{"la norma ISO/IEC 27002:2022", []string{"iso 27002"}},
		{"aplicando UNE-EN 17640 al producto", []string{"une 17640"}},
		{"según NIST SP 800-53 revisión 5", []string{"nist 800-53"}},
		{"obligaciones del RGPD y la LOPDGDD", []string{"rgpd", "lopdgdd"}},
	}

	for _, tc := range cases {
		got := extractIdentifiers(tc.text)
		if len(got) != len(tc.want) {
			t.Fatalf("extractIdentifiers(%q) = %v, want %v", tc.text, got, tc.want)
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Fatalf("extractIdentifiers(%q) = %v, want %v", tc.text, got, tc.want)
			}
		}
	}
}

func TestExtractIdentifiersDecreeDropsYearSuffix(t *testing.T) {
	for _, text := range []string{
		"el Decreto 123/2018 establece",
		"Real Decreto nº 123 de medidas",
		"decreto 123",
	} {
		got := extractIdentifiers(text)
		if len(got) != 1 || got[0] != "decreto 123" {
			t.Fatalf("extractIdentifiers(%q) = %v, want [decreto 123]", text, got)
		}
	}
}

func TestExtractIdentifiersLaw(t *testing.T) {
	got := extractIdentifiers("la Ley Orgánica 3/2018 y la ley 40/2015")
	if len(got) != 2 || got[0] != "ley 3" || got[1] != "ley 40" {
		t.Fatalf("expected [ley 3, ley 40], got %v", got)
	}
}

func TestExtractIdentifiersDeduplicates(t *testing.T) {
	got := extractIdentifiers("ISO 27001 e iso-27001 y también ISO 27001:2022")
	if len(got) != 1 || got[0] != "iso 27001" {
		t.Fatalf("expected single iso 27001, got %v", got)
	}
}

func TestExtractIdentifiersNoneFound(t *testing.T) {
	if got := extractIdentifiers("procedimientos generales de trabajo"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestHasIdentifierPattern(t *testing.T) {
	if !hasIdentifierPattern("Decreto 456.pdf") {
		t.Fatalf("expected pattern in decree file name")
	}
	if hasIdentifierPattern("Manual de bienvenida.pdf") {
		t.Fatalf("did not expect pattern in generic file name")
	}
}

func TestDetectCitationParenthesized(t *testing.T) {
	author, year, ok := detectCitation("Como señala Martínez (2021), el riesgo residual persiste")
	if !ok || author != "Martínez" || year != "2021" {
		t.Fatalf("expected Martínez/2021, got %q/%q ok=%v", author, year, ok)
	}
}

func TestDetectCitationPlain(t *testing.T) {
	author, year, ok := detectCitation("el estudio de Smith et al. 2019 lo confirma")
	if !ok || author != "Smith" || year != "2019" {
		t.Fatalf("expected Smith/2019, got %q/%q ok=%v", author, year, ok)
	}
}

func TestDetectCitationNone(t *testing.T) {
	if _, _, ok := detectCitation("no hay referencias académicas aquí"); ok {
		t.Fatalf("expected no citation")
	}
}
