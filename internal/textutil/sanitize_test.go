package textutil

import "testing"

func TestFoldDiacritics(t *testing.T) {
	cases := map[string]string{
		"señalética":  "senaletica",
		"Admisión":    "Admision",
		"plain":       "plain",
		"":            "",
		"Información": "Informacion",
	}
	for input, want := range cases {
		if got := FoldDiacritics(input); got != want {
			t.Errorf("FoldDiacritics(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := map[string]string{
		"Emergencias":    "emergencias",
		"Planta Baja":    "planta_baja",
		"  ":             "unknown",
		"Señalética 2":   "senaletica_2",
		"already-clean_": "already-clean",
	}
	for input, want := range cases {
		if got := SanitizeToken(input); got != want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeCodePreservesCase(t *testing.T) {
	if got := SanitizeCode("ROT-0421"); got != "ROT-0421" {
		t.Fatalf("SanitizeCode(ROT-0421) = %q", got)
	}
	if got := SanitizeCode("piso 1/ala"); got != "piso_1_ala" {
		t.Fatalf("SanitizeCode(piso 1/ala) = %q", got)
	}
	if got := SanitizeCode(""); got != "unknown" {
		t.Fatalf("SanitizeCode empty = %q", got)
	}
}
