package language

import "testing"

func TestToISO3(t *testing.T) {
	cases := map[string]string{
		"pt":    "por",
		"PT-BR": "por",
		"en":    "eng",
		"fre":   "fra",
		"jpn":   "jpn",
		"xx":    "und",
		"":      "und",
	}
	for input, want := range cases {
		if got := ToISO3(input); got != want {
			t.Errorf("ToISO3(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDisplayNameTable(t *testing.T) {
	cases := map[string]string{
		"pt":    "Portuguese",
		"zh_CN": "Chinese",
		"EN":    "English",
		"auto":  "the source language",
		"":      "the source language",
	}
	for input, want := range cases {
		if got := DisplayName(input); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDisplayNameFallbacks(t *testing.T) {
	// Not in the fixed table but a valid registry tag.
	if got := DisplayName("uk"); got != "Ukrainian" {
		t.Errorf("DisplayName(uk) = %q, want Ukrainian", got)
	}
	// Unparseable input falls back to capitalized raw code.
	if got := DisplayName("q!"); got != "Q!" {
		t.Errorf("DisplayName(q!) = %q, want Q!", got)
	}
}

func TestSupported(t *testing.T) {
	langs := Supported()
	if len(langs) != 20 {
		t.Fatalf("expected 20 supported languages, got %d", len(langs))
	}
	if langs[0].Code != "pt" || langs[0].Name != "Portuguese" {
		t.Fatalf("unexpected first entry %+v", langs[0])
	}
}
