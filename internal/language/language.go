package language

import (
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type entry struct {
	code2   string // ISO 639-1 (2-letter)
	code3   string // ISO 639-2 primary (3-letter)
	alt3    string // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string // Human-readable name
}

var languages = []entry{
	{"pt", "por", "", "Portuguese"},
	{"en", "eng", "", "English"},
	{"es", "spa", "", "Spanish"},
	{"fr", "fra", "fre", "French"},
	{"de", "deu", "ger", "German"},
	{"it", "ita", "", "Italian"},
	{"ru", "rus", "", "Russian"},
	{"ja", "jpn", "", "Japanese"},
	{"ko", "kor", "", "Korean"},
	{"zh", "zho", "chi", "Chinese"},
	{"ar", "ara", "", "Arabic"},
	{"nl", "nld", "dut", "Dutch"},
	{"pl", "pol", "", "Polish"},
	{"sv", "swe", "", "Swedish"},
	{"no", "nor", "", "Norwegian"},
	{"da", "dan", "", "Danish"},
	{"fi", "fin", "", "Finnish"},
	{"tr", "tur", "", "Turkish"},
	{"he", "heb", "", "Hebrew"},
	{"hi", "hin", "", "Hindi"},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
	}
}

func lookup(code string) *entry {
	code = normalize(code)
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	return nil
}

// normalize lowercases a code and strips a regional suffix ("pt-BR" -> "pt").
func normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexAny(code, "-_"); idx > 0 {
		code = code[:idx]
	}
	return code
}

// ToISO3 converts any recognized language code to ISO 639-2 (3-letter).
// Returns "und" for unrecognized input, passing through 3-letter codes.
func ToISO3(code string) string {
	normalized := normalize(code)
	if normalized == "" {
		return "und"
	}
	if e := lookup(normalized); e != nil {
		return e.code3
	}
	if len(normalized) == 3 {
		return normalized
	}
	return "und"
}

// DisplayName resolves a language code to a human-readable English name.
// The fixed table is consulted first; unmapped but well-formed BCP 47 tags
// fall back to the registry name, and anything else to a capitalized
// rendering of the raw code.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" || strings.EqualFold(trimmed, "auto") {
		return "the source language"
	}
	if e := lookup(trimmed); e != nil {
		return e.display
	}
	if tag, err := xlang.Parse(normalize(trimmed)); err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return name
		}
	}
	return capitalize(trimmed)
}

// Supported lists the translation languages with code and display name,
// in table order.
func Supported() []Info {
	out := make([]Info, 0, len(languages))
	for _, e := range languages {
		out = append(out, Info{Code: e.code2, Name: e.display})
	}
	return out
}

// Info pairs a 2-letter language code with its English display name.
type Info struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func capitalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
