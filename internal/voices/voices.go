package voices

import "sort"

// DefaultLanguage is used when a request does not name a language.
const DefaultLanguage = "pt-BR"

// DefaultVoice is returned for any language not present in the table.
const DefaultVoice = "pt-BR-AntonioNeural"

// Voice pairs a language code with the Azure neural voice that speaks it.
type Voice struct {
	Language string `json:"language"`
	Name     string `json:"name"`
}

var table = map[string]string{
	"pt-BR": "pt-BR-AntonioNeural", // male, Portuguese
	"en-US": "en-US-JessaNeural",   // female, English
	"es-ES": "es-ES-AlvaroNeural",
	"fr-FR": "fr-FR-HenriNeural",
	"it-IT": "it-IT-PierinaNeural",
}

// ForLanguage returns the voice for a language code, or DefaultVoice when the
// code is unknown. Matching is exact: "pt-br" is not "pt-BR".
func ForLanguage(code string) string {
	if v, ok := table[code]; ok {
		return v
	}
	return DefaultVoice
}

// Supported reports whether code has its own entry in the table.
func Supported(code string) bool {
	_, ok := table[code]
	return ok
}

// All returns every table entry ordered by language code.
func All() []Voice {
	out := make([]Voice, 0, len(table))
	for lang, name := range table {
		out = append(out, Voice{Language: lang, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Language < out[j].Language })
	return out
}
