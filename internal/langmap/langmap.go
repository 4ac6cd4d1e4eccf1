// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

// Package langmap provides a bidirectional, case-insensitive mapping
// between full language names and their 2-3 letter short codes, as used
// throughout Project Gutenberg's RDF metadata. It generalizes the
// single-language predicate little-free-library's LanguageFilter used
// ad hoc into a full lookup table.
package langmap

import "strings"

// nameToCode is the compile-time language table. Keys are the canonical
// display names; values are the canonical lowercase short codes. Because
// this is a Go map literal, duplicate keys are a compile error -- the
// duplicate "Macedonian" entry noted as an Open Question upstream cannot
// occur here.
var nameToCode = map[string]string{
	"Afrikaans":  "af",
	"Albanian":   "sq",
	"Arabic":     "ar",
	"Aragonese":  "an",
	"Armenian":   "hy",
	"Basque":     "eu",
	"Bengali":    "bn",
	"Breton":     "br",
	"Bulgarian":  "bg",
	"Catalan":    "ca",
	"Chinese":    "zh",
	"Czech":      "cs",
	"Danish":     "da",
	"Dutch":      "nl",
	"English":    "en",
	"Esperanto":  "eo",
	"Estonian":   "et",
	"Farsi":      "fa",
	"Finnish":    "fi",
	"French":     "fr",
	"Frisian":    "fy",
	"Friulian":   "fur",
	"Gaelic":     "gd",
	"Galician":   "gl",
	"German":     "de",
	"Greek":      "el",
	"Hebrew":     "he",
	"Hindi":      "hi",
	"Hungarian":  "hu",
	"Icelandic":  "is",
	"Iloko":      "ilo",
	"Indonesian": "id",
	"Interlingua": "ia",
	"Irish":      "ga",
	"Italian":    "it",
	"Japanese":   "ja",
	"Kannada":    "kn",
	"Khasi":      "kha",
	"Korean":     "ko",
	"Kashubian":  "csb",
	"Latin":      "la",
	"Latvian":    "lv",
	"Lithuanian": "lt",
	"Macedonian": "mk",
	"Malayalam":  "ml",
	"Maori":      "mi",
	"Mayan Languages": "myn",
	"Middle English": "enm",
	"Middle French":  "frm",
	"Napoletano-Calabrese": "nap",
	"Norwegian":  "no",
	"Occitan":    "oc",
	"Old Church Slavonic": "chu",
	"Old English": "ang",
	"Oriya":      "or",
	"Polish":     "pl",
	"Portuguese": "pt",
	"Romanian":   "ro",
	"Russian":    "ru",
	"Sanskrit":   "sa",
	"Serbian":    "sr",
	"Slovak":     "sk",
	"Slovenian":  "sl",
	"Spanish":    "es",
	"Swedish":    "sv",
	"Tagalog":    "tl",
	"Tamil":      "ta",
	"Telugu":     "te",
	"Thai":       "th",
	"Turkish":    "tr",
	"Ukrainian":  "uk",
	"Urdu":       "ur",
	"Vietnamese": "vi",
	"Volapük":    "vo",
	"Welsh":      "cy",
	"Yiddish":    "yi",
}

// codeToName is derived once at package init from nameToCode; it is the
// reverse lookup used by TryMap for short-code input.
var codeToName map[string]string

// lowerNameToName maps a lowercased display name back to its canonical
// spelling, so TryMap can report the canonical form regardless of the
// input's casing.
var lowerNameToName map[string]string

func init() {
	codeToName = make(map[string]string, len(nameToCode))
	lowerNameToName = make(map[string]string, len(nameToCode))
	for name, code := range nameToCode {
		codeToName[code] = name
		lowerNameToName[strings.ToLower(name)] = name
	}
}

// TryMap resolves input (either a full language name or a 2-3 letter code,
// in any case) to its canonical short code and display name. ok is false
// when input matches neither.
func TryMap(input string) (code string, name string, ok bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", "", false
	}
	lower := strings.ToLower(trimmed)

	if len(trimmed) >= 2 && len(trimmed) <= 3 {
		if n, found := codeToName[lower]; found {
			return lower, n, true
		}
	}

	if n, found := lowerNameToName[lower]; found {
		return nameToCode[n], n, true
	}

	return "", "", false
}

// Codes returns every known short code, for use by search UX / validation.
func Codes() []string {
	out := make([]string, 0, len(codeToName))
	for c := range codeToName {
		out = append(out, c)
	}
	return out
}

// Names returns every known canonical display name.
func Names() []string {
	out := make([]string, 0, len(nameToCode))
	for n := range nameToCode {
		out = append(out, n)
	}
	return out
}
